package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
)

type statusRule struct {
	kind    Kind
	message func(body []byte, errs []any) string
}

// statusRules maps an HTTP status to the error it produces. Statuses not
// listed fall back to defaultStatusRule.
//
//nolint:gochecknoglobals
var (
	statusRules = map[int]statusRule{
		http.StatusBadRequest:   {kind: KindInvalidRequest, message: allErrorsMessage},
		http.StatusNotFound:     {kind: KindInvalidRequest, message: firstErrorMessage},
		http.StatusUnauthorized: {kind: KindAuthentication, message: firstErrorMessage},
	}
	defaultStatusRule = statusRule{kind: KindAPI, message: firstErrorMessage}
)

// ClassifyResponse converts a non-2xx response into an *Error. decoded is the
// parsed body and must be an object holding an "errors" array.
func ClassifyResponse(body []byte, statusCode int, decoded any) *Error {
	object, _ := decoded.(map[string]any)

	errs, ok := object["errors"].([]any)
	if !ok {
		return &Error{
			Kind:        KindAPI,
			Message:     fmt.Sprintf("Invalid response object from API: %s (HTTP response code was %d)", body, statusCode),
			HTTPStatus:  statusCode,
			RawBody:     string(body),
			DecodedBody: decoded,
			RequestID:   "",
			Err:         nil,
		}
	}

	rule, found := statusRules[statusCode]
	if !found {
		rule = defaultStatusRule
	}

	return &Error{
		Kind:        rule.kind,
		Message:     rule.message(body, errs),
		HTTPStatus:  statusCode,
		RawBody:     string(body),
		DecodedBody: decoded,
		RequestID:   "",
		Err:         nil,
	}
}

// allErrorsMessage serializes the whole errors array, keeping the field
// order the server sent.
func allErrorsMessage(body []byte, errs []any) string {
	var envelope struct {
		Errors json.RawMessage `json:"errors"`
	}

	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Errors) > 0 {
		var buf bytes.Buffer
		if err := json.Compact(&buf, envelope.Errors); err == nil {
			return buf.String()
		}
	}

	data, err := json.Marshal(errs)
	if err != nil {
		return ""
	}

	return string(data)
}

func firstErrorMessage(_ []byte, errs []any) string {
	if len(errs) == 0 {
		return ""
	}

	first, ok := errs[0].(map[string]any)
	if !ok {
		return ""
	}

	switch message := first["message"].(type) {
	case nil:
		return ""
	case string:
		return message
	default:
		return fmt.Sprint(message)
	}
}

// FailureCode names the low-level reason a request never produced a response.
type FailureCode string

const (
	FailureResolveHost      FailureCode = "resolve_host"
	FailureConnect          FailureCode = "connect"
	FailureTimeout          FailureCode = "timeout"
	FailureCertificate      FailureCode = "ssl_cacert"
	FailureTooManyRedirects FailureCode = "too_many_redirects"
	FailureUnknown          FailureCode = "unknown"
)

func FailureCodeOf(err error) FailureCode {
	var (
		certErr      *tls.CertificateVerificationError
		authorityErr x509.UnknownAuthorityError
		hostnameErr  x509.HostnameError
		invalidErr   x509.CertificateInvalidError
		dnsErr       *net.DNSError
		netErr       net.Error
		opErr        *net.OpError
	)

	switch {
	case errors.Is(err, ErrTooManyRedirects):
		return FailureTooManyRedirects
	case errors.As(err, &certErr), errors.As(err, &authorityErr),
		errors.As(err, &hostnameErr), errors.As(err, &invalidErr):
		return FailureCertificate
	case errors.As(err, &dnsErr):
		return FailureResolveHost
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return FailureTimeout
	case errors.Is(err, syscall.ECONNREFUSED), errors.As(err, &opErr) && opErr.Op == "dial":
		return FailureConnect
	default:
		return FailureUnknown
	}
}

// ClassifyTransportError turns a failed round trip into a connection error.
func ClassifyTransportError(cfg Config, err error) *Error {
	connErr := NewConnectionError(cfg, FailureCodeOf(err), err.Error())
	connErr.Err = err

	return connErr
}

// NewConnectionError builds the operator-facing message for a failure code
// and appends the raw code and message as diagnostic detail.
func NewConnectionError(cfg Config, code FailureCode, message string) *Error {
	var guidance string

	switch code {
	case FailureResolveHost, FailureConnect, FailureTimeout:
		guidance = fmt.Sprintf(
			"Could not connect to %s (%s). Please check your internet connection and try again.",
			cfg.ServiceName, cfg.BaseURL)
	case FailureCertificate:
		guidance = fmt.Sprintf(
			"Could not verify %s's SSL certificate. Please make sure that your network is not intercepting "+
				"certificates. (Try going to %s in your browser.)",
			cfg.ServiceName, cfg.BaseURL)
	case FailureTooManyRedirects, FailureUnknown:
		guidance = fmt.Sprintf("Unexpected error communicating with %s.", cfg.ServiceName)
	default:
		guidance = fmt.Sprintf("Unexpected error communicating with %s.", cfg.ServiceName)
	}

	if cfg.SupportEmail != "" {
		guidance += fmt.Sprintf(" If this problem persists, let us know at %s.", cfg.SupportEmail)
	}

	return &Error{
		Kind:        KindConnection,
		Message:     fmt.Sprintf("%s\n\n(Network error [%s]: %s)", guidance, code, message),
		HTTPStatus:  0,
		RawBody:     "",
		DecodedBody: nil,
		RequestID:   "",
		Err:         nil,
	}
}
