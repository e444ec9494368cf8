package httpclient

import (
	"errors"
	"fmt"
)

var (
	ErrAPI                  = errors.New("httpclient: api error")
	ErrConnection           = errors.New("httpclient: connection error")
	ErrAuthentication       = errors.New("httpclient: authentication error")
	ErrInvalidRequest       = errors.New("httpclient: invalid request")
	ErrTooManyRedirects     = errors.New("httpclient: too many redirects")
	ErrAccountNotRegistered = errors.New("httpclient: account not registered")
)

type Kind int

const (
	KindAPI Kind = iota
	KindConnection
	KindAuthentication
	KindInvalidRequest
)

func (k Kind) String() string {
	switch k {
	case KindAPI:
		return "api_error"
	case KindConnection:
		return "connection_error"
	case KindAuthentication:
		return "authentication_error"
	case KindInvalidRequest:
		return "invalid_request_error"
	default:
		return "unknown_error"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindAPI:
		return ErrAPI
	case KindConnection:
		return ErrConnection
	case KindAuthentication:
		return ErrAuthentication
	case KindInvalidRequest:
		return ErrInvalidRequest
	default:
		return nil
	}
}

// Error is the single failure type surfaced by Client. HTTPStatus is zero
// when no response was received.
type Error struct {
	Kind        Kind
	Message     string
	HTTPStatus  int
	RawBody     string
	DecodedBody any
	RequestID   string
	Err         error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.HTTPStatus > 0 {
		return fmt.Sprintf("httpclient: %s (HTTP %d)", e.Kind, e.HTTPStatus)
	}

	return "httpclient: " + e.Kind.String()
}

func (e *Error) Is(target error) bool {
	sentinel := e.Kind.sentinel()

	return sentinel != nil && target == sentinel //nolint:errorlint
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewAPIError(message string, cause error) *Error {
	return &Error{
		Kind:        KindAPI,
		Message:     message,
		HTTPStatus:  0,
		RawBody:     "",
		DecodedBody: nil,
		RequestID:   "",
		Err:         cause,
	}
}

func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}

	return nil, false
}

func IsAPI(err error) bool {
	return errors.Is(err, ErrAPI)
}

func IsConnection(err error) bool {
	return errors.Is(err, ErrConnection)
}

func IsAuthentication(err error) bool {
	return errors.Is(err, ErrAuthentication)
}

func IsInvalidRequest(err error) bool {
	return errors.Is(err, ErrInvalidRequest)
}

func withRequestID(err error, requestID string) error {
	if apiErr, ok := AsError(err); ok && apiErr.RequestID == "" {
		apiErr.RequestID = requestID
	}

	return err
}
