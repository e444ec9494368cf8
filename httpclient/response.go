package httpclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var errTrailingData = errors.New("unexpected data after JSON document")

// RawResponse is one completed HTTP exchange, whatever its status.
type RawResponse struct {
	Body       []byte
	StatusCode int
}

// ErrorItem is one entry of the "errors" array returned by the API.
type ErrorItem struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Interpret decodes a response body and returns it for 2xx statuses. Any
// other status, or a body that is not JSON, yields an *Error.
func Interpret(body []byte, statusCode int) (any, error) {
	decoded, err := decodeBody(body)
	if err != nil {
		return nil, &Error{
			Kind:        KindAPI,
			Message:     fmt.Sprintf("Invalid response body from API: %s (HTTP response code was %d)", body, statusCode),
			HTTPStatus:  statusCode,
			RawBody:     string(body),
			DecodedBody: nil,
			RequestID:   "",
			Err:         err,
		}
	}

	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		return nil, ClassifyResponse(body, statusCode, decoded)
	}

	return decoded, nil
}

func decodeBody(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}

	return decoded, nil
}

// ErrorItems extracts the typed "errors" array from a decoded error body.
func (e *Error) ErrorItems() []ErrorItem {
	if e.RawBody == "" {
		return nil
	}

	var envelope struct {
		Errors []ErrorItem `json:"errors"`
	}

	if err := json.Unmarshal([]byte(e.RawBody), &envelope); err != nil {
		return nil
	}

	return envelope.Errors
}
