package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type RecordedRequest struct {
	Method        string
	Path          string
	Query         url.Values
	Header        http.Header
	ContentLength int64
	Body          []byte
}

// FakeAPI is an httptest server that records every request it receives.
type FakeAPI struct {
	*httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest
}

// NewFakeAPI starts a server answering every request with status and body.
func NewFakeAPI(t *testing.T, status int, body string) *FakeAPI {
	t.Helper()

	return NewFakeAPIWithHandler(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

func NewFakeAPIWithHandler(t *testing.T, handler http.HandlerFunc) *FakeAPI {
	t.Helper()

	api := &FakeAPI{
		Server:   nil,
		mu:       sync.Mutex{},
		requests: nil,
	}

	api.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		api.mu.Lock()
		api.requests = append(api.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.Query(),
			Header:        r.Header.Clone(),
			ContentLength: r.ContentLength,
			Body:          body,
		})
		api.mu.Unlock()

		handler(w, r)
	}))

	t.Cleanup(api.Close)

	return api
}

func (f *FakeAPI) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]RecordedRequest(nil), f.requests...)
}

func (f *FakeAPI) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.requests)
}

func (f *FakeAPI) LastRequest(t *testing.T) RecordedRequest {
	t.Helper()

	requests := f.Requests()
	require.NotEmpty(t, requests, "FakeAPI received no requests")

	return requests[len(requests)-1]
}

func AssertHeader(t *testing.T, req RecordedRequest, header, expectedValue string) {
	t.Helper()
	assert.Equal(t, expectedValue, req.Header.Get(header), "Header %s mismatch", header)
}

func AssertHeaderExists(t *testing.T, req RecordedRequest, header string) {
	t.Helper()
	assert.NotEmpty(t, req.Header.Get(header), "Header %s should exist", header)
}

func AssertJSONBody(t *testing.T, req RecordedRequest, expected string) {
	t.Helper()
	assert.JSONEq(t, expected, string(req.Body), "Request body mismatch")
}

func MustParseJSON(t *testing.T, data string, target any) {
	t.Helper()

	err := json.Unmarshal([]byte(data), target)

	require.NoError(t, err, "Failed to parse JSON")
}
