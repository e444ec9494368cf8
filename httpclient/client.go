package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/andyle182810/shippingeasy/params"
	"github.com/andyle182810/shippingeasy/signature"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Request is one API call. Credentials, when set, override the client's.
type Request struct {
	Method      string
	Path        string
	Params      params.Value
	Payload     params.Value
	Credentials *signature.Credentials
}

type Client struct {
	config          Config
	signer          signature.Signer
	credentials     signature.Credentials
	transport       *Transport
	restyClient     *resty.Client
	logger          zerolog.Logger
	requestID       func() string
	clientUserAgent string
}

func New(cfg Config, opts ...Option) *Client {
	cfg = cfg.withDefaults()

	c := &Client{
		config:          cfg,
		signer:          nil,
		credentials:     signature.Credentials{Key: "", Secret: ""},
		transport:       nil,
		restyClient:     nil,
		logger:          log.Logger,
		requestID:       func() string { return uuid.New().String() },
		clientUserAgent: "",
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.signer == nil {
		c.signer = signature.NewHMACSigner(cfg.BaseURL)
	}

	if c.transport == nil {
		c.transport = NewTransport(cfg, c.restyClient, c.logger)
	}

	c.clientUserAgent = buildClientUserAgent(cfg)

	return c
}

func (c *Client) Config() Config {
	return c.config
}

func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

func (c *Client) Get(ctx context.Context, path string, query params.Value) (any, error) {
	return c.Request(ctx, Request{Method: http.MethodGet, Path: path, Params: query, Payload: params.Null(), Credentials: nil})
}

func (c *Client) Post(ctx context.Context, path string, query params.Value, payload params.Value) (any, error) {
	return c.Request(ctx, Request{Method: http.MethodPost, Path: path, Params: query, Payload: payload, Credentials: nil})
}

func (c *Client) Put(ctx context.Context, path string, query params.Value, payload params.Value) (any, error) {
	return c.Request(ctx, Request{Method: http.MethodPut, Path: path, Params: query, Payload: payload, Credentials: nil})
}

func (c *Client) Delete(ctx context.Context, path string, query params.Value) (any, error) {
	return c.Request(ctx, Request{Method: http.MethodDelete, Path: path, Params: query, Payload: params.Null(), Credentials: nil})
}

// Request signs, sends and interprets req. It returns the decoded JSON body
// or an *Error, never both.
func (c *Client) Request(ctx context.Context, req Request) (any, error) {
	decoded, _, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	return decoded, nil
}

// RequestInto is Request with the successful body decoded into out.
func (c *Client) RequestInto(ctx context.Context, req Request, out any) error {
	_, raw, err := c.do(ctx, req)
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(raw.Body, out); err != nil {
		return &Error{
			Kind:        KindAPI,
			Message:     fmt.Sprintf("Could not decode response into %T: %v", out, err),
			HTTPStatus:  raw.StatusCode,
			RawBody:     string(raw.Body),
			DecodedBody: nil,
			RequestID:   "",
			Err:         err,
		}
	}

	return nil
}

func (c *Client) do(ctx context.Context, req Request) (any, RawResponse, error) {
	creds := c.credentials
	if req.Credentials != nil {
		creds = *req.Credentials
	}

	requestID := c.requestID()
	logger := c.logger.With().
		Str("request_id", requestID).
		Str("method", req.Method).
		Str("path", req.Path).
		Logger()

	if _, err := canonicalMethod(req.Method); err != nil {
		return nil, RawResponse{}, withRequestID(err, requestID)
	}

	absURL, err := c.signer.Sign(req.Method, req.Path, req.Params, req.Payload, creds)
	if err != nil {
		return nil, RawResponse{}, withRequestID(NewAPIError("Could not sign request: "+err.Error(), err), requestID)
	}

	start := time.Now()

	raw, err := c.transport.Send(ctx, req.Method, absURL, c.headers(creds, requestID), req.Payload, params.Null())
	if err != nil {
		logger.Warn().
			Err(err).
			Dur("duration", time.Since(start)).
			Msg("Request failed before a response was received")

		return nil, RawResponse{}, withRequestID(err, requestID)
	}

	decoded, err := Interpret(raw.Body, raw.StatusCode)

	logger.Debug().
		Int("status", raw.StatusCode).
		Dur("duration", time.Since(start)).
		Bool("ok", err == nil).
		Msg("Request completed")

	if err != nil {
		return nil, RawResponse{}, withRequestID(err, requestID)
	}

	return decoded, raw, nil
}

func (c *Client) headers(creds signature.Credentials, requestID string) map[string]string {
	headers := map[string]string{
		c.config.clientUserAgentHeader(): c.clientUserAgent,
		HeaderUserAgent:                  fmt.Sprintf("%s/v1 GoBindings/%s", c.config.ServiceName, c.config.LibraryVersion),
		HeaderAuthorization:              "Bearer " + creds.Key,
		HeaderXRequestID:                 requestID,
	}

	if c.config.APIVersion != "" {
		headers[c.config.versionHeader()] = c.config.APIVersion
	}

	return headers
}

//nolint:tagliatelle
type clientUserAgent struct {
	BindingsVersion string `json:"bindings_version"`
	Lang            string `json:"lang"`
	LangVersion     string `json:"lang_version"`
	Publisher       string `json:"publisher"`
	Uname           string `json:"uname"`
}

func buildClientUserAgent(cfg Config) string {
	data, err := json.Marshal(clientUserAgent{
		BindingsVersion: cfg.LibraryVersion,
		Lang:            "go",
		LangVersion:     runtime.Version(),
		Publisher:       cfg.ServiceName,
		Uname:           runtime.GOOS + " " + runtime.GOARCH,
	})
	if err != nil {
		return "{}"
	}

	return string(data)
}
