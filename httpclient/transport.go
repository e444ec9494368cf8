package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/andyle182810/shippingeasy/params"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const dialKeepAlive = 30 * time.Second

// Transport performs a single HTTP exchange against an already signed URL.
// Redirects are followed here rather than by net/http so the method and body
// survive every 3xx hop.
type Transport struct {
	client *resty.Client
	config Config
	logger zerolog.Logger
}

// NewTransport wraps restyClient, or a new client built from cfg when nil.
func NewTransport(cfg Config, restyClient *resty.Client, logger zerolog.Logger) *Transport {
	cfg = cfg.withDefaults()

	if restyClient == nil {
		restyClient = newRestyClient(cfg, logger)
	}

	restyClient.SetRedirectPolicy(resty.RedirectPolicyFunc(stopRedirects))

	return &Transport{
		client: restyClient,
		config: cfg,
		logger: logger,
	}
}

func newRestyClient(cfg Config, logger zerolog.Logger) *resty.Client {
	dialer := &net.Dialer{ //nolint:exhaustruct
		Timeout:   cfg.ConnectTimeout,
		KeepAlive: dialKeepAlive,
	}

	transport, _ := http.DefaultTransport.(*http.Transport)
	transport = transport.Clone()
	transport.DialContext = dialer.DialContext

	return resty.New().
		SetTransport(transport).
		SetTimeout(cfg.Timeout).
		SetLogger(newRestyLogger(logger))
}

func stopRedirects(_ *http.Request, _ []*http.Request) error {
	return http.ErrUseLastResponse
}

// Send issues method against absURL. payload is sent as JSON for POST and
// PUT; query is appended to the URL for DELETE only. A non-2xx status is not
// an error here.
func (t *Transport) Send(
	ctx context.Context,
	method string,
	absURL string,
	headers map[string]string,
	payload params.Value,
	query params.Value,
) (RawResponse, error) {
	method, err := canonicalMethod(method)
	if err != nil {
		return RawResponse{}, err
	}

	reqHeaders := make(map[string]string, len(headers)+2)
	maps.Copy(reqHeaders, headers)

	var body []byte

	switch method {
	case http.MethodPost, http.MethodPut:
		if !payload.IsEmpty() {
			encoded, err := json.Marshal(payload)
			if err != nil {
				return RawResponse{}, NewAPIError("Could not encode request payload: "+err.Error(), err)
			}

			body = encoded
		}

		reqHeaders[HeaderContentType] = ContentTypeJSON
		reqHeaders[HeaderContentLength] = strconv.Itoa(len(body))
	case http.MethodDelete:
		if query.IsComposite() && query.Len() > 0 {
			absURL = absURL + "?" + params.Encode(query)
		}
	}

	return t.follow(ctx, method, absURL, reqHeaders, body)
}

// canonicalMethod maps a case-insensitive method token to its HTTP name.
func canonicalMethod(method string) (string, error) {
	switch token := strings.ToLower(method); token {
	case "get":
		return http.MethodGet, nil
	case "post":
		return http.MethodPost, nil
	case "put":
		return http.MethodPut, nil
	case "delete":
		return http.MethodDelete, nil
	default:
		return "", NewAPIError("Unrecognized method "+token, nil)
	}
}

// follow runs the exchange and its redirects under a single deadline. The
// Authorization header only goes to the scheme and host of the first URL.
func (t *Transport) follow(
	ctx context.Context,
	method string,
	target string,
	headers map[string]string,
	body []byte,
) (RawResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	origin := target
	hopHeaders := headers

	for hops := 0; ; hops++ {
		resp, err := t.execute(ctx, method, target, hopHeaders, body)
		if err != nil {
			return RawResponse{}, ClassifyTransportError(t.config, err)
		}

		location := resp.Header().Get(HeaderLocation)
		if !isRedirect(resp.StatusCode()) || location == "" {
			return RawResponse{Body: resp.Body(), StatusCode: resp.StatusCode()}, nil
		}

		if hops >= t.config.MaxRedirects {
			return RawResponse{}, ClassifyTransportError(t.config,
				fmt.Errorf("%w: maximum (%d) redirects followed", ErrTooManyRedirects, t.config.MaxRedirects))
		}

		next, err := resolveLocation(target, location)
		if err != nil {
			return RawResponse{}, ClassifyTransportError(t.config, err)
		}

		hopHeaders = headers
		if !sameOrigin(origin, next) {
			hopHeaders = withoutAuthorization(headers)
		}

		t.logger.Debug().
			Str("method", method).
			Int("status", resp.StatusCode()).
			Str("location", next).
			Msg("Following redirect")

		target = next
	}
}

func (t *Transport) execute(
	ctx context.Context,
	method string,
	target string,
	headers map[string]string,
	body []byte,
) (*resty.Response, error) {
	req := t.client.R().
		SetContext(ctx).
		SetHeaders(headers)

	if body != nil {
		req.SetBody(body)
	}

	return req.Execute(method, target) //nolint:wrapcheck
}

func isRedirect(statusCode int) bool {
	switch statusCode {
	case http.StatusMovedPermanently,
		http.StatusFound,
		http.StatusSeeOther,
		http.StatusTemporaryRedirect,
		http.StatusPermanentRedirect:
		return true
	default:
		return false
	}
}

func resolveLocation(current, location string) (string, error) {
	base, err := url.Parse(current)
	if err != nil {
		return "", fmt.Errorf("parse request url: %w", err)
	}

	ref, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("parse redirect location: %w", err)
	}

	return base.ResolveReference(ref).String(), nil
}

func sameOrigin(a, b string) bool {
	left, err := url.Parse(a)
	if err != nil {
		return false
	}

	right, err := url.Parse(b)
	if err != nil {
		return false
	}

	return strings.EqualFold(left.Scheme, right.Scheme) && strings.EqualFold(left.Host, right.Host)
}

func withoutAuthorization(headers map[string]string) map[string]string {
	stripped := make(map[string]string, len(headers))

	for name, value := range headers {
		if strings.EqualFold(name, HeaderAuthorization) {
			continue
		}

		stripped[name] = value
	}

	return stripped
}
