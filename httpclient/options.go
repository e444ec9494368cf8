package httpclient

import (
	"strings"
	"time"

	"github.com/andyle182810/shippingeasy/signature"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const (
	Version = "1.0.0"

	DefaultServiceName    = "ShippingEasy"
	DefaultBaseURL        = "https://app.shippingeasy.com"
	DefaultConnectTimeout = 30 * time.Second
	DefaultTimeout        = 80 * time.Second
	DefaultMaxRedirects   = 4

	HeaderContentType   = "Content-Type"
	HeaderContentLength = "Content-Length"
	HeaderUserAgent     = "User-Agent"
	HeaderXRequestID    = "X-Request-ID"
	HeaderAuthorization = "Authorization"
	HeaderLocation      = "Location"
	ContentTypeJSON     = "application/json"
)

// Config is the process-wide configuration shared by every request. It is
// read-only once a Client has been built from it.
type Config struct {
	BaseURL        string
	APIVersion     string
	LibraryVersion string
	ServiceName    string
	SupportEmail   string
	ConnectTimeout time.Duration
	Timeout        time.Duration
	MaxRedirects   int
}

func DefaultConfig() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		APIVersion:     "",
		LibraryVersion: Version,
		ServiceName:    DefaultServiceName,
		SupportEmail:   "",
		ConnectTimeout: DefaultConnectTimeout,
		Timeout:        DefaultTimeout,
		MaxRedirects:   DefaultMaxRedirects,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()

	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	if c.BaseURL == "" {
		c.BaseURL = defaults.BaseURL
	}

	if c.LibraryVersion == "" {
		c.LibraryVersion = defaults.LibraryVersion
	}

	if c.ServiceName == "" {
		c.ServiceName = defaults.ServiceName
	}

	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = defaults.ConnectTimeout
	}

	if c.Timeout <= 0 {
		c.Timeout = defaults.Timeout
	}

	if c.MaxRedirects <= 0 {
		c.MaxRedirects = defaults.MaxRedirects
	}

	return c
}

func (c Config) clientUserAgentHeader() string {
	return "X-" + c.ServiceName + "-Client-User-Agent"
}

func (c Config) versionHeader() string {
	return c.ServiceName + "-Version"
}

type Option func(*Client)

func WithSigner(signer signature.Signer) Option {
	return func(c *Client) {
		if signer != nil {
			c.signer = signer
		}
	}
}

func WithCredentials(creds signature.Credentials) Option {
	return func(c *Client) {
		c.credentials = creds
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRestyClient sends requests through restyClient. The transport installs
// its own redirect policy on it.
func WithRestyClient(restyClient *resty.Client) Option {
	return func(c *Client) {
		c.restyClient = restyClient
	}
}

// WithTransport shares an existing transport, and its connections, between clients.
func WithTransport(transport *Transport) Option {
	return func(c *Client) {
		c.transport = transport
	}
}

func WithRequestIDFunc(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.requestID = fn
		}
	}
}
