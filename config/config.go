package config

import (
	"fmt"
	"time"

	"github.com/andyle182810/shippingeasy/httpclient"
	"github.com/andyle182810/shippingeasy/signature"
	"github.com/andyle182810/shippingeasy/validator"
	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Application
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"  validate:"oneof=trace debug info warn error fatal panic"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`

	// API
	APIBase      string `env:"SHIPPINGEASY_API_BASE"      envDefault:"https://app.shippingeasy.com" validate:"required,http_url"`
	APIVersion   string `env:"SHIPPINGEASY_API_VERSION"`
	SupportEmail string `env:"SHIPPINGEASY_SUPPORT_EMAIL"                                           validate:"omitempty,email"`

	// Store account
	APIKey    string `env:"SHIPPINGEASY_API_KEY"`
	APISecret string `env:"SHIPPINGEASY_API_SECRET" validate:"required_with=APIKey"`

	// Partner account
	PartnerAPIKey    string `env:"SHIPPINGEASY_PARTNER_API_KEY"`
	PartnerAPISecret string `env:"SHIPPINGEASY_PARTNER_API_SECRET" validate:"required_with=PartnerAPIKey"`

	// Transport
	ConnectTimeout time.Duration `env:"SHIPPINGEASY_CONNECT_TIMEOUT" envDefault:"30s" validate:"gt=0"`
	Timeout        time.Duration `env:"SHIPPINGEASY_TIMEOUT"         envDefault:"80s" validate:"gt=0"`
	MaxRedirects   int           `env:"SHIPPINGEASY_MAX_REDIRECTS"   envDefault:"4"   validate:"gte=1,lte=20"`
}

func New() (*Config, error) {
	return NewWithOptions(env.Options{}) //nolint:exhaustruct
}

// NewWithOptions parses with opts, letting tests supply an environment map.
func NewWithOptions(opts env.Options) (*Config, error) {
	var cfg Config

	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) ClientConfig() httpclient.Config {
	return httpclient.Config{
		BaseURL:        c.APIBase,
		APIVersion:     c.APIVersion,
		LibraryVersion: httpclient.Version,
		ServiceName:    httpclient.DefaultServiceName,
		SupportEmail:   c.SupportEmail,
		ConnectTimeout: c.ConnectTimeout,
		Timeout:        c.Timeout,
		MaxRedirects:   c.MaxRedirects,
	}
}

func (c *Config) Credentials() signature.Credentials {
	return signature.Credentials{Key: c.APIKey, Secret: c.APISecret}
}

// PartnerCredentials reports false when no partner key is configured.
func (c *Config) PartnerCredentials() (signature.Credentials, bool) {
	if c.PartnerAPIKey == "" {
		return signature.Credentials{Key: "", Secret: ""}, false
	}

	return signature.Credentials{Key: c.PartnerAPIKey, Secret: c.PartnerAPISecret}, true
}
