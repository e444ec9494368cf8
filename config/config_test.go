package config_test

import (
	"testing"
	"time"

	"github.com/andyle182810/shippingeasy/config"
	"github.com/andyle182810/shippingeasy/httpclient"
	"github.com/andyle182810/shippingeasy/signature"
	"github.com/andyle182810/shippingeasy/validator"
	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, environment map[string]string) (*config.Config, error) {
	t.Helper()

	return config.NewWithOptions(env.Options{Environment: environment}) //nolint:exhaustruct
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := load(t, map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogPretty)
	assert.Equal(t, "https://app.shippingeasy.com", cfg.APIBase)
	assert.Equal(t, 30*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 80*time.Second, cfg.Timeout)
	assert.Equal(t, 4, cfg.MaxRedirects)

	assert.Equal(t, httpclient.DefaultConfig(), cfg.ClientConfig())
}

func TestNew_ReadsEnvironment(t *testing.T) {
	t.Parallel()

	cfg, err := load(t, map[string]string{
		"LOG_LEVEL":                       "debug",
		"LOG_PRETTY":                      "true",
		"SHIPPINGEASY_API_BASE":           "https://sandbox.shippingeasy.test",
		"SHIPPINGEASY_API_VERSION":        "2024-01-01",
		"SHIPPINGEASY_SUPPORT_EMAIL":      "support@shippingeasy.com",
		"SHIPPINGEASY_API_KEY":            "store-key",
		"SHIPPINGEASY_API_SECRET":         "store-secret",
		"SHIPPINGEASY_PARTNER_API_KEY":    "partner-key",
		"SHIPPINGEASY_PARTNER_API_SECRET": "partner-secret",
		"SHIPPINGEASY_CONNECT_TIMEOUT":    "5s",
		"SHIPPINGEASY_TIMEOUT":            "1m",
		"SHIPPINGEASY_MAX_REDIRECTS":      "2",
	})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogPretty)

	assert.Equal(t, httpclient.Config{
		BaseURL:        "https://sandbox.shippingeasy.test",
		APIVersion:     "2024-01-01",
		LibraryVersion: httpclient.Version,
		ServiceName:    httpclient.DefaultServiceName,
		SupportEmail:   "support@shippingeasy.com",
		ConnectTimeout: 5 * time.Second,
		Timeout:        time.Minute,
		MaxRedirects:   2,
	}, cfg.ClientConfig())

	assert.Equal(t, signature.Credentials{Key: "store-key", Secret: "store-secret"}, cfg.Credentials())

	partner, ok := cfg.PartnerCredentials()
	require.True(t, ok)
	assert.Equal(t, signature.Credentials{Key: "partner-key", Secret: "partner-secret"}, partner)
}

func TestPartnerCredentials_Absent(t *testing.T) {
	t.Parallel()

	cfg, err := load(t, map[string]string{"SHIPPINGEASY_API_KEY": "k", "SHIPPINGEASY_API_SECRET": "s"})
	require.NoError(t, err)

	_, ok := cfg.PartnerCredentials()
	assert.False(t, ok)
}

func TestNew_ParseError(t *testing.T) {
	t.Parallel()

	_, err := load(t, map[string]string{"SHIPPINGEASY_TIMEOUT": "forever"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestNew_ValidationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		environment map[string]string
		wantField   string
	}{
		{
			name:        "unknown log level",
			environment: map[string]string{"LOG_LEVEL": "loud"},
			wantField:   "LOG_LEVEL",
		},
		{
			name:        "base url without scheme",
			environment: map[string]string{"SHIPPINGEASY_API_BASE": "app.shippingeasy.com"},
			wantField:   "SHIPPINGEASY_API_BASE",
		},
		{
			name:        "bad support email",
			environment: map[string]string{"SHIPPINGEASY_SUPPORT_EMAIL": "nobody"},
			wantField:   "SHIPPINGEASY_SUPPORT_EMAIL",
		},
		{
			name:        "key without secret",
			environment: map[string]string{"SHIPPINGEASY_API_KEY": "store-key"},
			wantField:   "SHIPPINGEASY_API_SECRET",
		},
		{
			name:        "partner key without secret",
			environment: map[string]string{"SHIPPINGEASY_PARTNER_API_KEY": "partner-key"},
			wantField:   "SHIPPINGEASY_PARTNER_API_SECRET",
		},
		{
			name:        "zero timeout",
			environment: map[string]string{"SHIPPINGEASY_TIMEOUT": "0s"},
			wantField:   "SHIPPINGEASY_TIMEOUT",
		},
		{
			name:        "redirect limit out of range",
			environment: map[string]string{"SHIPPINGEASY_MAX_REDIRECTS": "0"},
			wantField:   "SHIPPINGEASY_MAX_REDIRECTS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := load(t, tt.environment)

			assert.Nil(t, cfg)

			var fieldErrs validator.FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			require.Len(t, fieldErrs, 1)
			assert.Equal(t, tt.wantField, fieldErrs[0].Field)
			assert.Contains(t, err.Error(), "invalid config: ")
		})
	}
}
