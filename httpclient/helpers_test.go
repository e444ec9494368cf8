package httpclient_test

import (
	"testing"

	"github.com/andyle182810/shippingeasy/httpclient"
	"github.com/andyle182810/shippingeasy/params"
	"github.com/andyle182810/shippingeasy/signature"
	"github.com/rs/zerolog"
)

const validationErrorsBody = `{"errors":[{"field":"email","message":"invalid"},{"field":"zip","message":"required"}]}`

var testCredentials = signature.Credentials{Key: "key-123", Secret: "secret-456"}

// plainSigner builds unsigned URLs so tests can assert on the exact query.
func plainSigner(baseURL string) signature.Signer {
	return signature.SignerFunc(
		func(_ string, path string, query params.Value, _ params.Value, _ signature.Credentials) (string, error) {
			target := baseURL + path
			if encoded := params.Encode(query); encoded != "" {
				target += "?" + encoded
			}

			return target, nil
		})
}

func testConfig(baseURL string) httpclient.Config {
	cfg := httpclient.DefaultConfig()
	cfg.BaseURL = baseURL

	return cfg
}

func newTestClient(t *testing.T, baseURL string, opts ...httpclient.Option) *httpclient.Client {
	t.Helper()

	allOpts := []httpclient.Option{
		httpclient.WithSigner(plainSigner(baseURL)),
		httpclient.WithCredentials(testCredentials),
		httpclient.WithLogger(zerolog.Nop()),
	}
	allOpts = append(allOpts, opts...)

	return httpclient.New(testConfig(baseURL), allOpts...)
}

func newTestTransport(cfg httpclient.Config) *httpclient.Transport {
	return httpclient.NewTransport(cfg, nil, zerolog.Nop())
}
