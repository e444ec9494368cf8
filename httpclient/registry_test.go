package httpclient_test

import (
	"net/http"
	"sync"
	"testing"

	"github.com/andyle182810/shippingeasy/httpclient"
	"github.com/andyle182810/shippingeasy/params"
	"github.com/andyle182810/shippingeasy/signature"
	"github.com/andyle182810/shippingeasy/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(baseURL string) *httpclient.Registry {
	return httpclient.NewRegistry(testConfig(baseURL), zerolog.Nop(), httpclient.WithSigner(plainSigner(baseURL)))
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry("https://api.example.com").
		Register("store", testCredentials).
		Register("partner", signature.Credentials{Key: "partner-key", Secret: "partner-secret"})

	assert.Equal(t, 2, registry.Count())
	assert.True(t, registry.Has("store"))
	assert.False(t, registry.Has("missing"))
	assert.Equal(t, []string{"partner", "store"}, registry.Names())

	client, err := registry.Client("store")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", client.BaseURL())
}

func TestRegistry_UnknownAccount(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry("https://api.example.com")

	client, err := registry.Client("nobody")

	assert.Nil(t, client)
	require.ErrorIs(t, err, httpclient.ErrAccountNotRegistered)
	assert.Contains(t, err.Error(), `"nobody"`)
	assert.Panics(t, func() { registry.MustClient("nobody") })
}

func TestRegistry_Unregister(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry("https://api.example.com").Register("store", testCredentials)

	assert.True(t, registry.Unregister("store"))
	assert.False(t, registry.Unregister("store"))
	assert.Zero(t, registry.Count())
	assert.Empty(t, registry.Names())
}

func TestRegistry_AccountsUseTheirOwnCredentials(t *testing.T) {
	t.Parallel()

	api := testutil.NewFakeAPI(t, http.StatusOK, `{}`)
	registry := newTestRegistry(api.URL).
		Register("store", testCredentials).
		Register("partner", signature.Credentials{Key: "partner-key", Secret: "partner-secret"})

	_, err := registry.MustClient("store").Get(t.Context(), "/api/orders", params.Null())
	require.NoError(t, err)
	testutil.AssertHeader(t, api.LastRequest(t), "Authorization", "Bearer key-123")

	_, err = registry.MustClient("partner").Get(t.Context(), "/partners/api/accounts", params.Null())
	require.NoError(t, err)
	testutil.AssertHeader(t, api.LastRequest(t), "Authorization", "Bearer partner-key")
}

func TestRegistry_ReRegisterReplacesClient(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry("https://api.example.com").Register("store", testCredentials)
	first := registry.MustClient("store")

	registry.Register("store", signature.Credentials{Key: "rotated", Secret: "rotated"})

	assert.NotSame(t, first, registry.MustClient("store"))
	assert.Equal(t, 1, registry.Count())
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	api := testutil.NewFakeAPI(t, http.StatusOK, `{"ok":true}`)
	registry := newTestRegistry(api.URL).Register("store", testCredentials)

	var wg sync.WaitGroup

	for range 10 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			client, err := registry.Client("store")
			if !assert.NoError(t, err) {
				return
			}

			_, err = client.Get(t.Context(), "/api/orders", params.Null())
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	assert.Equal(t, 10, api.Count())
}
