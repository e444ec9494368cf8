package httpclient_test

import (
	"net/http"
	"testing"

	"github.com/andyle182810/shippingeasy/httpclient"
	"github.com/andyle182810/shippingeasy/params"
	"github.com/andyle182810/shippingeasy/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type order struct {
	ID     int    `json:"id"`
	Status string `json:"status"`
}

type ordersPage struct {
	Orders []order `json:"orders"`
	Meta   struct {
		Page int `json:"page"`
	} `json:"meta"`
}

func TestGetJSON(t *testing.T) {
	t.Parallel()

	api := testutil.NewFakeAPI(t, http.StatusOK, `{"orders":[{"id":1,"status":"ready"}],"meta":{"page":2}}`)
	client := newTestClient(t, api.URL)

	page, err := httpclient.GetJSON[ordersPage](t.Context(), client, "/api/orders",
		params.Map(params.KV("page", params.Int(2))))
	require.NoError(t, err)

	assert.Equal(t, []order{{ID: 1, Status: "ready"}}, page.Orders)
	assert.Equal(t, 2, page.Meta.Page)
	assert.Equal(t, "2", api.LastRequest(t).Query.Get("page"))
}

func TestPostJSON(t *testing.T) {
	t.Parallel()

	api := testutil.NewFakeAPI(t, http.StatusCreated, `{"id":7,"status":"created"}`)
	client := newTestClient(t, api.URL)

	created, err := httpclient.PostJSON[order](t.Context(), client, "/api/orders", params.Null(),
		params.Map(params.KV("order", params.Map(params.KV("sku", params.String("A-1"))))))
	require.NoError(t, err)

	assert.Equal(t, order{ID: 7, Status: "created"}, created)

	req := api.LastRequest(t)
	assert.Equal(t, http.MethodPost, req.Method)
	testutil.AssertJSONBody(t, req, `{"order":{"sku":"A-1"}}`)
}

func TestPutJSON(t *testing.T) {
	t.Parallel()

	api := testutil.NewFakeAPI(t, http.StatusOK, `{"id":7,"status":"shipped"}`)
	client := newTestClient(t, api.URL)

	updated, err := httpclient.PutJSON[order](t.Context(), client, "/api/orders/7", params.Null(),
		params.Map(params.KV("status", params.String("shipped"))))
	require.NoError(t, err)

	assert.Equal(t, "shipped", updated.Status)
	assert.Equal(t, http.MethodPut, api.LastRequest(t).Method)
}

func TestDeleteJSON(t *testing.T) {
	t.Parallel()

	api := testutil.NewFakeAPI(t, http.StatusOK, `{"deleted":true}`)
	client := newTestClient(t, api.URL)

	result, err := httpclient.DeleteJSON[map[string]bool](t.Context(), client, "/api/orders/7", params.Null())
	require.NoError(t, err)

	assert.True(t, result["deleted"])
	assert.Equal(t, http.MethodDelete, api.LastRequest(t).Method)
}

func TestDoJSON_PropagatesTypedErrors(t *testing.T) {
	t.Parallel()

	api := testutil.NewFakeAPI(t, http.StatusNotFound, `{"errors":[{"message":"Order not found"}]}`)
	client := newTestClient(t, api.URL)

	result, err := httpclient.DoJSON[order](t.Context(), client, httpclient.Request{ //nolint:exhaustruct
		Method: http.MethodGet,
		Path:   "/api/orders/404",
	})

	require.ErrorIs(t, err, httpclient.ErrInvalidRequest)
	assert.Equal(t, "Order not found", err.Error())
	assert.Equal(t, order{}, result) //nolint:exhaustruct
}
