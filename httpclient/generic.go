//nolint:ireturn
package httpclient

import (
	"context"
	"net/http"

	"github.com/andyle182810/shippingeasy/params"
)

func GetJSON[T any](ctx context.Context, c *Client, path string, query params.Value) (T, error) {
	return DoJSON[T](ctx, c, Request{Method: http.MethodGet, Path: path, Params: query, Payload: params.Null(), Credentials: nil})
}

func PostJSON[T any](ctx context.Context, c *Client, path string, query, payload params.Value) (T, error) {
	return DoJSON[T](ctx, c, Request{Method: http.MethodPost, Path: path, Params: query, Payload: payload, Credentials: nil})
}

func PutJSON[T any](ctx context.Context, c *Client, path string, query, payload params.Value) (T, error) {
	return DoJSON[T](ctx, c, Request{Method: http.MethodPut, Path: path, Params: query, Payload: payload, Credentials: nil})
}

func DeleteJSON[T any](ctx context.Context, c *Client, path string, query params.Value) (T, error) {
	return DoJSON[T](ctx, c, Request{Method: http.MethodDelete, Path: path, Params: query, Payload: params.Null(), Credentials: nil})
}

func DoJSON[T any](ctx context.Context, c *Client, req Request) (T, error) {
	var result T
	err := c.RequestInto(ctx, req, &result)

	return result, err
}
