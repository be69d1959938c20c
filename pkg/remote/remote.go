// Package remote gives direct access to the REST and XML-RPC transports for
// callers without a typed endpoint. It performs no pagination and no domain
// decoding.
package remote

import (
	"context"
	"errors"
	"net/url"

	"github.com/hashicorp-forge/sitekit/pkg/async"
	"github.com/hashicorp-forge/sitekit/pkg/rest"
	"github.com/hashicorp-forge/sitekit/pkg/transport"
	"github.com/hashicorp-forge/sitekit/pkg/value"
	"github.com/hashicorp-forge/sitekit/pkg/xmlrpc"
)

// ErrNotConfigured is returned when an operation needs a transport the API
// was created without.
var ErrNotConfigured = errors.New("transport not configured")

// Result is the outcome of one exchange. StatusCode is zero when no response
// was received.
type Result struct {
	Value      value.Value
	StatusCode int
}

// API exposes raw GET, POST and method calls.
type API struct {
	rest   *rest.Client
	xmlrpc *xmlrpc.Client
}

// New creates an API. Either client may be nil.
func New(restClient *rest.Client, xmlrpcClient *xmlrpc.Client) *API {
	return &API{rest: restClient, xmlrpc: xmlrpcClient}
}

// Get issues a GET request for path with query parameters.
func (a *API) Get(ctx context.Context, path string, query url.Values) (value.Value, int, error) {
	if a.rest == nil {
		return value.Null(), 0, ErrNotConfigured
	}
	return unpack(a.rest.Get(ctx, path, query))
}

// Post issues a POST request for path with a JSON body.
func (a *API) Post(ctx context.Context, path string, body any) (value.Value, int, error) {
	if a.rest == nil {
		return value.Null(), 0, ErrNotConfigured
	}
	return unpack(a.rest.Post(ctx, path, body))
}

// CallMethod invokes an XML-RPC method with positional params.
func (a *API) CallMethod(ctx context.Context, method string, params ...any) (value.Value, int, error) {
	if a.xmlrpc == nil {
		return value.Null(), 0, ErrNotConfigured
	}
	return unpack(a.xmlrpc.Call(ctx, method, params...))
}

// GetAsync runs Get in the background.
func (a *API) GetAsync(ctx context.Context, path string, query url.Values) *async.Future[Result] {
	return async.Go(ctx, func(ctx context.Context) (Result, error) {
		return result(a.Get(ctx, path, query))
	})
}

// PostAsync runs Post in the background.
func (a *API) PostAsync(ctx context.Context, path string, body any) *async.Future[Result] {
	return async.Go(ctx, func(ctx context.Context) (Result, error) {
		return result(a.Post(ctx, path, body))
	})
}

// CallMethodAsync runs CallMethod in the background.
func (a *API) CallMethodAsync(ctx context.Context, method string, params ...any) *async.Future[Result] {
	return async.Go(ctx, func(ctx context.Context) (Result, error) {
		return result(a.CallMethod(ctx, method, params...))
	})
}

func unpack(resp *transport.Response, err error) (value.Value, int, error) {
	if resp == nil {
		return value.Null(), 0, err
	}
	return resp.Value, resp.StatusCode, err
}

func result(v value.Value, status int, err error) (Result, error) {
	return Result{Value: v, StatusCode: status}, err
}
