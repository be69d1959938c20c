package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/sitekit/pkg/apierror"
	"github.com/hashicorp-forge/sitekit/pkg/rest"
	"github.com/hashicorp-forge/sitekit/pkg/value"
	"github.com/hashicorp-forge/sitekit/pkg/xmlrpc"
)

const optionsResponse = `<?xml version="1.0"?>
<methodResponse><params><param><value><struct>
<member><name>blog_title</name><value><struct>
<member><name>value</name><value><string>My Site</string></value></member>
</struct></value></member>
</struct></value></param></params></methodResponse>`

func newTestAPI(t *testing.T) *API {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/wp-json/wp/v2/settings", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`{"title": "My Site", "posts_per_page": 10}`))
		case http.MethodPost:
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"code": "rest_cannot_update", "message": "Sorry, you are not allowed to edit this setting.", "data": {"status": 401}}`))
		}
	})
	mux.HandleFunc("/wp-json/wp/v2/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code": "rest_no_route", "message": "No route was found matching the URL and request method.", "data": {"status": 404}}`))
	})
	mux.HandleFunc("/xmlrpc.php", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(optionsResponse))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	restClient, err := rest.NewClient(rest.Config{BaseURL: server.URL + "/wp-json", Locale: "fr"})
	require.NoError(t, err)
	xmlrpcClient, err := xmlrpc.NewClient(xmlrpc.Config{Endpoint: server.URL + "/xmlrpc.php"})
	require.NoError(t, err)

	return New(restClient, xmlrpcClient)
}

func TestAPI_Get(t *testing.T) {
	api := newTestAPI(t)

	v, status, err := api.Get(context.Background(), "wp/v2/settings", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)

	title, ok := v.Get("title")
	require.True(t, ok)
	s, _ := title.AsString()
	assert.Equal(t, "My Site", s)
}

func TestAPI_PostUnauthorized(t *testing.T) {
	api := newTestAPI(t)

	v, status, err := api.Post(context.Background(), "wp/v2/settings", map[string]any{"title": "New"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apierror.ErrAuthorizationRequired))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.True(t, v.IsNull())

	var apiErr *apierror.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "rest_cannot_update", apiErr.Code)
}

func TestAPI_GetNotFound(t *testing.T) {
	api := newTestAPI(t)

	_, status, err := api.Get(context.Background(), "wp/v2/missing", url.Values{"context": {"edit"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apierror.ErrHTTP))
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPI_CallMethod(t *testing.T) {
	api := newTestAPI(t)

	v, status, err := api.CallMethod(context.Background(), "wp.getOptions", 0, "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)

	title, ok := v.Lookup("blog_title", "value")
	require.True(t, ok)
	assert.True(t, title.Equal(value.String("My Site")))
}

func TestAPI_Async(t *testing.T) {
	api := newTestAPI(t)
	ctx := context.Background()

	get := api.GetAsync(ctx, "wp/v2/settings", nil)
	call := api.CallMethodAsync(ctx, "wp.getOptions", 0, "admin", "secret")
	post := api.PostAsync(ctx, "wp/v2/settings", map[string]any{"title": "New"})

	res, err := get.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, err = call.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, value.KindMapping, res.Value.Kind())

	res, err = post.Wait(ctx)
	assert.True(t, errors.Is(err, apierror.ErrAuthorizationRequired))
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestAPI_NotConfigured(t *testing.T) {
	api := New(nil, nil)
	ctx := context.Background()

	_, status, err := api.Get(ctx, "x", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Zero(t, status)

	_, _, err = api.Post(ctx, "x", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, _, err = api.CallMethod(ctx, "x")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = api.CallMethodAsync(ctx, "x").Wait(ctx)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestAPI_TransportErrorHasNoStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	restClient, err := rest.NewClient(rest.Config{BaseURL: serverURL})
	require.NoError(t, err)

	_, status, err := New(restClient, nil).Get(context.Background(), "wp/v2/settings", nil)
	require.Error(t, err)
	assert.Zero(t, status)
}
