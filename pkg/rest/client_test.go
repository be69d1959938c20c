package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/sitekit/pkg/apierror"
	"github.com/hashicorp-forge/sitekit/pkg/transport"
	"github.com/hashicorp-forge/sitekit/pkg/value"
)

func newTestClient(t *testing.T, serverURL, namespace string) *Client {
	t.Helper()
	client, err := NewClient(Config{
		BaseURL:   serverURL,
		Namespace: namespace,
	})
	require.NoError(t, err)
	return client
}

func TestNewClient_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "missing base URL", cfg: Config{}},
		{name: "bad scheme", cfg: Config{BaseURL: "ftp://example.com"}},
		{name: "missing host", cfg: Config{BaseURL: "https://"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestClient_GetSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/wpcom/v2/sites/321/activity", r.URL.Path)
		assert.Equal(t, "20", r.URL.Query().Get("number"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, transport.DefaultUserAgent, r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"totalItems": 2, "ok": true}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, NamespaceV2)
	resp, err := client.Get(context.Background(), "sites/321/activity", url.Values{"number": {"20"}})
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	total, ok := resp.Value.Get("totalItems")
	require.True(t, ok)
	n, _ := total.AsInt()
	assert.Equal(t, int64(2), n)
}

func TestClient_PostJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/activity-log/321/rewind/to/33", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var got map[string]any
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, map[string]any{"types": map[string]any{"themes": true}}, got)

		w.Write([]byte(`{"restore_id": 22}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, NamespaceV1)
	resp, err := client.Post(context.Background(), "activity-log/321/rewind/to/33",
		map[string]any{"types": map[string]bool{"themes": true}})
	require.NoError(t, err)

	id, ok := resp.Value.Get("restore_id")
	require.True(t, ok)
	n, _ := id.AsInt()
	assert.Equal(t, int64(22), n)
}

func TestClient_AuthorizationRequiredRegardlessOfBody(t *testing.T) {
	bodies := []string{
		``,
		`not json`,
		`{"error": "authorization_required", "message": "An active access token must be used"}`,
		`{"code": "rest_forbidden", "message": "Sorry, you are not allowed to do that.", "data": {"status": 403}}`,
		`{"totalItems": 0}`,
	}

	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		for _, body := range bodies {
			t.Run(http.StatusText(status)+"/"+body, func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(status)
					w.Write([]byte(body))
				}))
				defer server.Close()

				client := newTestClient(t, server.URL, NamespaceV2)
				resp, err := client.Get(context.Background(), "sites/321/rewind", nil)
				require.Error(t, err)
				assert.True(t, errors.Is(err, apierror.ErrAuthorizationRequired))
				require.NotNil(t, resp)
				assert.Equal(t, status, resp.StatusCode)
				assert.True(t, resp.Value.IsNull())
			})
		}
	}
}

func TestClient_HTTPErrorEnvelope(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantCode    string
		wantMessage string
	}{
		{
			name:        "wordpress.com envelope",
			status:      http.StatusNotFound,
			body:        `{"error": "unknown_blog", "message": "Unknown blog"}`,
			wantCode:    "unknown_blog",
			wantMessage: "Unknown blog",
		},
		{
			name:        "self-hosted envelope",
			status:      http.StatusInternalServerError,
			body:        `{"code": "internal_error", "message": "Boom", "data": {"status": 500}}`,
			wantCode:    "internal_error",
			wantMessage: "Boom",
		},
		{
			name:   "no envelope",
			status: http.StatusBadGateway,
			body:   `<html>bad gateway</html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(t, server.URL, NamespaceV2)
			resp, err := client.Get(context.Background(), "sites/321/rewind", nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apierror.ErrHTTP))
			assert.False(t, errors.Is(err, apierror.ErrAuthorizationRequired))

			var apiErr *apierror.Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, tt.wantMessage, apiErr.Message)

			require.NotNil(t, resp)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestClient_InvalidBodyIsDecodingFailure(t *testing.T) {
	for _, body := range []string{``, `{"totalItems": `, `[1, 2`, `{} {}`} {
		t.Run(body, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer server.Close()

			client := newTestClient(t, server.URL, NamespaceV2)
			resp, err := client.Get(context.Background(), "sites/321/activity", nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apierror.ErrDecodingFailure))
			require.NotNil(t, resp)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.True(t, resp.Value.IsNull())
		})
	}
}

func TestClient_NoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, "")
	resp, err := client.Post(context.Background(), "wp/v2/posts/1", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.True(t, resp.Value.IsNull())
}

func TestClient_TransportErrorUnchanged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	client := newTestClient(t, serverURL, NamespaceV2)
	resp, err := client.Get(context.Background(), "sites/321/rewind", nil)
	require.Error(t, err)
	assert.Nil(t, resp)

	var apiErr *apierror.Error
	assert.False(t, errors.As(err, &apiErr))
}

func TestClient_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newTestClient(t, server.URL, NamespaceV2)
	_, err := client.Get(ctx, "sites/321/rewind", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestClient_URL(t *testing.T) {
	tests := []struct {
		name      string
		baseURL   string
		namespace string
		locale    string
		path      string
		query     url.Values
		want      string
	}{
		{
			name:      "wpcom v2 uses _locale",
			baseURL:   "https://public-api.wordpress.com",
			namespace: NamespaceV2,
			locale:    "fr",
			path:      "sites/321/activity",
			query:     url.Values{"number": {"20"}},
			want:      "https://public-api.wordpress.com/wpcom/v2/sites/321/activity?_locale=fr&number=20",
		},
		{
			name:      "rest v1.1 uses locale",
			baseURL:   "https://public-api.wordpress.com/",
			namespace: NamespaceV11,
			locale:    "fr",
			path:      "/me/sites",
			want:      "https://public-api.wordpress.com/rest/v1.1/me/sites?locale=fr",
		},
		{
			name:    "self-hosted never sends locale",
			baseURL: "https://example.org/wp-json",
			locale:  "fr",
			path:    "wp/v2/settings",
			want:    "https://example.org/wp-json/wp/v2/settings",
		},
		{
			name:      "explicit locale is kept",
			baseURL:   "https://public-api.wordpress.com",
			namespace: NamespaceV2,
			locale:    "fr",
			path:      "sites/321/rewind",
			query:     url.Values{"_locale": {"de"}},
			want:      "https://public-api.wordpress.com/wpcom/v2/sites/321/rewind?_locale=de",
		},
		{
			name:    "embedded query is merged",
			baseURL: "https://example.org/wp-json",
			path:    "wp/v2/posts?per_page=10",
			query:   url.Values{"page": {"2"}},
			want:    "https://example.org/wp-json/wp/v2/posts?page=2&per_page=10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(Config{
				BaseURL:   tt.baseURL,
				Namespace: tt.namespace,
				Locale:    tt.locale,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, client.URL(tt.path, tt.query))
		})
	}
}

func TestClient_WithNamespace(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	v2 := newTestClient(t, server.URL, NamespaceV2)
	v1 := v2.WithNamespace(NamespaceV1)

	assert.Equal(t, NamespaceV2, v2.Namespace())
	assert.Equal(t, NamespaceV1, v1.Namespace())

	_, err := v2.Get(context.Background(), "sites/1/rewind", nil)
	require.NoError(t, err)
	_, err = v1.Get(context.Background(), "sites/1", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"/wpcom/v2/sites/1/rewind", "/rest/v1/sites/1"}, paths)
}

type recordingObserver struct {
	exchanges []transport.Exchange
}

func (o *recordingObserver) ObserveExchange(e transport.Exchange) {
	o.exchanges = append(o.exchanges, e)
}

func TestClient_Observer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	obs := &recordingObserver{}
	client, err := NewClient(Config{BaseURL: server.URL, Namespace: NamespaceV2, Observer: obs})
	require.NoError(t, err)

	_, err = client.Get(context.Background(), "sites/1/rewind", nil)
	require.Error(t, err)

	require.Len(t, obs.exchanges, 1)
	assert.Equal(t, "rest", obs.exchanges[0].Transport)
	assert.Equal(t, http.MethodGet, obs.exchanges[0].Operation)
	assert.Equal(t, http.StatusForbidden, obs.exchanges[0].StatusCode)
	assert.True(t, errors.Is(obs.exchanges[0].Err, apierror.ErrAuthorizationRequired))
}

func TestDecode(t *testing.T) {
	v, err := Decode(http.StatusCreated, []byte(`{"id": 7}`))
	require.NoError(t, err)
	assert.True(t, v.Equal(value.Mapping(map[string]value.Value{"id": value.Int(7)})))

	v, err = Decode(http.StatusNoContent, nil)
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}
