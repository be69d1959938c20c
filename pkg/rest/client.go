// Package rest implements the JSON REST transport for both the versioned
// WordPress.com API and self-hosted wp-json sites.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp-forge/sitekit/pkg/transport"
)

// Client performs REST exchanges. It issues exactly one request per call and
// never retries. A Client is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	namespace  string
	locale     string
	userAgent  string
	httpClient *http.Client
	logger     hclog.Logger
	observer   transport.Observer
}

// NewClient creates a new REST client.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid REST client config: %w", err)
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = transport.NewHTTPClient(cfg.HTTP)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	observer := cfg.Observer
	if observer == nil {
		observer = transport.NopObserver{}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = transport.DefaultUserAgent
	}

	return &Client{
		baseURL:    base,
		namespace:  strings.Trim(cfg.Namespace, "/"),
		locale:     cfg.Locale,
		userAgent:  userAgent,
		httpClient: httpClient,
		logger:     logger.Named("rest"),
		observer:   observer,
	}, nil
}

// Namespace returns the API namespace requests are sent under.
func (c *Client) Namespace() string {
	return c.namespace
}

// WithNamespace returns a client for another API version on the same host,
// sharing the HTTP client and configuration.
func (c *Client) WithNamespace(namespace string) *Client {
	cp := *c
	cp.namespace = strings.Trim(namespace, "/")
	return &cp
}

// Get issues a GET request with query parameters.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*transport.Response, error) {
	return c.Do(ctx, http.MethodGet, path, query, nil)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (*transport.Response, error) {
	return c.Do(ctx, http.MethodPost, path, nil, body)
}

// Do performs one exchange. The returned response is non-nil whenever the
// server answered, including when the error is a classified status or
// decoding failure. Transport failures are returned unchanged with a nil
// response.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (*transport.Response, error) {
	endpoint := c.URL(path, query)
	requestID := uuid.NewString()
	start := time.Now()

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("sending request",
		"method", method,
		"url", endpoint,
		"request_id", requestID,
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.finish(method, 0, start, err, requestID)
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.finish(method, resp.StatusCode, start, err, requestID)
		return nil, err
	}

	v, err := Decode(resp.StatusCode, respBody)
	c.finish(method, resp.StatusCode, start, err, requestID)

	return &transport.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Value:      v,
	}, err
}

func (c *Client) finish(method string, status int, start time.Time, err error, requestID string) {
	elapsed := time.Since(start)

	c.observer.ObserveExchange(transport.Exchange{
		Transport:  "rest",
		Operation:  method,
		StatusCode: status,
		Duration:   elapsed,
		Err:        err,
	})

	if err != nil {
		c.logger.Debug("request failed",
			"method", method,
			"status", status,
			"request_id", requestID,
			"duration_ms", elapsed.Milliseconds(),
			"error", err,
		)
		return
	}
	c.logger.Debug("request completed",
		"method", method,
		"status", status,
		"request_id", requestID,
		"duration_ms", elapsed.Milliseconds(),
	)
}

// URL builds the request URL for path under the client's namespace. A query
// string embedded in path is merged with query.
func (c *Client) URL(path string, query url.Values) string {
	merged := url.Values{}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		if embedded, err := url.ParseQuery(path[i+1:]); err == nil {
			for k, vs := range embedded {
				merged[k] = append(merged[k], vs...)
			}
		}
		path = path[:i]
	}
	for k, vs := range query {
		merged[k] = append(merged[k], vs...)
	}

	if c.locale != "" {
		if key := localeKey(c.namespace); key != "" && merged.Get(key) == "" {
			merged.Set(key, c.locale)
		}
	}

	elems := []string{}
	if c.namespace != "" {
		elems = append(elems, c.namespace)
	}
	elems = append(elems, strings.Trim(path, "/"))

	u := c.baseURL.JoinPath(elems...)
	u.RawQuery = merged.Encode()
	return u.String()
}
