// Package transport holds the HTTP plumbing shared by the REST and XML-RPC
// clients: HTTP client construction, the response envelope handed back to
// callers, and status classification.
package transport

import (
	"crypto/tls"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/hashicorp-forge/sitekit/pkg/apierror"
	"github.com/hashicorp-forge/sitekit/pkg/value"
)

// DefaultTimeout is used when HTTPConfig.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "sitekit"

// HTTPConfig configures the underlying *http.Client.
type HTTPConfig struct {
	// Timeout for a whole exchange, including reading the body.
	// Default: 30 seconds
	Timeout time.Duration

	// TLSVerify controls TLS certificate verification.
	// Set to false only for development/testing with self-signed certs.
	TLSVerify *bool

	// AuthToken, when set, is sent as a bearer token on every request. It is
	// never logged.
	AuthToken string
}

// NewHTTPClient creates the HTTP client used by a transport. When an auth
// token is configured the client is layered on an oauth2 transport with a
// static token source.
func NewHTTPClient(cfg HTTPConfig) *http.Client {
	base := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	if cfg.TLSVerify != nil && !*cfg.TLSVerify {
		base.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	var rt http.RoundTripper = base
	if cfg.AuthToken != "" {
		rt = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AuthToken}),
			Base:   base,
		}
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: rt,
	}
}

// Response is the outcome of one exchange that produced an HTTP response.
// Value is null unless the exchange succeeded.
type Response struct {
	StatusCode int
	Header     http.Header
	Value      value.Value
}

// IsSuccess reports whether status is 2xx.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}

// ClassifyStatus maps a non-2xx status into the client error taxonomy. code
// and message come from the backend's error envelope, when one was found.
// It returns nil for 2xx statuses.
func ClassifyStatus(status int, code, message string) error {
	switch {
	case IsSuccess(status):
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apierror.AuthorizationRequired(status, code, message)
	default:
		return apierror.HTTPError(status, code, message)
	}
}
