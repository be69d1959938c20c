package rest

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp-forge/sitekit/pkg/transport"
)

// Namespaces of the versioned WordPress.com REST API.
const (
	NamespaceV1  = "rest/v1"
	NamespaceV11 = "rest/v1.1"
	NamespaceV2  = "wpcom/v2"
)

// DefaultBaseURL is the WordPress.com public API host.
const DefaultBaseURL = "https://public-api.wordpress.com"

// Config contains configuration for a REST client.
//
// For WordPress.com the BaseURL is the API host and Namespace selects the
// API version. For a self-hosted site BaseURL is the site's REST root (for
// example "https://example.org/wp-json") and Namespace is left empty; routes
// such as "wp/v2/settings" are then passed as the request path.
type Config struct {
	BaseURL   string
	Namespace string

	// Locale is sent as "locale" on rest/* namespaces and "_locale" on wpcom/*
	// namespaces. It is never sent to self-hosted sites.
	Locale string

	UserAgent string

	HTTP transport.HTTPConfig

	// HTTPClient overrides the client built from HTTP.
	HTTPClient *http.Client

	Logger   hclog.Logger
	Observer transport.Observer
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.HTTP.Timeout < 0 {
		return errors.New("HTTP timeout must not be negative")
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.BaseURL, validation.Required, validation.By(httpURL)),
	)
}

func httpURL(v any) error {
	s, _ := v.(string)
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must use http or https scheme, got: %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("must include a host")
	}
	return nil
}

func localeKey(namespace string) string {
	switch {
	case strings.HasPrefix(namespace, "wpcom/"):
		return "_locale"
	case strings.HasPrefix(namespace, "rest/"):
		return "locale"
	default:
		return ""
	}
}
