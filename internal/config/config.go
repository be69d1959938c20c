// Package config loads the sitekit HCL configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/hashicorp-forge/sitekit/pkg/rest"
	"github.com/hashicorp-forge/sitekit/pkg/transport"
)

// TokenEnvVar is read for the WordPress.com token when no configuration file
// sets one.
const TokenEnvVar = "SITEKIT_TOKEN"

// Config is the root of the configuration file.
type Config struct {
	// LogLevel is one of trace, debug, info, warn or error.
	LogLevel string `hcl:"log_level,optional"`

	// WPCom configures the WordPress.com REST API.
	WPCom *WPCom `hcl:"wpcom,block"`

	// SelfHosted configures a self-hosted site's REST API.
	SelfHosted *SelfHosted `hcl:"self_hosted,block"`

	// XMLRPC configures a site's XML-RPC endpoint.
	XMLRPC *XMLRPC `hcl:"xmlrpc,block"`
}

// WPCom configures the WordPress.com REST API.
type WPCom struct {
	BaseURL   string `hcl:"base_url,optional"`
	AuthToken string `hcl:"auth_token,optional"`
	Timeout   string `hcl:"timeout,optional"`
	Locale    string `hcl:"locale,optional"`
	UserAgent string `hcl:"user_agent,optional"`
	TLSVerify *bool  `hcl:"tls_verify,optional"`

	// LegacyRestore starts restores through the rest/v1 activity-log
	// endpoint instead of wpcom/v2.
	LegacyRestore bool `hcl:"legacy_restore,optional"`
}

// SelfHosted configures a self-hosted site's REST API.
type SelfHosted struct {
	// APIBase is the REST root, e.g. "https://example.org/wp-json".
	APIBase   string `hcl:"api_base"`
	AuthToken string `hcl:"auth_token,optional"`
	Timeout   string `hcl:"timeout,optional"`
	TLSVerify *bool  `hcl:"tls_verify,optional"`
}

// XMLRPC configures a site's XML-RPC endpoint.
type XMLRPC struct {
	// Endpoint is the full URL, e.g. "https://example.org/xmlrpc.php".
	Endpoint  string `hcl:"endpoint"`
	Timeout   string `hcl:"timeout,optional"`
	TLSVerify *bool  `hcl:"tls_verify,optional"`
}

// Default returns the configuration used when no file is given. The
// WordPress.com token is read from SITEKIT_TOKEN.
func Default() *Config {
	cfg := &Config{
		WPCom: &WPCom{AuthToken: os.Getenv(TokenEnvVar)},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads, decodes and validates the configuration file at path.
func Load(fs afero.Fs, path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("configuration file path is required")
	}

	src, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	var cfg Config
	if err := hclsimple.Decode(path, src, evalContext(), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.WPCom == nil {
		c.WPCom = &WPCom{}
	}
	if c.WPCom.BaseURL == "" {
		c.WPCom.BaseURL = rest.DefaultBaseURL
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.LogLevel, validation.By(logLevel)),
		validation.Field(&c.WPCom),
		validation.Field(&c.SelfHosted),
		validation.Field(&c.XMLRPC),
	)
}

// Validate checks if the wpcom block is valid.
func (w WPCom) Validate() error {
	return validation.ValidateStruct(&w,
		validation.Field(&w.BaseURL, validation.Required, is.RequestURL),
		validation.Field(&w.Timeout, validation.By(duration)),
	)
}

// Validate checks if the self_hosted block is valid.
func (s SelfHosted) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.APIBase, validation.Required, is.RequestURL),
		validation.Field(&s.Timeout, validation.By(duration)),
	)
}

// Validate checks if the xmlrpc block is valid.
func (x XMLRPC) Validate() error {
	return validation.ValidateStruct(&x,
		validation.Field(&x.Endpoint, validation.Required, is.RequestURL),
		validation.Field(&x.Timeout, validation.By(duration)),
	)
}

// HTTPConfig returns the transport settings of the wpcom block.
func (w WPCom) HTTPConfig() transport.HTTPConfig {
	return transport.HTTPConfig{
		Timeout:   parseDuration(w.Timeout),
		TLSVerify: w.TLSVerify,
		AuthToken: w.AuthToken,
	}
}

// HTTPConfig returns the transport settings of the self_hosted block.
func (s SelfHosted) HTTPConfig() transport.HTTPConfig {
	return transport.HTTPConfig{
		Timeout:   parseDuration(s.Timeout),
		TLSVerify: s.TLSVerify,
		AuthToken: s.AuthToken,
	}
}

// HTTPConfig returns the transport settings of the xmlrpc block.
func (x XMLRPC) HTTPConfig() transport.HTTPConfig {
	return transport.HTTPConfig{
		Timeout:   parseDuration(x.Timeout),
		TLSVerify: x.TLSVerify,
	}
}

func logLevel(v any) error {
	s, _ := v.(string)
	if hclog.LevelFromString(s) == hclog.NoLevel {
		return fmt.Errorf("unknown log level %q", s)
	}
	return nil
}

func duration(v any) error {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	if d < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

// parseDuration returns zero for empty or invalid values; Validate rejects
// invalid ones before use.
func parseDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"env": envFunc,
		},
	}
}

// envFunc reads an environment variable; unset variables are empty.
var envFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "name", Type: cty.String},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		return cty.StringVal(os.Getenv(args[0].AsString())), nil
	},
})
