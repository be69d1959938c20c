package base

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hashicorp-forge/sitekit/internal/config"
	"github.com/hashicorp-forge/sitekit/internal/version"
	"github.com/hashicorp-forge/sitekit/pkg/rest"
	"github.com/hashicorp-forge/sitekit/pkg/telemetry"
	"github.com/hashicorp-forge/sitekit/pkg/xmlrpc"
)

// ConfigEnvVar names the configuration file when -config is not given.
const ConfigEnvVar = "SITEKIT_CONFIG"

// ClientFlags are accepted by every command that talks to a backend.
type ClientFlags struct {
	Config  string
	Format  string
	Metrics bool
}

// AddFlags registers the client flags on f.
func (c *ClientFlags) AddFlags(f *FlagSet) {
	f.StringVar(
		&c.Config, "config", "",
		fmt.Sprintf("[%s] Path to HCL configuration file.", ConfigEnvVar),
	)
	f.StringVar(
		&c.Format, "format", FormatText,
		"Output format: text, json or yaml.",
	)
	f.BoolVar(
		&c.Metrics, "metrics", false,
		"Print transport metrics when the command finishes.",
	)
}

// Clients builds transports from configuration. All transports report to
// one metrics registry.
type Clients struct {
	Config *config.Config

	log      hclog.Logger
	registry *prometheus.Registry
	observer *telemetry.Observer
}

// Clients loads configuration and prepares transports. The logger's level is
// set from the configuration.
func (c *Command) Clients(flags ClientFlags) (*Clients, error) {
	if !ValidFormat(flags.Format) {
		return nil, fmt.Errorf("unsupported output format %q", flags.Format)
	}

	path := flags.Config
	if path == "" {
		path = os.Getenv(ConfigEnvVar)
	}

	cfg := config.Default()
	if path != "" {
		var err error
		cfg, err = config.Load(c.FS, path)
		if err != nil {
			return nil, err
		}
	}
	c.Log.SetLevel(hclog.LevelFromString(cfg.LogLevel))

	registry := prometheus.NewRegistry()
	observer, err := telemetry.NewObserver(registry)
	if err != nil {
		return nil, err
	}

	return &Clients{
		Config:   cfg,
		log:      c.Log,
		registry: registry,
		observer: observer,
	}, nil
}

// WPCom returns a WordPress.com REST client for namespace.
func (cl *Clients) WPCom(namespace string) (*rest.Client, error) {
	w := cl.Config.WPCom
	return rest.NewClient(rest.Config{
		BaseURL:   w.BaseURL,
		Namespace: namespace,
		Locale:    w.Locale,
		UserAgent: userAgent(w.UserAgent),
		HTTP:      w.HTTPConfig(),
		Logger:    cl.log,
		Observer:  cl.observer,
	})
}

// SelfHosted returns a REST client for the self-hosted site.
func (cl *Clients) SelfHosted() (*rest.Client, error) {
	s := cl.Config.SelfHosted
	if s == nil {
		return nil, fmt.Errorf("no self_hosted block in configuration")
	}
	return rest.NewClient(rest.Config{
		BaseURL:   s.APIBase,
		UserAgent: userAgent(""),
		HTTP:      s.HTTPConfig(),
		Logger:    cl.log,
		Observer:  cl.observer,
	})
}

// XMLRPC returns a client for the configured XML-RPC endpoint.
func (cl *Clients) XMLRPC() (*xmlrpc.Client, error) {
	x := cl.Config.XMLRPC
	if x == nil {
		return nil, fmt.Errorf("no xmlrpc block in configuration")
	}
	return xmlrpc.NewClient(xmlrpc.Config{
		Endpoint:  x.Endpoint,
		UserAgent: userAgent(""),
		HTTP:      x.HTTPConfig(),
		Logger:    cl.log,
		Observer:  cl.observer,
	})
}

// Metrics returns a text summary of every exchange made so far.
func (cl *Clients) Metrics() (string, error) {
	var b strings.Builder
	if err := telemetry.WriteText(&b, cl.registry); err != nil {
		return "", err
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// PrintMetrics writes the metrics summary when -metrics was given.
func (c *Command) PrintMetrics(cl *Clients, flags ClientFlags) {
	if !flags.Metrics {
		return
	}
	text, err := cl.Metrics()
	if err != nil {
		c.UI.Warn(fmt.Sprintf("error gathering metrics: %v", err))
		return
	}
	c.UI.Info(text)
}

func userAgent(configured string) string {
	if configured != "" {
		return configured
	}
	return "sitekit/" + version.Version
}
