package base

import (
	"context"
	"flag"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/sitekit/pkg/rest"
)

func newTestCommand(t *testing.T, configHCL string) (*Command, *cli.MockUi) {
	t.Helper()
	t.Setenv(ConfigEnvVar, "")

	fs := afero.NewMemMapFs()
	if configHCL != "" {
		require.NoError(t, afero.WriteFile(fs, "/sitekit.hcl", []byte(configHCL), 0o644))
	}
	ui := cli.NewMockUi()
	return &Command{
		Log: hclog.NewNullLogger(),
		UI:  ui,
		FS:  fs,
	}, ui
}

func TestFlagSetHelp(t *testing.T) {
	var flags ClientFlags
	f := NewFlagSet(flag.NewFlagSet("test", flag.ContinueOnError))
	flags.AddFlags(f)

	help := f.Help()
	assert.Contains(t, help, "Options:")
	assert.Contains(t, help, "-config")
	assert.Contains(t, help, "-format=text")
	assert.Contains(t, help, "-metrics\n")

	err := f.Parse([]string{"-format", "yaml", "-metrics"})
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, flags.Format)
	assert.True(t, flags.Metrics)

	assert.Error(t, f.Parse([]string{"-unknown"}))
}

func TestClientsDefaultConfig(t *testing.T) {
	c, _ := newTestCommand(t, "")

	clients, err := c.Clients(ClientFlags{Format: FormatText})
	require.NoError(t, err)
	assert.Equal(t, rest.DefaultBaseURL, clients.Config.WPCom.BaseURL)

	client, err := clients.WPCom(rest.NamespaceV2)
	require.NoError(t, err)
	assert.Equal(t, rest.NamespaceV2, client.Namespace())

	_, err = clients.SelfHosted()
	assert.Error(t, err)
	_, err = clients.XMLRPC()
	assert.Error(t, err)
}

func TestClientsConfigFile(t *testing.T) {
	c, _ := newTestCommand(t, `
log_level = "debug"

wpcom {
  base_url = "https://api.example.com"
}

self_hosted {
  api_base = "https://example.org/wp-json"
}

xmlrpc {
  endpoint = "https://example.org/xmlrpc.php"
}
`)

	clients, err := c.Clients(ClientFlags{Config: "/sitekit.hcl", Format: FormatJSON})
	require.NoError(t, err)
	assert.Equal(t, "debug", clients.Config.LogLevel)

	selfHosted, err := clients.SelfHosted()
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/wp-json/wp/v2/settings", selfHosted.URL("wp/v2/settings", nil))

	x, err := clients.XMLRPC()
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/xmlrpc.php", x.Endpoint())
}

func TestClientsErrors(t *testing.T) {
	c, _ := newTestCommand(t, `wpcom { base_url = "not a url" }`)

	_, err := c.Clients(ClientFlags{Format: "xml"})
	assert.ErrorContains(t, err, "unsupported output format")

	_, err = c.Clients(ClientFlags{Config: "/missing.hcl", Format: FormatText})
	assert.Error(t, err)

	_, err = c.Clients(ClientFlags{Config: "/sitekit.hcl", Format: FormatText})
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c, ui := newTestCommand(t, `wpcom { base_url = "`+server.URL+`" }`)
	flags := ClientFlags{Config: "/sitekit.hcl", Format: FormatText, Metrics: true}
	clients, err := c.Clients(flags)
	require.NoError(t, err)

	client, err := clients.WPCom(rest.NamespaceV11)
	require.NoError(t, err)
	_, err = client.Get(context.Background(), "me", nil)
	require.NoError(t, err)

	c.PrintMetrics(clients, flags)
	out := ui.OutputWriter.String()
	assert.Contains(t, out, "sitekit_client_requests_total")
	assert.Contains(t, out, `result="ok"`)
	assert.Contains(t, out, `transport="rest"`)

	ui.OutputWriter.Reset()
	c.PrintMetrics(clients, ClientFlags{})
	assert.Empty(t, ui.OutputWriter.String())
}

func TestOutput(t *testing.T) {
	v := struct {
		Name  string   `json:"name"`
		Count int      `json:"count"`
		Tags  []string `json:"tags"`
		Flag  string   `json:"flag"`
	}{Name: "Posts", Count: 3, Tags: []string{"a", "b"}, Flag: "true"}

	ui := cli.NewMockUi()
	require.NoError(t, Output(ui, FormatJSON, v))
	assert.JSONEq(t, `{"name":"Posts","count":3,"tags":["a","b"],"flag":"true"}`, ui.OutputWriter.String())

	ui = cli.NewMockUi()
	require.NoError(t, Output(ui, FormatYAML, v))
	assert.Equal(t, "name: Posts\ncount: 3\ntags:\n    - a\n    - b\nflag: \"true\"\n", ui.OutputWriter.String())

	assert.Error(t, Output(cli.NewMockUi(), FormatText, v))
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList(""))
	assert.Nil(t, SplitList(" , ,"))
	assert.Equal(t, []string{"post"}, SplitList("post"))
	assert.Equal(t, []string{"plugins", "themes", "uploads"}, SplitList("plugins, themes,,uploads ,"))
}
