package api

import (
	"flag"
	"fmt"
	"net/http"

	"github.com/hashicorp-forge/sitekit/internal/cmd/base"
	"github.com/hashicorp-forge/sitekit/pkg/remote"
	"github.com/hashicorp-forge/sitekit/pkg/rest"
	"github.com/hashicorp-forge/sitekit/pkg/value"
)

// RequestCommand implements "api get" and "api post".
type RequestCommand struct {
	*base.Command

	// Method is http.MethodGet or http.MethodPost.
	Method string

	client base.ClientFlags

	flagSelfHosted bool
	flagNamespace  string
}

func (c *RequestCommand) name() string {
	if c.Method == http.MethodPost {
		return "post"
	}
	return "get"
}

func (c *RequestCommand) Synopsis() string {
	if c.Method == http.MethodPost {
		return "Send a POST request"
	}
	return "Send a GET request"
}

func (c *RequestCommand) Help() string {
	usage := fmt.Sprintf(`Usage: sitekit api %s [options] <path> [key=value...]

`, c.name())
	if c.Method == http.MethodPost {
		usage += `  This command POSTs a JSON object built from the key=value arguments.
  Integer and boolean values are sent as such.`
	} else {
		usage += `  This command sends a GET request with the key=value arguments as query
  parameters.`
	}
	return usage + `

  Paths are relative to the namespace on WordPress.com, or to the REST root
  with -self-hosted (e.g. "wp/v2/settings").` +
		c.Flags().Help()
}

func (c *RequestCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(
		flag.NewFlagSet("api "+c.name(), flag.ContinueOnError))
	c.client.AddFlags(f)

	f.BoolVar(
		&c.flagSelfHosted, "self-hosted", false,
		"Send the request to the self_hosted site instead of WordPress.com.",
	)
	f.StringVar(
		&c.flagNamespace, "namespace", rest.NamespaceV11,
		"WordPress.com API namespace, e.g. rest/v1.1 or wpcom/v2.",
	)

	return f
}

func (c *RequestCommand) Run(args []string) int {
	ui := c.UI

	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if flags.NArg() < 1 {
		ui.Error("path argument is required")
		return 1
	}
	path := flags.Arg(0)
	pairs, err := parsePairs(flags.Args()[1:])
	if err != nil {
		ui.Error(err.Error())
		return 1
	}

	clients, err := c.Clients(c.client)
	if err != nil {
		ui.Error(fmt.Sprintf("error loading configuration: %v", err))
		return 1
	}
	defer c.PrintMetrics(clients, c.client)

	var client *rest.Client
	if c.flagSelfHosted {
		client, err = clients.SelfHosted()
	} else {
		client, err = clients.WPCom(c.flagNamespace)
	}
	if err != nil {
		ui.Error(fmt.Sprintf("error creating client: %v", err))
		return 1
	}
	api := remote.New(client, nil)

	ctx, cancel := c.Context()
	defer cancel()

	var (
		v      value.Value
		status int
	)
	if c.Method == http.MethodPost {
		v, status, err = api.Post(ctx, path, bodyFromPairs(pairs))
	} else {
		v, status, err = api.Get(ctx, path, queryFromPairs(pairs))
	}
	if err != nil {
		if status != 0 {
			ui.Error(fmt.Sprintf("request failed with status %d: %v", status, err))
		} else {
			ui.Error(fmt.Sprintf("request failed: %v", err))
		}
		return 1
	}

	if err := output(ui, c.client.Format, v); err != nil {
		ui.Error(err.Error())
		return 1
	}
	return 0
}
