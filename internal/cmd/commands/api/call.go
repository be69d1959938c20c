package api

import (
	"flag"
	"fmt"

	"github.com/hashicorp-forge/sitekit/internal/cmd/base"
	"github.com/hashicorp-forge/sitekit/pkg/remote"
)

type CallCommand struct {
	*base.Command

	client base.ClientFlags
}

func (c *CallCommand) Synopsis() string {
	return "Invoke an XML-RPC method"
}

func (c *CallCommand) Help() string {
	return `Usage: sitekit api call [options] <method> [param...]

  This command invokes a method on the configured XML-RPC endpoint with
  positional parameters. Integer and boolean parameters are sent as such,
  everything else as a string.

  Example:

      $ sitekit api call wp.getPost 1 admin secret 42` +
		c.Flags().Help()
}

func (c *CallCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(
		flag.NewFlagSet("api call", flag.ContinueOnError))
	c.client.AddFlags(f)
	return f
}

func (c *CallCommand) Run(args []string) int {
	ui := c.UI

	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if flags.NArg() < 1 {
		ui.Error("method argument is required")
		return 1
	}
	method := flags.Arg(0)
	params := make([]any, 0, flags.NArg()-1)
	for _, arg := range flags.Args()[1:] {
		params = append(params, parseParam(arg))
	}

	clients, err := c.Clients(c.client)
	if err != nil {
		ui.Error(fmt.Sprintf("error loading configuration: %v", err))
		return 1
	}
	defer c.PrintMetrics(clients, c.client)

	client, err := clients.XMLRPC()
	if err != nil {
		ui.Error(fmt.Sprintf("error creating client: %v", err))
		return 1
	}

	ctx, cancel := c.Context()
	defer cancel()

	v, _, err := remote.New(nil, client).CallMethod(ctx, method, params...)
	if err != nil {
		ui.Error(fmt.Sprintf("error calling %s: %v", method, err))
		return 1
	}

	if err := output(ui, c.client.Format, v); err != nil {
		ui.Error(err.Error())
		return 1
	}
	return 0
}
