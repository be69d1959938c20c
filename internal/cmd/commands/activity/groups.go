package activity

import (
	"flag"
	"fmt"

	"github.com/hashicorp-forge/sitekit/internal/cmd/base"
	"github.com/hashicorp-forge/sitekit/pkg/activity"
)

type GroupsCommand struct {
	*base.Command

	client   base.ClientFlags
	flagSite int64
}

func (c *GroupsCommand) Synopsis() string {
	return "Count a site's activity by category"
}

func (c *GroupsCommand) Help() string {
	return `Usage: sitekit activity groups -site=<id> [options]

  This command prints each activity category of a site with the number of
  activities in it.` +
		c.Flags().Help()
}

func (c *GroupsCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(
		flag.NewFlagSet("activity groups", flag.ContinueOnError))
	c.client.AddFlags(f)
	f.Int64Var(&c.flagSite, "site", 0, "(Required) Site ID.")
	return f
}

func (c *GroupsCommand) Run(args []string) int {
	ui := c.UI

	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if c.flagSite == 0 {
		ui.Error("site flag is required")
		return 1
	}

	clients, err := c.Clients(c.client)
	if err != nil {
		ui.Error(fmt.Sprintf("error loading configuration: %v", err))
		return 1
	}
	defer c.PrintMetrics(clients, c.client)

	client, err := clients.WPCom("")
	if err != nil {
		ui.Error(fmt.Sprintf("error creating client: %v", err))
		return 1
	}

	ctx, cancel := c.Context()
	defer cancel()

	groups, err := activity.NewService(client, c.Log).GetActivityGroupsForSite(ctx, c.flagSite)
	if err != nil {
		ui.Error(fmt.Sprintf("error reading activity groups: %v", err))
		return 1
	}

	if c.client.Format != base.FormatText {
		if err := base.Output(ui, c.client.Format, groups); err != nil {
			ui.Error(err.Error())
			return 1
		}
		return 0
	}

	for _, g := range groups {
		ui.Output(formatGroup(g))
	}
	return 0
}

func formatGroup(g activity.Group) string {
	return fmt.Sprintf("%-16s %6d  %s", g.Key, g.Count, g.Name)
}
