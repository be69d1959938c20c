package activity

import (
	"context"
	"flag"
	"fmt"

	"github.com/hashicorp-forge/sitekit/internal/cmd/base"
	"github.com/hashicorp-forge/sitekit/pkg/activity"
	"github.com/hashicorp-forge/sitekit/pkg/async"
)

type SummaryCommand struct {
	*base.Command

	client    base.ClientFlags
	flagSite  int64
	flagCount int
}

type summary struct {
	Groups []activity.Group    `json:"groups"`
	Recent []activity.Activity `json:"recent"`
}

func (c *SummaryCommand) Synopsis() string {
	return "Show activity categories and the most recent activity"
}

func (c *SummaryCommand) Help() string {
	return `Usage: sitekit activity summary -site=<id> [options]

  This command fetches a site's activity categories and its most recent
  activity concurrently and prints both.` +
		c.Flags().Help()
}

func (c *SummaryCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(
		flag.NewFlagSet("activity summary", flag.ContinueOnError))
	c.client.AddFlags(f)
	f.Int64Var(&c.flagSite, "site", 0, "(Required) Site ID.")
	f.IntVar(&c.flagCount, "count", 5, "Number of recent activities to show.")
	return f
}

func (c *SummaryCommand) Run(args []string) int {
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
	svc := activity.NewService(client, c.Log)

	ctx, cancel := c.Context()
	defer cancel()

	groupsFuture := async.Go(ctx, func(ctx context.Context) ([]activity.Group, error) {
		return svc.GetActivityGroupsForSite(ctx, c.flagSite)
	})
	pageFuture := async.Go(ctx, func(ctx context.Context) (*activity.PaginationResult, error) {
		return svc.GetActivityForSite(ctx, c.flagSite, activity.PaginationRequest{Count: c.flagCount})
	})

	groups, err := groupsFuture.Wait(ctx)
	if err != nil {
		pageFuture.Cancel()
		ui.Error(fmt.Sprintf("error reading activity groups: %v", err))
		return 1
	}
	page, err := pageFuture.Wait(ctx)
	if err != nil {
		ui.Error(fmt.Sprintf("error listing activity: %v", err))
		return 1
	}

	if c.client.Format != base.FormatText {
		out := summary{Groups: groups, Recent: page.Activities}
		if err := base.Output(ui, c.client.Format, out); err != nil {
			ui.Error(err.Error())
			return 1
		}
		return 0
	}

	ui.Output("Categories:")
	for _, g := range groups {
		ui.Output("  " + formatGroup(g))
	}
	ui.Output("")
	ui.Output("Recent activity:")
	for _, a := range page.Activities {
		ui.Output("  " + formatActivity(a))
	}
	return 0
}
