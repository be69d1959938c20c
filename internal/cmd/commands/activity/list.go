package activity

import (
	"flag"
	"fmt"
	"time"

	"github.com/araddon/dateparse"

	"github.com/hashicorp-forge/sitekit/internal/cmd/base"
	"github.com/hashicorp-forge/sitekit/pkg/activity"
)

type ListCommand struct {
	*base.Command

	client base.ClientFlags

	flagSite   int64
	flagOffset int
	flagCount  int
	flagAfter  string
	flagBefore string
	flagGroups string
}

func (c *ListCommand) Synopsis() string {
	return "List one page of a site's activity"
}

func (c *ListCommand) Help() string {
	return `Usage: sitekit activity list -site=<id> [options]

  This command prints one page of activity, newest first. Use -offset and
  -count to page through the log, -after and -before (e.g. 2017-12-05) to bound
  it by day, and -groups to restrict it to categories.` +
		c.Flags().Help()
}

func (c *ListCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(
		flag.NewFlagSet("activity list", flag.ContinueOnError))
	c.client.AddFlags(f)

	f.Int64Var(&c.flagSite, "site", 0, "(Required) Site ID.")
	f.IntVar(&c.flagOffset, "offset", 0, "Number of activities to skip.")
	f.IntVar(&c.flagCount, "count", 20, "Page size.")
	f.StringVar(&c.flagAfter, "after", "", "Only activity on or after this day.")
	f.StringVar(&c.flagBefore, "before", "", "Only activity on or before this day.")
	f.StringVar(&c.flagGroups, "groups", "", "Comma-separated category keys, e.g. post,plugin.")

	return f
}

func (c *ListCommand) Run(args []string) int {
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

	req := activity.PaginationRequest{
		Offset: c.flagOffset,
		Count:  c.flagCount,
		Groups: base.SplitList(c.flagGroups),
	}
	var err error
	if req.After, err = parseDay(c.flagAfter); err != nil {
		ui.Error(fmt.Sprintf("error parsing after flag: %v", err))
		return 1
	}
	if req.Before, err = parseDay(c.flagBefore); err != nil {
		ui.Error(fmt.Sprintf("error parsing before flag: %v", err))
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

	page, err := activity.NewService(client, c.Log).GetActivityForSite(ctx, c.flagSite, req)
	if err != nil {
		ui.Error(fmt.Sprintf("error listing activity: %v", err))
		return 1
	}

	if c.client.Format != base.FormatText {
		if err := base.Output(ui, c.client.Format, page); err != nil {
			ui.Error(err.Error())
			return 1
		}
		return 0
	}

	for _, a := range page.Activities {
		ui.Output(formatActivity(a))
	}
	switch {
	case !page.HasMore:
	case req.Paged():
		ui.Info(fmt.Sprintf("More activity follows; continue with -offset=%d.",
			c.flagOffset+c.flagCount))
	default:
		ui.Info("The day has more activity than one page; add -groups or set both -after and -before to page through it.")
	}
	return 0
}

func formatActivity(a activity.Activity) string {
	actor := "-"
	if a.Actor != nil && a.Actor.Name != "" {
		actor = a.Actor.Name
	}
	return fmt.Sprintf("%s  %-24s %-20s %s (%s)",
		a.Published.Format(time.RFC3339), a.Name, actor, a.Summary, a.ID)
}

// parseDay reads a day such as "2017-12-05". Other common date layouts are
// accepted; only the date part is sent.
func parseDay(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
