package rewind

import (
	"flag"
	"fmt"

	"github.com/hashicorp-forge/sitekit/internal/cmd/base"
	"github.com/hashicorp-forge/sitekit/pkg/rewind"
)

type RestoreCommand struct {
	*base.Command

	client base.ClientFlags

	flagSite     int64
	flagRewindID string
	flagLegacy   bool
	flagTypes    string
}

func (c *RestoreCommand) Synopsis() string {
	return "Restore a site to a rewind point"
}

func (c *RestoreCommand) Help() string {
	return `Usage: sitekit rewind restore -site=<id> -rewind-id=<id> [options]

  This command starts a restore and prints the restore ID. Follow its
  progress with "sitekit rewind status -wait".` +
		c.Flags().Help()
}

func (c *RestoreCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(
		flag.NewFlagSet("rewind restore", flag.ContinueOnError))
	c.client.AddFlags(f)

	f.Int64Var(&c.flagSite, "site", 0, "(Required) Site ID.")
	f.StringVar(&c.flagRewindID, "rewind-id", "", "(Required) Rewind point, as listed by \"activity list\".")
	f.BoolVar(
		&c.flagLegacy, "legacy", false,
		"Use the rest/v1 activity-log endpoint. Defaults to the legacy_restore configuration setting.",
	)
	f.StringVar(
		&c.flagTypes, "types", "",
		"Comma-separated content to restore: themes, plugins, uploads, sqls, roots, contents or all.",
	)

	return f
}

func (c *RestoreCommand) Run(args []string) int {
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
	if c.flagRewindID == "" {
		ui.Error("rewind-id flag is required")
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

	legacy := c.flagLegacy || clients.Config.WPCom.LegacyRestore
	if legacy && c.flagTypes != "" {
		ui.Error("types flag is not supported by the legacy restore endpoint")
		return 1
	}

	var trigger rewind.RestoreTrigger
	if legacy {
		trigger = rewind.NewLegacyTrigger(client)
	} else {
		var types *rewind.RestoreTypes
		if c.flagTypes != "" {
			t, err := rewind.ParseRestoreTypes(base.SplitList(c.flagTypes))
			if err != nil {
				ui.Error(fmt.Sprintf("error parsing types flag: %v", err))
				return 1
			}
			types = &t
		}
		trigger = rewind.NewTrigger(client, types)
	}

	ctx, cancel := c.Context()
	defer cancel()

	restoreID, err := rewind.NewService(client, trigger, c.Log).
		RestoreSite(ctx, c.flagSite, c.flagRewindID)
	if err != nil {
		ui.Error(fmt.Sprintf("error starting restore: %v", err))
		return 1
	}

	if c.client.Format != base.FormatText {
		out := map[string]string{"restore_id": restoreID}
		if err := base.Output(ui, c.client.Format, out); err != nil {
			ui.Error(err.Error())
			return 1
		}
		return 0
	}
	ui.Output(fmt.Sprintf("Restore %s started.", restoreID))
	return 0
}
