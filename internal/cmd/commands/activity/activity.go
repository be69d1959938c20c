// Package activity implements the "activity" commands, which read a site's
// activity log.
package activity

import (
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/sitekit/internal/cmd/base"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Read a site's activity log"
}

func (c *Command) Help() string {
	return `Usage: sitekit activity <subcommand> [options]

  This command groups subcommands for reading the activity log of a
  WordPress.com or Jetpack site.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}
