// Package rewind implements the "rewind" commands, which restore sites and
// report restore progress.
package rewind

import (
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/sitekit/internal/cmd/base"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Restore a site and follow restore progress"
}

func (c *Command) Help() string {
	return `Usage: sitekit rewind <subcommand> [options]

  This command groups subcommands for restoring a site to a point in its
  activity log.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}
