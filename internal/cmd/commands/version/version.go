package version

import (
	"github.com/hashicorp-forge/sitekit/internal/cmd/base"
	sitekitversion "github.com/hashicorp-forge/sitekit/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the sitekit version"
}

func (c *Command) Help() string {
	return `Usage: sitekit version`
}

func (c *Command) Run(args []string) int {
	c.UI.Output("sitekit " + sitekitversion.Version)
	return 0
}
