// Package api implements the "api" commands, which make raw REST requests
// and XML-RPC calls and print the decoded response.
package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/sitekit/internal/cmd/base"
	"github.com/hashicorp-forge/sitekit/pkg/value"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Make raw API requests"
}

func (c *Command) Help() string {
	return `Usage: sitekit api <subcommand> [options] [args]

  This command groups subcommands for sending requests that sitekit has no
  typed command for. Responses are printed as decoded, without
  interpretation.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}

// parseParam reads an integer, a boolean or else a string.
func parseParam(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if s == "true" || s == "false" {
		return s == "true"
	}
	return s
}

// parsePairs reads key=value arguments.
func parsePairs(args []string) (map[string]string, error) {
	pairs := make(map[string]string, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("argument %q is not of the form key=value", arg)
		}
		pairs[k] = v
	}
	return pairs, nil
}

func queryFromPairs(pairs map[string]string) url.Values {
	q := url.Values{}
	for k, v := range pairs {
		q.Set(k, v)
	}
	return q
}

func bodyFromPairs(pairs map[string]string) map[string]any {
	if len(pairs) == 0 {
		return nil
	}
	body := make(map[string]any, len(pairs))
	for k, v := range pairs {
		body[k] = parseParam(v)
	}
	return body
}

func output(ui cli.Ui, format string, v value.Value) error {
	if format == base.FormatText {
		format = base.FormatJSON
	}
	return base.Output(ui, format, v)
}
