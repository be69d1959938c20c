// Package base holds what every sitekit command shares: the logger and UI,
// common flags, client construction and output formatting.
package base

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"
)

// Command is embedded by every command.
type Command struct {
	Log hclog.Logger
	UI  cli.Ui

	// FS is where configuration files are read from.
	FS afero.Fs
}

// FlagSet wraps a flag.FlagSet with help output.
type FlagSet struct {
	*flag.FlagSet
}

// NewFlagSet creates a new FlagSet. Parse errors are returned rather than
// printed so commands can report them through the UI.
func NewFlagSet(f *flag.FlagSet) *FlagSet {
	f.SetOutput(io.Discard)
	return &FlagSet{FlagSet: f}
}

// Help returns the options section of a command's help text.
func (f *FlagSet) Help() string {
	var flags []*flag.Flag
	f.VisitAll(func(fl *flag.Flag) {
		flags = append(flags, fl)
	})
	if len(flags) == 0 {
		return ""
	}
	sort.Slice(flags, func(i, j int) bool { return flags[i].Name < flags[j].Name })

	var b strings.Builder
	b.WriteString("\n\nOptions:\n")
	for _, fl := range flags {
		fmt.Fprintf(&b, "\n  -%s", fl.Name)
		if fl.DefValue != "" && fl.DefValue != "false" {
			fmt.Fprintf(&b, "=%s", fl.DefValue)
		}
		fmt.Fprintf(&b, "\n      %s\n", fl.Usage)
	}
	return b.String()
}

// Context returns a context canceled on interrupt.
func (c *Command) Context() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// SplitList splits a comma-separated flag value, dropping empty entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
