package cmd

import (
	"net/http"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"

	"github.com/hashicorp-forge/sitekit/internal/cmd/base"
	"github.com/hashicorp-forge/sitekit/internal/cmd/commands/activity"
	"github.com/hashicorp-forge/sitekit/internal/cmd/commands/api"
	"github.com/hashicorp-forge/sitekit/internal/cmd/commands/rewind"
	"github.com/hashicorp-forge/sitekit/internal/cmd/commands/version"
)

// Commands is the mapping of all available sitekit commands.
var Commands map[string]cli.CommandFactory

func initCommands(log hclog.Logger, ui cli.Ui) {
	b := &base.Command{
		Log: log,
		UI:  ui,
		FS:  afero.NewOsFs(),
	}

	Commands = map[string]cli.CommandFactory{
		"activity": func() (cli.Command, error) {
			return &activity.Command{Command: b}, nil
		},
		"activity groups": func() (cli.Command, error) {
			return &activity.GroupsCommand{Command: b}, nil
		},
		"activity list": func() (cli.Command, error) {
			return &activity.ListCommand{Command: b}, nil
		},
		"activity summary": func() (cli.Command, error) {
			return &activity.SummaryCommand{Command: b}, nil
		},
		"api": func() (cli.Command, error) {
			return &api.Command{Command: b}, nil
		},
		"api call": func() (cli.Command, error) {
			return &api.CallCommand{Command: b}, nil
		},
		"api get": func() (cli.Command, error) {
			return &api.RequestCommand{Command: b, Method: http.MethodGet}, nil
		},
		"api post": func() (cli.Command, error) {
			return &api.RequestCommand{Command: b, Method: http.MethodPost}, nil
		},
		"rewind": func() (cli.Command, error) {
			return &rewind.Command{Command: b}, nil
		},
		"rewind restore": func() (cli.Command, error) {
			return &rewind.RestoreCommand{Command: b}, nil
		},
		"rewind status": func() (cli.Command, error) {
			return &rewind.StatusCommand{Command: b}, nil
		},
		"version": func() (cli.Command, error) {
			return &version.Command{Command: b}, nil
		},
	}
}
