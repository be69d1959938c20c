package rewind

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/hashicorp-forge/sitekit/internal/cmd/base"
	"github.com/hashicorp-forge/sitekit/pkg/apierror"
	"github.com/hashicorp-forge/sitekit/pkg/rewind"
)

type StatusCommand struct {
	*base.Command

	client base.ClientFlags

	flagSite     int64
	flagWait     bool
	flagInterval time.Duration
	flagTimeout  time.Duration
}

func (c *StatusCommand) Synopsis() string {
	return "Show a site's rewind state and restore progress"
}

func (c *StatusCommand) Help() string {
	return `Usage: sitekit rewind status -site=<id> [options]

  This command prints the state of a site's rewind subsystem and the
  progress of its current restore. With -wait it polls until the restore
  finishes or fails, and exits non-zero if it failed.` +
		c.Flags().Help()
}

func (c *StatusCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(
		flag.NewFlagSet("rewind status", flag.ContinueOnError))
	c.client.AddFlags(f)

	f.Int64Var(&c.flagSite, "site", 0, "(Required) Site ID.")
	f.BoolVar(&c.flagWait, "wait", false, "Poll until the current restore finishes.")
	f.DurationVar(&c.flagInterval, "interval", 2*time.Second, "Initial delay between polls.")
	f.DurationVar(&c.flagTimeout, "timeout", 30*time.Minute, "Give up waiting after this long.")

	return f
}

func (c *StatusCommand) Run(args []string) int {
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
	if c.flagInterval <= 0 {
		ui.Error("interval must be positive")
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
	svc := rewind.NewService(client, nil, c.Log)

	ctx, cancel := c.Context()
	defer cancel()

	var status *rewind.Status
	if c.flagWait {
		status, err = c.wait(ctx, svc)
	} else {
		status, err = svc.GetRewindStatus(ctx, c.flagSite)
	}
	if err != nil {
		ui.Error(fmt.Sprintf("error reading rewind status: %v", err))
		return 1
	}

	if c.client.Format != base.FormatText {
		if err := base.Output(ui, c.client.Format, status); err != nil {
			ui.Error(err.Error())
			return 1
		}
	} else {
		ui.Output(formatStatus(status))
	}

	if status.Restore != nil && status.Restore.Status == rewind.StatusFail {
		return 1
	}
	return 0
}

// wait polls until the site has no restore or its restore is terminal.
func (c *StatusCommand) wait(ctx context.Context, svc *rewind.Service) (*rewind.Status, error) {
	ctx, cancel := context.WithTimeout(ctx, c.flagTimeout)
	defer cancel()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.flagInterval
	b.MaxInterval = 10 * c.flagInterval
	b.MaxElapsedTime = 0

	var status *rewind.Status
	op := func() error {
		s, err := svc.GetRewindStatus(ctx, c.flagSite)
		if err != nil {
			if !retryable(err) {
				return backoff.Permanent(err)
			}
			c.Log.Warn("error polling rewind status, retrying", "error", err)
			return err
		}

		status = s
		if s.Restore == nil || s.Restore.Status.Terminal() {
			return nil
		}
		c.Log.Info("restore in progress",
			"restore_id", s.Restore.ID,
			"status", s.Restore.Status,
			"progress", s.Restore.Progress,
		)
		return errInProgress
	}

	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return nil, err
	}
	return status, nil
}

var errInProgress = errors.New("restore in progress")

// retryable reports whether a failed poll may succeed if repeated: transport
// errors and 5xx responses are, classified client errors are not.
func retryable(err error) bool {
	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	return apiErr.Kind == apierror.KindHTTP && apiErr.StatusCode >= 500
}

func formatStatus(s *rewind.Status) string {
	var b strings.Builder
	fmt.Fprintf(&b, "State:        %s\n", s.State)
	fmt.Fprintf(&b, "Last updated: %s", s.LastUpdated.Format(time.RFC3339))
	if s.Reason != "" {
		fmt.Fprintf(&b, "\nReason:       %s", s.Reason)
	}

	r := s.Restore
	if r == nil {
		return b.String()
	}
	fmt.Fprintf(&b, "\nRestore:      %s (%s, %d%%)", r.ID, r.Status, r.Progress)
	if r.RewindID != "" {
		fmt.Fprintf(&b, "\nRewind point: %s", r.RewindID)
	}
	if r.Message != "" {
		fmt.Fprintf(&b, "\nMessage:      %s", r.Message)
	}
	if r.CurrentEntry != "" {
		fmt.Fprintf(&b, "\nCurrent:      %s", r.CurrentEntry)
	}
	if r.FailureReason != "" {
		fmt.Fprintf(&b, "\nFailure:      %s", r.FailureReason)
	}
	return b.String()
}
