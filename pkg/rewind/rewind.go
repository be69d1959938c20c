// Package rewind triggers site restores and reads the state of a site's
// rewind subsystem, including the progress of the current restore.
package rewind

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-multierror"
)

// State is the readiness of a site's rewind subsystem.
type State string

const (
	StateActive              State = "active"
	StateInactive            State = "inactive"
	StateUnavailable         State = "unavailable"
	StateAwaitingCredentials State = "awaiting_credentials"
	StateProvisioning        State = "provisioning"
)

// ParseState parses a state reported by the server. Unknown states are an
// error.
func ParseState(s string) (State, error) {
	switch st := State(s); st {
	case StateActive, StateInactive, StateUnavailable, StateAwaitingCredentials, StateProvisioning:
		return st, nil
	}
	return "", fmt.Errorf("unknown rewind state %q", s)
}

// RestoreStatus is the state of one restore job. The server moves a job from
// queued to running and then to finished or fail.
type RestoreStatus string

const (
	StatusQueued   RestoreStatus = "queued"
	StatusRunning  RestoreStatus = "running"
	StatusFinished RestoreStatus = "finished"
	StatusFail     RestoreStatus = "fail"
)

// ParseRestoreStatus parses a restore status reported by the server. Unknown
// statuses are an error.
func ParseRestoreStatus(s string) (RestoreStatus, error) {
	switch st := RestoreStatus(s); st {
	case StatusQueued, StatusRunning, StatusFinished, StatusFail:
		return st, nil
	}
	return "", fmt.Errorf("unknown restore status %q", s)
}

// Terminal reports whether no further transitions follow.
func (s RestoreStatus) Terminal() bool {
	return s == StatusFinished || s == StatusFail
}

// Status is a snapshot of a site's rewind subsystem.
type Status struct {
	State       State     `json:"state"`
	LastUpdated time.Time `json:"last_updated"`

	// Reason explains a state other than active, when the server gives one.
	Reason string `json:"reason,omitempty"`

	// Restore is the current or most recently completed restore. It is nil
	// when no restore was requested or its result has been cleared.
	Restore *Restore `json:"restore,omitempty"`
}

// Restore is a snapshot of one restore job.
type Restore struct {
	ID       string        `json:"restore_id"`
	RewindID string        `json:"rewind_id,omitempty"`
	Status   RestoreStatus `json:"status"`

	// Progress is a percentage in [0, 100].
	Progress int `json:"progress"`

	// FailureReason is set if and only if Status is StatusFail.
	FailureReason string `json:"failure_reason,omitempty"`

	Message      string `json:"message,omitempty"`
	CurrentEntry string `json:"current_entry,omitempty"`
}

// Validate checks the relationship between status, progress and failure
// reason.
func (r Restore) Validate() error {
	var result *multierror.Error

	if err := validation.Validate(r.ID, validation.Required); err != nil {
		result = multierror.Append(result, fmt.Errorf("restore_id: %w", err))
	}
	if err := validation.Validate(r.Progress, validation.Min(0), validation.Max(100)); err != nil {
		result = multierror.Append(result, fmt.Errorf("progress: %w", err))
	}

	switch r.Status {
	case StatusQueued:
		if r.Progress != 0 {
			result = multierror.Append(result, fmt.Errorf("queued restore has progress %d, expected 0", r.Progress))
		}
	case StatusRunning:
		if r.Progress <= 0 {
			result = multierror.Append(result, fmt.Errorf("running restore has progress %d, expected more than 0", r.Progress))
		}
	case StatusFinished:
		if r.Progress != 100 {
			result = multierror.Append(result, fmt.Errorf("finished restore has progress %d, expected 100", r.Progress))
		}
	case StatusFail:
		if r.FailureReason == "" {
			result = multierror.Append(result, fmt.Errorf("failed restore has no reason"))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("unknown restore status %q", r.Status))
	}

	if r.Status != StatusFail && r.FailureReason != "" {
		result = multierror.Append(result, fmt.Errorf("%s restore has failure reason %q", r.Status, r.FailureReason))
	}

	return result.ErrorOrNil()
}

// RestoreTypes selects what a restore brings back. The zero value restores
// nothing; use AllRestoreTypes for a full restore.
type RestoreTypes struct {
	Themes   bool `json:"themes"`
	Plugins  bool `json:"plugins"`
	Uploads  bool `json:"uploads"`
	SQLs     bool `json:"sqls"`
	Roots    bool `json:"roots"`
	Contents bool `json:"contents"`
}

// AllRestoreTypes returns a selection of everything.
func AllRestoreTypes() RestoreTypes {
	return RestoreTypes{
		Themes:   true,
		Plugins:  true,
		Uploads:  true,
		SQLs:     true,
		Roots:    true,
		Contents: true,
	}
}

// ParseRestoreTypes builds a selection from names such as "themes" or
// "sqls". "all" selects everything.
func ParseRestoreTypes(names []string) (RestoreTypes, error) {
	var t RestoreTypes
	for _, name := range names {
		switch name {
		case "all":
			t = AllRestoreTypes()
		case "themes":
			t.Themes = true
		case "plugins":
			t.Plugins = true
		case "uploads":
			t.Uploads = true
		case "sqls":
			t.SQLs = true
		case "roots":
			t.Roots = true
		case "contents":
			t.Contents = true
		default:
			return RestoreTypes{}, fmt.Errorf("unknown restore type %q", name)
		}
	}
	return t, nil
}
