package rewind

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/hashicorp-forge/sitekit/pkg/apierror"
	"github.com/hashicorp-forge/sitekit/pkg/value"
)

type statusPayload struct {
	State       *string
	LastUpdated *time.Time
	Reason      *string
	Rewind      *restorePayload
}

type restorePayload struct {
	RestoreID    *value.ID
	RewindID     *value.ID
	Status       *string
	Progress     *int
	Reason       *string
	Message      *string
	CurrentEntry *string
}

func decodeStatus(v value.Value) (*Status, error) {
	if v.Kind() != value.KindMapping {
		return nil, apierror.DecodingFailuref("rewind status is %s, expected mapping", v.Kind())
	}

	var p statusPayload
	if err := value.Decode(v, &p); err != nil {
		return nil, apierror.DecodingFailure(fmt.Errorf("rewind status: %w", err))
	}

	var result *multierror.Error
	status := &Status{Reason: deref(p.Reason)}

	if p.State == nil {
		result = multierror.Append(result, fmt.Errorf("state is required"))
	} else if state, err := ParseState(*p.State); err != nil {
		result = multierror.Append(result, err)
	} else {
		status.State = state
	}

	if p.LastUpdated == nil {
		result = multierror.Append(result, fmt.Errorf("last_updated is required"))
	} else {
		status.LastUpdated = p.LastUpdated.UTC()
	}

	if p.Rewind != nil {
		restore, err := p.Rewind.toRestore()
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("rewind: %w", err))
		} else {
			status.Restore = restore
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, apierror.DecodingFailure(err)
	}
	return status, nil
}

func (p *restorePayload) toRestore() (*Restore, error) {
	if p.Status == nil {
		return nil, fmt.Errorf("status is required")
	}
	st, err := ParseRestoreStatus(*p.Status)
	if err != nil {
		return nil, err
	}
	if p.Progress == nil {
		return nil, fmt.Errorf("progress is required")
	}

	r := &Restore{
		ID:            derefID(p.RestoreID),
		RewindID:      derefID(p.RewindID),
		Status:        st,
		Progress:      *p.Progress,
		FailureReason: deref(p.Reason),
		Message:       deref(p.Message),
		CurrentEntry:  deref(p.CurrentEntry),
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefID(id *value.ID) string {
	if id == nil {
		return ""
	}
	return string(*id)
}
