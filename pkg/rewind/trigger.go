package rewind

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/hashicorp-forge/sitekit/pkg/apierror"
	"github.com/hashicorp-forge/sitekit/pkg/rest"
	"github.com/hashicorp-forge/sitekit/pkg/value"
)

// RestoreTrigger starts a restore of a site to a rewind point and returns the
// ID of the new restore job.
type RestoreTrigger interface {
	RestoreSite(ctx context.Context, siteID int64, rewindID string) (string, error)
}

var (
	_ RestoreTrigger = (*LegacyTrigger)(nil)
	_ RestoreTrigger = (*Trigger)(nil)
)

// LegacyTrigger starts restores through the rest/v1 activity-log endpoint.
type LegacyTrigger struct {
	client *rest.Client
}

// NewLegacyTrigger creates a LegacyTrigger on the client's host.
func NewLegacyTrigger(client *rest.Client) *LegacyTrigger {
	return &LegacyTrigger{client: client.WithNamespace(rest.NamespaceV1)}
}

// RestoreSite implements RestoreTrigger.
func (t *LegacyTrigger) RestoreSite(ctx context.Context, siteID int64, rewindID string) (string, error) {
	if rewindID == "" {
		return "", errors.New("rewind ID is required")
	}

	path := fmt.Sprintf("activity-log/%d/rewind/to/%s", siteID, url.PathEscape(rewindID))
	resp, err := t.client.Post(ctx, path, nil)
	if err != nil {
		return "", err
	}
	return decodeRestoreID(resp.Value)
}

// Trigger starts restores through the wpcom/v2 rewind endpoint, optionally
// limited to some kinds of content.
type Trigger struct {
	client *rest.Client
	types  *RestoreTypes
}

// NewTrigger creates a Trigger on the client's host. A nil types restores
// everything the server restores by default.
func NewTrigger(client *rest.Client, types *RestoreTypes) *Trigger {
	return &Trigger{
		client: client.WithNamespace(rest.NamespaceV2),
		types:  types,
	}
}

// RestoreSite implements RestoreTrigger.
func (t *Trigger) RestoreSite(ctx context.Context, siteID int64, rewindID string) (string, error) {
	if rewindID == "" {
		return "", errors.New("rewind ID is required")
	}

	var body any
	if t.types != nil {
		body = map[string]any{"types": t.types}
	}

	path := fmt.Sprintf("sites/%d/rewind/to/%s", siteID, url.PathEscape(rewindID))
	resp, err := t.client.Post(ctx, path, body)
	if err != nil {
		return "", err
	}
	return decodeRestoreID(resp.Value)
}

// decodeRestoreID reads {"restore_id": 22}. The ID may be a number or a
// string.
func decodeRestoreID(v value.Value) (string, error) {
	var p struct {
		RestoreID *value.ID
	}
	if v.Kind() != value.KindMapping {
		return "", apierror.DecodingFailuref("restore response is %s, expected mapping", v.Kind())
	}
	if err := value.Decode(v, &p); err != nil {
		return "", apierror.DecodingFailure(fmt.Errorf("restore response: %w", err))
	}
	if p.RestoreID == nil || *p.RestoreID == "" {
		return "", apierror.DecodingFailuref("restore response is missing restore_id")
	}
	return string(*p.RestoreID), nil
}
