package rewind

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp-forge/sitekit/pkg/rest"
)

// Service triggers restores and reads rewind status.
type Service struct {
	client  *rest.Client
	trigger RestoreTrigger
	logger  hclog.Logger
}

// NewService creates a new rewind service. Restores go through trigger; a nil
// trigger uses the wpcom/v2 endpoint with the server's default restore types.
func NewService(client *rest.Client, trigger RestoreTrigger, logger hclog.Logger) *Service {
	if trigger == nil {
		trigger = NewTrigger(client, nil)
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Service{
		client:  client.WithNamespace(rest.NamespaceV2),
		trigger: trigger,
		logger:  logger.Named("rewind"),
	}
}

// RestoreSite starts a restore of the site to rewindID and returns the ID of
// the restore job. Progress is observed with GetRewindStatus.
func (s *Service) RestoreSite(ctx context.Context, siteID int64, rewindID string) (string, error) {
	restoreID, err := s.trigger.RestoreSite(ctx, siteID, rewindID)
	if err != nil {
		return "", err
	}

	s.logger.Info("restore requested",
		"site_id", siteID,
		"rewind_id", rewindID,
		"restore_id", restoreID,
	)
	return restoreID, nil
}

// GetRewindStatus reads a snapshot of the site's rewind state. It has no
// side effects.
func (s *Service) GetRewindStatus(ctx context.Context, siteID int64) (*Status, error) {
	resp, err := s.client.Get(ctx, fmt.Sprintf("sites/%d/rewind", siteID), nil)
	if err != nil {
		return nil, err
	}

	status, err := decodeStatus(resp.Value)
	if err != nil {
		s.logger.Warn("error decoding rewind status",
			"site_id", siteID,
			"error", err,
		)
		return nil, err
	}
	return status, nil
}
