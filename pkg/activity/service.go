package activity

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp-forge/sitekit/pkg/rest"
)

// Service reads activity from the wpcom/v2 API.
type Service struct {
	client *rest.Client
	logger hclog.Logger
}

// NewService creates a new activity service. The client may be bound to any
// namespace; the service always uses wpcom/v2.
func NewService(client *rest.Client, logger hclog.Logger) *Service {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Service{
		client: client.WithNamespace(rest.NamespaceV2),
		logger: logger.Named("activity"),
	}
}

// GetActivityForSite returns one page of a site's activity. Transport and
// decoding errors are returned unchanged and no partial page is returned.
func (s *Service) GetActivityForSite(ctx context.Context, siteID int64, req PaginationRequest) (*PaginationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pagination request: %w", err)
	}

	query := BuildQuery(req)
	resp, err := s.client.Get(ctx, fmt.Sprintf("sites/%d/activity", siteID), query)
	if err != nil {
		return nil, err
	}

	page, err := decodePage(resp.Value, req.Count)
	if err != nil {
		s.logger.Warn("error decoding activity page",
			"site_id", siteID,
			"error", err,
		)
		return nil, err
	}

	s.logger.Debug("fetched activity",
		"site_id", siteID,
		"query", query.Encode(),
		"count", len(page.Activities),
		"has_more", page.HasMore,
	)
	return page, nil
}

// GetActivityGroupsForSite returns the activity categories of a site with
// their counts, sorted by key.
func (s *Service) GetActivityGroupsForSite(ctx context.Context, siteID int64) ([]Group, error) {
	resp, err := s.client.Get(ctx, fmt.Sprintf("sites/%d/activity/count/group", siteID), nil)
	if err != nil {
		return nil, err
	}

	groups, err := decodeGroups(resp.Value)
	if err != nil {
		s.logger.Warn("error decoding activity groups",
			"site_id", siteID,
			"error", err,
		)
		return nil, err
	}
	return groups, nil
}
