package store

import (
	"context"
	"fmt"

	"github.com/buymeabook/buymeabook-server/internal/domain"
	"github.com/buymeabook/buymeabook-server/internal/id"
)

const (
	campaignPrefix = "campaign:"

	indexCampaignOwner   = "owner"
	indexCampaignCreated = "created"
)

func (s *Store) initCampaigns() {
	s.Campaigns = NewEntity[domain.Campaign](s, campaignPrefix).
		WithOrderedIndex(indexCampaignOwner, func(c *domain.Campaign) []string {
			return []string{joinKey(c.Username, timeKey(c.CreatedAt), c.ID)}
		}).
		WithOrderedIndex(indexCampaignCreated, func(c *domain.Campaign) []string {
			return []string{joinKey(timeKey(c.CreatedAt), c.ID)}
		})
}

// CreateCampaign assigns an id when c has none and stores it.
func (s *Store) CreateCampaign(ctx context.Context, c *domain.Campaign) error {
	if c.ID == "" {
		v, err := id.Generate(id.PrefixCampaign)
		if err != nil {
			return err
		}
		c.ID = v
	}
	if err := s.Campaigns.Create(ctx, c.ID, c); err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}
	return nil
}

// GetCampaign returns the campaign with id.
func (s *Store) GetCampaign(ctx context.Context, campaignID string) (*domain.Campaign, error) {
	return s.Campaigns.Get(ctx, campaignID)
}

// DeleteCampaign hard-deletes the campaign, ErrNotFound if it is gone.
func (s *Store) DeleteCampaign(ctx context.Context, campaignID string) error {
	return s.Campaigns.Delete(ctx, campaignID)
}

// ListCampaignsByOwner returns owner's campaigns, newest first.
func (s *Store) ListCampaignsByOwner(ctx context.Context, owner string) ([]*domain.Campaign, error) {
	return collect(s.Campaigns.Scan(ctx, indexCampaignOwner, Range{
		Prefix:  owner + keySep,
		Reverse: true,
	}))
}

// ListPublicCampaigns returns one page of campaigns across all owners,
// newest first, resuming after cursor.
func (s *Store) ListPublicCampaigns(ctx context.Context, cursor string, limit int) (*Page[*domain.Campaign], error) {
	after, err := DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}
	limit = clampLimit(limit, 50, 100)

	hits, err := collectHits(s.Campaigns.Scan(ctx, indexCampaignCreated, Range{
		After:   after,
		Reverse: true,
		Limit:   limit + 1,
	}))
	if err != nil {
		return nil, fmt.Errorf("list public campaigns: %w", err)
	}

	page := &Page[*domain.Campaign]{Items: make([]*domain.Campaign, 0, limit)}
	if len(hits) > limit {
		hits = hits[:limit]
		page.HasMore = true
	}
	for _, h := range hits {
		page.Items = append(page.Items, h.Value)
	}
	if page.HasMore {
		page.NextCursor = EncodeCursor(hits[len(hits)-1].Key)
	}
	return page, nil
}

// CountCampaignsByOwner returns how many campaigns owner holds.
func (s *Store) CountCampaignsByOwner(ctx context.Context, owner string) (int, error) {
	return s.Campaigns.Count(ctx, indexCampaignOwner, owner+keySep)
}
