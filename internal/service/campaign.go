package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/buymeabook/buymeabook-server/internal/domain"
	domainerrors "github.com/buymeabook/buymeabook-server/internal/errors"
	"github.com/buymeabook/buymeabook-server/internal/store"
)

const (
	// DefaultPublicLimit is the public listing size when none is given.
	DefaultPublicLimit = 50
	// MaxPublicLimit caps one public listing.
	MaxPublicLimit = 100
)

// CoverEnricher fills in campaign book covers. It never fails.
type CoverEnricher interface {
	Enrich(ctx context.Context, campaigns []*domain.Campaign)
}

// CampaignConfig tunes the per-owner quota.
type CampaignConfig struct {
	MaxPerOwner  int
	EnforceQuota bool
}

// CampaignService creates, lists and deletes campaigns.
type CampaignService struct {
	store  *store.Store
	covers CoverEnricher
	cfg    CampaignConfig
	now    Clock
	logger *slog.Logger
}

// NewCampaignService creates a new campaign service. covers may be nil.
func NewCampaignService(store *store.Store, covers CoverEnricher, cfg CampaignConfig, logger *slog.Logger) *CampaignService {
	if cfg.MaxPerOwner <= 0 {
		cfg.MaxPerOwner = domain.MaxCampaignsPerOwner
	}
	return &CampaignService{
		store:  store,
		covers: covers,
		cfg:    cfg,
		now:    utcNow,
		logger: logger,
	}
}

// CreateCampaignRequest is the body of a create call. Username is optional
// and, when set, must name the caller.
type CreateCampaignRequest struct {
	Book        *domain.BookSnapshot `json:"book"`
	Title       string               `json:"title"`
	Description string               `json:"description,omitempty"`
	Address     string               `json:"address"`
	Mobile      *string              `json:"mobile,omitempty"`
	Username    string               `json:"username,omitempty"`
}

// CampaignList is an owner's listing.
type CampaignList struct {
	Campaigns []*domain.Campaign `json:"campaigns"`
	CanCreate bool               `json:"canCreate"`
}

// Create opens a campaign owned by actor.
func (s *CampaignService) Create(ctx context.Context, actor string, req CreateCampaignRequest) (*domain.Campaign, error) {
	if actor == "" {
		return nil, domainerrors.Unauthorized("authentication required")
	}
	if req.Book == nil || strings.TrimSpace(req.Book.ID) == "" ||
		strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Address) == "" {
		return nil, domainerrors.Validation("Missing required fields")
	}
	if req.Username != "" && req.Username != actor {
		return nil, domainerrors.Forbidden("cannot create a campaign for another user")
	}

	count, err := s.store.CountCampaignsByOwner(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("count campaigns: %w", err)
	}
	if count >= s.cfg.MaxPerOwner {
		if s.cfg.EnforceQuota {
			return nil, domainerrors.Conflict(fmt.Sprintf("a user may hold at most %d campaigns", s.cfg.MaxPerOwner))
		}
		s.logger.Warn("campaign quota exceeded", "handle", actor, "count", count)
	}

	book, err := s.snapshot(ctx, *req.Book)
	if err != nil {
		return nil, err
	}

	c := domain.NewCampaign(actor, book,
		strings.TrimSpace(req.Title), strings.TrimSpace(req.Description), strings.TrimSpace(req.Address),
		req.Mobile, s.now())
	if err := validate.Validate(c); err != nil {
		return nil, err
	}
	if err := s.store.CreateCampaign(ctx, c); err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}

	s.logger.Info("campaign created", "id", c.ID, "handle", actor, "book_id", book.ID)
	return c, nil
}

// snapshot prefers the catalog copy of a book so the target amount comes
// from the catalog price. Books outside the catalog are taken as sent.
func (s *CampaignService) snapshot(ctx context.Context, sent domain.BookSnapshot) (domain.BookSnapshot, error) {
	b, err := s.store.GetBook(ctx, sent.ID)
	switch {
	case err == nil:
		return b.Snapshot(), nil
	case errors.Is(err, store.ErrNotFound):
		if strings.TrimSpace(sent.Title) == "" {
			return sent, domainerrors.Validation("Missing required fields")
		}
		return sent, nil
	default:
		return sent, fmt.Errorf("get book %s: %w", sent.ID, err)
	}
}

// List returns owner's campaigns newest first, with covers resolved.
func (s *CampaignService) List(ctx context.Context, owner string) (*CampaignList, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return nil, domainerrors.Validation("Username required")
	}

	campaigns, err := s.store.ListCampaignsByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list campaigns for %s: %w", owner, err)
	}
	s.enrich(ctx, campaigns)

	return &CampaignList{
		Campaigns: campaigns,
		CanCreate: len(campaigns) < s.cfg.MaxPerOwner,
	}, nil
}

// Get returns one campaign with its cover resolved.
func (s *CampaignService) Get(ctx context.Context, campaignID string) (*domain.Campaign, error) {
	c, err := s.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, notFound(err, "Campaign not found", "get campaign")
	}
	s.enrich(ctx, []*domain.Campaign{c})
	return c, nil
}

// Delete removes campaignID. Only its owner may delete it.
func (s *CampaignService) Delete(ctx context.Context, actor, campaignID string) error {
	if actor == "" {
		return domainerrors.Unauthorized("authentication required")
	}

	c, err := s.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return notFound(err, "Campaign not found", "get campaign")
	}
	if !c.IsOwnedBy(actor) {
		return domainerrors.Forbidden("cannot delete another user's campaign")
	}

	// A concurrent delete may have won since the read.
	if err := s.store.DeleteCampaign(ctx, campaignID); err != nil {
		return notFound(err, "Campaign not found", "delete campaign")
	}

	s.logger.Info("campaign deleted", "id", campaignID, "handle", actor)
	return nil
}

// CampaignPage is one window of the public listing.
type CampaignPage struct {
	Campaigns  []*domain.Campaign `json:"campaigns"`
	NextCursor string             `json:"nextCursor,omitempty"`
	HasMore    bool               `json:"hasMore"`
}

// ListPublic returns one page of campaigns across all owners, newest
// first. Following NextCursor until HasMore is false visits every
// campaign once.
func (s *CampaignService) ListPublic(ctx context.Context, cursor string, limit int) (*CampaignPage, error) {
	if limit <= 0 {
		limit = DefaultPublicLimit
	}
	limit = min(limit, MaxPublicLimit)

	page, err := s.store.ListPublicCampaigns(ctx, cursor, limit)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCursor) {
			return nil, domainerrors.Validation("invalid cursor")
		}
		return nil, fmt.Errorf("list public campaigns: %w", err)
	}
	s.enrich(ctx, page.Items)
	return &CampaignPage{
		Campaigns:  page.Items,
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}, nil
}

func (s *CampaignService) enrich(ctx context.Context, campaigns []*domain.Campaign) {
	if s.covers == nil || len(campaigns) == 0 {
		return
	}
	s.covers.Enrich(ctx, campaigns)
}
