package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/buymeabook/buymeabook-server/internal/domain"
	domainerrors "github.com/buymeabook/buymeabook-server/internal/errors"
	"github.com/buymeabook/buymeabook-server/internal/search"
	"github.com/buymeabook/buymeabook-server/internal/store"
)

// DefaultExploreLimit is the explore page size when none is given.
const DefaultExploreLimit = 20

var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote)[\s>/]`)

// ProfileService serves public profiles.
type ProfileService struct {
	store  *store.Store
	index  *search.ProfileIndex
	logger *slog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(store *store.Store, index *search.ProfileIndex, logger *slog.Logger) *ProfileService {
	return &ProfileService{store: store, index: index, logger: logger}
}

// Get returns the profile addressed by handle.
func (s *ProfileService) Get(ctx context.Context, handle string) (*domain.Profile, error) {
	p, err := s.store.GetProfile(ctx, handle)
	if err != nil {
		return nil, notFound(err, "User not found", "get profile")
	}
	return p, nil
}

// UpdateDescription replaces handle's description. Only the owner may do it.
func (s *ProfileService) UpdateDescription(ctx context.Context, actor, handle, description string) error {
	if strings.TrimSpace(description) == "" {
		return domainerrors.Validation("Description required")
	}

	p, err := s.store.GetProfile(ctx, handle)
	if err != nil {
		return notFound(err, "User not found", "get profile")
	}
	if !p.IsOwnedBy(actor) {
		return domainerrors.Forbidden("cannot edit another user's profile")
	}

	p.Description = normalizeDescription(description)
	if err := validate.Validate(p); err != nil {
		return err
	}
	if err := s.store.UpdateProfile(ctx, p); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	s.logger.Info("description updated", "handle", handle)
	return nil
}

// normalizeDescription converts HTML input to Markdown and leaves plain
// text alone.
func normalizeDescription(s string) string {
	s = strings.TrimSpace(s)
	if !htmlTagPattern.MatchString(strings.ToLower(s)) {
		return s
	}
	md, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(md)
}

// ExploreRequest selects a window of profiles.
type ExploreRequest struct {
	Search string
	Limit  int
	Offset int
}

// Explore lists profiles whose handle starts with req.Search, or everyone
// ordered by display name.
func (s *ProfileService) Explore(ctx context.Context, req ExploreRequest) ([]*domain.Profile, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultExploreLimit
	}

	res, err := s.index.Explore(ctx, search.ExploreRequest{
		Query:  strings.ToLower(strings.TrimSpace(req.Search)),
		Limit:  limit,
		Offset: max(req.Offset, 0),
	})
	if err != nil {
		return nil, fmt.Errorf("explore profiles: %w", err)
	}

	users := make([]*domain.Profile, 0, len(res.Handles))
	for _, h := range res.Handles {
		p, err := s.store.GetProfile(ctx, h)
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("search index references missing profile", "handle", h)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load profile %s: %w", h, err)
		}
		users = append(users, p)
	}
	return users, nil
}
