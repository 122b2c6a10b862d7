package store

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/buymeabook/buymeabook-server/internal/domain"
)

const (
	profilePrefix = "profile:"

	// IndexIdentity links an identity subject to its handle.
	IndexIdentity = "identity"
)

// ErrHandleTaken and ErrIdentityLinked split profile creation conflicts.
var (
	ErrHandleTaken    = ErrAlreadyExists.WithMessage("handle already taken")
	ErrIdentityLinked = ErrAlreadyExists.WithMessage("identity already has a profile")
)

func (s *Store) initProfiles() {
	s.Profiles = NewEntity[domain.Profile](s, profilePrefix).
		WithUniqueIndex(IndexIdentity, func(p *domain.Profile) []string {
			return []string{p.UID}
		})
}

// CreateProfile writes the profile and its identity link in one transaction.
// A taken handle yields ErrHandleTaken; an identity that already owns a
// profile yields ErrIdentityLinked.
func (s *Store) CreateProfile(ctx context.Context, p *domain.Profile) error {
	err := s.Profiles.Create(ctx, p.Username, p)
	var conflict *IndexConflictError
	switch {
	case err == nil:
	case errors.As(err, &conflict) && conflict.Index == IndexIdentity:
		return fmt.Errorf("create profile %s: %w", p.Username, ErrIdentityLinked)
	case errors.Is(err, ErrAlreadyExists):
		return fmt.Errorf("create profile %s: %w", p.Username, ErrHandleTaken)
	default:
		return fmt.Errorf("create profile %s: %w", p.Username, err)
	}

	s.indexProfile(ctx, p)
	return nil
}

// GetProfile returns the profile with handle.
func (s *Store) GetProfile(ctx context.Context, handle string) (*domain.Profile, error) {
	return s.Profiles.Get(ctx, handle)
}

// GetProfileByIdentity follows the identity link to its profile.
func (s *Store) GetProfileByIdentity(ctx context.Context, subject string) (*domain.Profile, error) {
	return s.Profiles.GetByIndex(ctx, IndexIdentity, subject)
}

// HandleExists reports whether handle is allocated.
func (s *Store) HandleExists(ctx context.Context, handle string) (bool, error) {
	return s.Profiles.Exists(ctx, handle)
}

// UpdateProfile replaces a stored profile. The handle and identity never change.
func (s *Store) UpdateProfile(ctx context.Context, p *domain.Profile) error {
	if err := s.Profiles.Update(ctx, p.Username, p); err != nil {
		return fmt.Errorf("update profile %s: %w", p.Username, err)
	}
	s.indexProfile(ctx, p)
	return nil
}

// ListProfiles iterates all profiles in handle order.
func (s *Store) ListProfiles(ctx context.Context) iter.Seq2[*domain.Profile, error] {
	return s.Profiles.List(ctx)
}

// ReindexProfiles pushes every stored profile through the search indexer.
func (s *Store) ReindexProfiles(ctx context.Context) (int, error) {
	n := 0
	for p, err := range s.ListProfiles(ctx) {
		if err != nil {
			return n, err
		}
		if err := s.searchIndexer.IndexProfile(ctx, p); err != nil {
			return n, fmt.Errorf("index profile %s: %w", p.Username, err)
		}
		n++
	}
	return n, nil
}

// indexProfile keeps search in step with the store; a failure leaves the
// store write in place and is only logged.
func (s *Store) indexProfile(ctx context.Context, p *domain.Profile) {
	if err := s.searchIndexer.IndexProfile(ctx, p); err != nil {
		s.logWarn(ctx, "failed to index profile", "handle", p.Username, "error", err)
	}
}
