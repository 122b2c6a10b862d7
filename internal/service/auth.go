package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/buymeabook/buymeabook-server/internal/auth"
	"github.com/buymeabook/buymeabook-server/internal/domain"
	domainerrors "github.com/buymeabook/buymeabook-server/internal/errors"
	"github.com/buymeabook/buymeabook-server/internal/handle"
	"github.com/buymeabook/buymeabook-server/internal/identity"
	"github.com/buymeabook/buymeabook-server/internal/store"
)

// IdentityVerifier checks an identity provider ID token.
type IdentityVerifier interface {
	Verify(ctx context.Context, raw string) (domain.Identity, error)
}

// AccountService signs users in and resolves the acting profile.
type AccountService struct {
	store     *store.Store
	verifier  IdentityVerifier
	allocator *handle.Allocator
	tokens    *auth.TokenService
	logger    *slog.Logger
}

// NewAccountService creates an account service. opts configure the handle
// allocator.
func NewAccountService(
	store *store.Store,
	verifier IdentityVerifier,
	tokens *auth.TokenService,
	logger *slog.Logger,
	opts ...handle.Option,
) *AccountService {
	return &AccountService{
		store:     store,
		verifier:  verifier,
		allocator: handle.NewAllocator(store, opts...),
		tokens:    tokens,
		logger:    logger,
	}
}

// SignInRequest carries the identity provider token.
type SignInRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// SignInResult is the session issued after sign-in.
type SignInResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	User      *domain.Profile `json:"user"`
	Created   bool            `json:"created"`
}

// SignIn verifies req.IDToken, creates the profile on first sign-in and
// issues a session token.
func (s *AccountService) SignIn(ctx context.Context, req SignInRequest) (*SignInResult, error) {
	if err := validate.Validate(&req); err != nil {
		return nil, err
	}

	id, err := s.verifier.Verify(ctx, req.IDToken)
	if err != nil {
		if errors.Is(err, identity.ErrTokenExpired) {
			return nil, domainerrors.Unauthorized("identity token expired").WithCause(err)
		}
		return nil, domainerrors.Unauthorized("invalid identity token").WithCause(err)
	}

	profile, created, err := s.resolveProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(profile)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	if created {
		s.logger.Info("profile created", "handle", profile.Username, "subject", id.Subject)
	} else {
		s.logger.Debug("signed in", "handle", profile.Username)
	}

	return &SignInResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      profile,
		Created:   created,
	}, nil
}

func (s *AccountService) resolveProfile(ctx context.Context, id domain.Identity) (*domain.Profile, bool, error) {
	profile, err := s.store.GetProfileByIdentity(ctx, id.Subject)
	if err == nil {
		return profile, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, fmt.Errorf("resolve identity: %w", err)
	}

	profile, created, err := s.allocator.Allocate(ctx, id)
	if err != nil {
		if errors.Is(err, handle.ErrExhausted) {
			return nil, false, domainerrors.Conflict("could not allocate a handle, try again").WithCause(err)
		}
		return nil, false, fmt.Errorf("allocate handle: %w", err)
	}
	return profile, created, nil
}

// Me returns the profile of the acting handle.
func (s *AccountService) Me(ctx context.Context, actor string) (*domain.Profile, error) {
	if actor == "" {
		return nil, domainerrors.Unauthorized("authentication required")
	}
	p, err := s.store.GetProfile(ctx, actor)
	if err != nil {
		return nil, notFound(err, "User not found", "get profile")
	}
	return p, nil
}
