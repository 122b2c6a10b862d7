package service

import (
	"context"
	"crypto/rand"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/buymeabook/buymeabook-server/internal/auth"
	"github.com/buymeabook/buymeabook-server/internal/domain"
	domainerrors "github.com/buymeabook/buymeabook-server/internal/errors"
	"github.com/buymeabook/buymeabook-server/internal/identity"
	"github.com/buymeabook/buymeabook-server/internal/search"
	"github.com/buymeabook/buymeabook-server/internal/store"
)

const (
	testSecret   = "test-identity-secret"
	testIssuer   = "https://identity.test"
	testAudience = "buymeabook-test"
)

type testEnv struct {
	store     *store.Store
	index     *search.ProfileIndex
	tokens    *auth.TokenService
	issuer    *identity.Issuer
	accounts  *AccountService
	profiles  *ProfileService
	campaigns *CampaignService
	books     *BookService
	feedback  *FeedbackService
}

// stubCovers gives every campaign the same cover.
type stubCovers struct{ url string }

func (s stubCovers) Enrich(_ context.Context, cs []*domain.Campaign) {
	for _, c := range cs {
		c.Book.Cover = s.url
	}
}

func setupServices(t *testing.T, cfg CampaignConfig) *testEnv {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "service-test-*")
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)
	st, err := store.New(filepath.Join(tmpDir, "test.db"), nil)
	require.NoError(t, err)

	idx, err := search.NewProfileIndex(search.Options{Logger: logger})
	require.NoError(t, err)
	st.SetSearchIndexer(idx)

	t.Cleanup(func() {
		_ = idx.Close()
		_ = st.Close()
		_ = os.RemoveAll(tmpDir)
	})

	key := make([]byte, 32)
	_, _ = rand.Read(key)
	tokens, err := auth.NewTokenService(key, time.Hour)
	require.NoError(t, err)

	verifier, err := identity.NewVerifier(testSecret, testIssuer, testAudience)
	require.NoError(t, err)

	return &testEnv{
		store:     st,
		index:     idx,
		tokens:    tokens,
		issuer:    identity.NewIssuer(testSecret, testIssuer, testAudience),
		accounts:  NewAccountService(st, verifier, tokens, logger),
		profiles:  NewProfileService(st, idx, logger),
		campaigns: NewCampaignService(st, stubCovers{url: "https://covers.test/c.jpg"}, cfg, logger),
		books:     NewBookService(st, BookConfig{}, logger),
		feedback:  NewFeedbackService(st, logger),
	}
}

// signIn mints an ID token for the subject and signs in with it.
func (e *testEnv) signIn(t *testing.T, subject, name string) *SignInResult {
	t.Helper()
	raw, err := e.issuer.Mint(domain.Identity{
		Subject:     subject,
		Email:       subject + "@example.com",
		DisplayName: name,
	}, time.Hour)
	require.NoError(t, err)

	res, err := e.accounts.SignIn(context.Background(), SignInRequest{IDToken: raw})
	require.NoError(t, err)
	return res
}

func requireCode(t *testing.T, err error, code domainerrors.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, domainerrors.CodeOf(err), "error: %v", err)
}
