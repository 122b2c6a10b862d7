package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buymeabook/buymeabook-server/internal/domain"
	domainerrors "github.com/buymeabook/buymeabook-server/internal/errors"
	"github.com/buymeabook/buymeabook-server/internal/identity"
)

func TestSignIn_CreatesProfileOnce(t *testing.T) {
	env := setupServices(t, CampaignConfig{})

	first := env.signIn(t, "sub-ada", "Ada Lovelace")
	assert.True(t, first.Created)
	assert.Equal(t, "adalovelace", first.User.Username)
	assert.Equal(t, domain.DefaultDescription, first.User.Description)
	assert.NotEmpty(t, first.Token)
	assert.True(t, first.ExpiresAt.After(time.Now()))

	second := env.signIn(t, "sub-ada", "Ada Lovelace")
	assert.False(t, second.Created)
	assert.Equal(t, first.User.Username, second.User.Username)

	claims, err := env.tokens.VerifyAccessToken(second.Token)
	require.NoError(t, err)
	assert.Equal(t, "adalovelace", claims.Handle)
	assert.Equal(t, "sub-ada", claims.Subject)
}

func TestSignIn_TakenHandleGetsSuffix(t *testing.T) {
	env := setupServices(t, CampaignConfig{})

	env.signIn(t, "sub-1", "Ada Lovelace")
	other := env.signIn(t, "sub-2", "Ada Lovelace")

	assert.True(t, other.Created)
	assert.Regexp(t, `^adalovelace\d{4}$`, other.User.Username)
}

func TestSignIn_RejectsBadTokens(t *testing.T) {
	env := setupServices(t, CampaignConfig{})
	ctx := context.Background()

	_, err := env.accounts.SignIn(ctx, SignInRequest{})
	requireCode(t, err, domainerrors.CodeValidation)

	_, err = env.accounts.SignIn(ctx, SignInRequest{IDToken: "garbage"})
	requireCode(t, err, domainerrors.CodeUnauthorized)

	wrong := identity.NewIssuer("other-secret", testIssuer, testAudience)
	raw, err := wrong.Mint(domain.Identity{Subject: "x", DisplayName: "X"}, time.Hour)
	require.NoError(t, err)
	_, err = env.accounts.SignIn(ctx, SignInRequest{IDToken: raw})
	requireCode(t, err, domainerrors.CodeUnauthorized)
}

func TestMe(t *testing.T) {
	env := setupServices(t, CampaignConfig{})
	env.signIn(t, "sub-ada", "Ada Lovelace")

	p, err := env.accounts.Me(context.Background(), "adalovelace")
	require.NoError(t, err)
	assert.Equal(t, "sub-ada", p.UID)

	_, err = env.accounts.Me(context.Background(), "")
	requireCode(t, err, domainerrors.CodeUnauthorized)

	_, err = env.accounts.Me(context.Background(), "ghost")
	requireCode(t, err, domainerrors.CodeNotFound)
}
