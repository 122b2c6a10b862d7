package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buymeabook/buymeabook-server/internal/domain"
)

const (
	testSecret   = "identity-test-secret"
	testIssuer   = "https://identity.test"
	testAudience = "buymeabook"
)

var ada = domain.Identity{
	Subject:     "sub-ada",
	Email:       "ada@example.com",
	DisplayName: "Ada Lovelace",
	PhotoURL:    "https://img.example.com/ada.png",
}

func newVerifier(t *testing.T) *Verifier {
	t.Helper()
	v, err := NewVerifier(testSecret, testIssuer, testAudience)
	require.NoError(t, err)
	return v
}

func TestVerify_RoundTrip(t *testing.T) {
	tok, err := NewIssuer(testSecret, testIssuer, testAudience).Mint(ada, time.Hour)
	require.NoError(t, err)

	got, err := newVerifier(t).Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, ada, got)
}

func TestVerify_Rejects(t *testing.T) {
	expired := NewIssuer(testSecret, testIssuer, testAudience)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	tests := []struct {
		name    string
		issuer  *Issuer
		wantErr error
	}{
		{"wrong secret", NewIssuer("other-secret", testIssuer, testAudience), ErrTokenInvalid},
		{"wrong issuer", NewIssuer(testSecret, "https://evil.test", testAudience), ErrTokenInvalid},
		{"wrong audience", NewIssuer(testSecret, testIssuer, "someone-else"), ErrTokenInvalid},
		{"expired", expired, ErrTokenExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := tt.issuer.Mint(ada, time.Hour)
			require.NoError(t, err)

			_, err = newVerifier(t).Verify(context.Background(), tok)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.MapClaims{"sub": "sub-ada", "iss": testIssuer, "aud": testAudience, "exp": time.Now().Add(time.Hour).Unix()}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = newVerifier(t).Verify(context.Background(), tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_RequiresSubject(t *testing.T) {
	tok, err := NewIssuer(testSecret, testIssuer, testAudience).Mint(domain.Identity{Email: "x@example.com"}, time.Hour)
	require.NoError(t, err)

	_, err = newVerifier(t).Verify(context.Background(), tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_Garbage(t *testing.T) {
	_, err := newVerifier(t).Verify(context.Background(), "not.a.jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestNewVerifier_RequiresSecret(t *testing.T) {
	_, err := NewVerifier("", testIssuer, testAudience)
	assert.Error(t, err)
}
