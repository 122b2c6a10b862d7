package auth

import (
	"encoding/json"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/buymeabook/buymeabook-server/internal/domain"
	"github.com/buymeabook/buymeabook-server/internal/id"
)

const (
	tokenIssuer   = "buymeabook-server"
	tokenAudience = "buymeabook-client"

	tokenIDPrefix = "tok"
)

// TokenService issues and verifies PASETO v4.local session tokens.
type TokenService struct {
	key      paseto.V4SymmetricKey
	duration time.Duration
	now      func() time.Time
}

// NewTokenService builds a service from a 32-byte key.
func NewTokenService(key []byte, duration time.Duration) (*TokenService, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d bytes, got %d", keyLength, len(key))
	}
	k, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("create PASETO symmetric key: %w", err)
	}
	return &TokenService{key: k, duration: duration, now: time.Now}, nil
}

// GenerateAccessToken encrypts a session for the profile's identity and
// handle, returning the token and its expiry.
func (s *TokenService) GenerateAccessToken(p *domain.Profile) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.duration)

	jti, err := id.Generate(tokenIDPrefix)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate token ID: %w", err)
	}

	t := paseto.NewToken()
	t.SetIssuer(tokenIssuer)
	t.SetAudience(tokenAudience)
	t.SetSubject(p.UID)
	t.SetIssuedAt(now)
	t.SetNotBefore(now)
	t.SetExpiration(exp)
	t.SetJti(jti)
	//nolint:errcheck // Set only fails on unmarshalable values
	_ = t.Set("handle", p.Username)

	return t.V4Encrypt(s.key, nil), exp, nil
}

// VerifyAccessToken decrypts and validates a session token.
func (s *TokenService) VerifyAccessToken(token string) (*AccessClaims, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(s.now()))

	t, err := parser.ParseV4Local(s.key, token, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	var claims AccessClaims
	if err := json.Unmarshal(t.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}
	if claims.Handle == "" || claims.Subject == "" {
		return nil, fmt.Errorf("invalid token: missing session claims")
	}
	return &claims, nil
}

// Duration is the configured session lifetime.
func (s *TokenService) Duration() time.Duration {
	return s.duration
}
