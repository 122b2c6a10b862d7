package providers

import (
	"github.com/samber/do/v2"

	"github.com/buymeabook/buymeabook-server/internal/auth"
	"github.com/buymeabook/buymeabook-server/internal/config"
	"github.com/buymeabook/buymeabook-server/internal/identity"
	"github.com/buymeabook/buymeabook-server/internal/logger"
)

// AuthKey wraps the session key bytes.
type AuthKey []byte

// ProvideAuthKey loads or generates the session key.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.LoadOrGenerateKey(cfg.Auth.KeyPath)
	if err != nil {
		return nil, err
	}
	cfg.Auth.AccessTokenKey = key

	log.Info("Session key loaded",
		"path", cfg.Auth.KeyPath,
		"access_token_duration", cfg.Auth.AccessTokenDuration,
	)
	return AuthKey(key), nil
}

// ProvideTokenService provides the PASETO session token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	key := do.MustInvoke[AuthKey](i)
	return auth.NewTokenService(key, cfg.Auth.AccessTokenDuration)
}

// ProvideIdentityVerifier provides the ID token verifier.
func ProvideIdentityVerifier(i do.Injector) (*identity.Verifier, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Identity.Secret == "" {
		log.Warn("IDENTITY_SECRET not set, accepting ID tokens signed with the development secret")
	}
	return identity.NewVerifier(cfg.IdentitySecret(), cfg.Identity.Issuer, cfg.Identity.Audience)
}
