// Package di wires the BuyMeABook server together.
package di

import (
	"github.com/samber/do/v2"

	"github.com/buymeabook/buymeabook-server/internal/auth"
	"github.com/buymeabook/buymeabook-server/internal/config"
	"github.com/buymeabook/buymeabook-server/internal/covers"
	"github.com/buymeabook/buymeabook-server/internal/di/providers"
	"github.com/buymeabook/buymeabook-server/internal/identity"
	"github.com/buymeabook/buymeabook-server/internal/logger"
	"github.com/buymeabook/buymeabook-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Storage
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideProfileIndex)

	// Auth
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideIdentityVerifier)

	// Covers
	do.Provide(injector, providers.ProvideCoverClient)
	do.Provide(injector, providers.ProvideCoverEnricher)

	// Business services
	do.Provide(injector, providers.ProvideAccountService)
	do.Provide(injector, providers.ProvideProfileService)
	do.Provide(injector, providers.ProvideCampaignService)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideFeedbackService)

	// Server
	do.Provide(injector, providers.ProvideAPIServer)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap resolves the services eagerly so configuration errors surface
// before the listener starts, then refills the search index if needed.
func Bootstrap(injector *do.RootScope) error {
	for _, invoke := range []func(do.Injector) error{
		invokeAs[*config.Config],
		invokeAs[*logger.Logger],
		invokeAs[providers.AuthKey],
		invokeAs[*providers.StoreHandle],
		invokeAs[*providers.SearchIndexHandle],
		invokeAs[*auth.TokenService],
		invokeAs[*identity.Verifier],
		invokeAs[*covers.Enricher],
		invokeAs[*service.AccountService],
		invokeAs[*service.ProfileService],
		invokeAs[*service.CampaignService],
		invokeAs[*service.BookService],
		invokeAs[*service.FeedbackService],
		invokeAs[*providers.APIServerHandle],
	} {
		if err := invoke(injector); err != nil {
			return err
		}
	}

	if err := providers.ReindexProfilesIfNeeded(injector); err != nil {
		return err
	}

	// Listening starts last so requests never meet an empty index.
	_, err := do.Invoke[*providers.HTTPServerHandle](injector)
	return err
}

func invokeAs[T any](i do.Injector) error {
	_, err := do.Invoke[T](i)
	return err
}
