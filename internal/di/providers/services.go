package providers

import (
	"github.com/samber/do/v2"

	"github.com/buymeabook/buymeabook-server/internal/auth"
	"github.com/buymeabook/buymeabook-server/internal/config"
	"github.com/buymeabook/buymeabook-server/internal/covers"
	"github.com/buymeabook/buymeabook-server/internal/identity"
	"github.com/buymeabook/buymeabook-server/internal/logger"
	"github.com/buymeabook/buymeabook-server/internal/search"
	"github.com/buymeabook/buymeabook-server/internal/service"
)

// ProvideAccountService provides the sign-in service.
func ProvideAccountService(i do.Injector) (*service.AccountService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	verifier := do.MustInvoke[*identity.Verifier](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAccountService(storeHandle.Store, verifier, tokens, log.Logger), nil
}

// ProvideProfileService provides the profile service.
func ProvideProfileService(i do.Injector) (*service.ProfileService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	index := do.MustInvoke[*search.ProfileIndex](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProfileService(storeHandle.Store, index, log.Logger), nil
}

// ProvideCampaignService provides the campaign service.
func ProvideCampaignService(i do.Injector) (*service.CampaignService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	enricher := do.MustInvoke[*covers.Enricher](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCampaignService(storeHandle.Store, enricher, service.CampaignConfig{
		MaxPerOwner:  cfg.Campaigns.MaxPerOwner,
		EnforceQuota: cfg.Campaigns.EnforceQuota,
	}, log.Logger), nil
}

// ProvideBookService provides the catalog service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(storeHandle.Store, service.BookConfig{
		PageSize:    cfg.Books.PageSize,
		SearchLimit: cfg.Books.SearchLimit,
	}, log.Logger), nil
}

// ProvideFeedbackService provides the feedback service.
func ProvideFeedbackService(i do.Injector) (*service.FeedbackService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFeedbackService(storeHandle.Store, log.Logger), nil
}
