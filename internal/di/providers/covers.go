package providers

import (
	"github.com/samber/do/v2"

	"github.com/buymeabook/buymeabook-server/internal/config"
	"github.com/buymeabook/buymeabook-server/internal/covers"
	"github.com/buymeabook/buymeabook-server/internal/logger"
)

// ProvideCoverClient provides the rate limited cover lookup client.
func ProvideCoverClient(i do.Injector) (*covers.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return covers.NewClient(covers.ClientConfig{
		BaseURL:       cfg.Covers.BaseURL,
		Timeout:       cfg.Covers.Timeout,
		RatePerSecond: cfg.Covers.RatePerSecond,
		Burst:         cfg.Covers.Burst,
		Logger:        log.Component("covers").Logger,
	}), nil
}

// ProvideCoverEnricher provides the campaign cover enricher.
func ProvideCoverEnricher(i do.Injector) (*covers.Enricher, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	client := do.MustInvoke[*covers.Client](i)

	return covers.NewEnricher(client, covers.EnricherConfig{
		FallbackURL:   cfg.Covers.FallbackURL,
		Timeout:       cfg.Covers.Timeout,
		MaxConcurrent: cfg.Covers.MaxConcurrent,
		Logger:        log.Component("covers").Logger,
	}), nil
}
