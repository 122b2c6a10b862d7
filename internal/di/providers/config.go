// Package providers contains the dependency injection providers of the
// crowdfunding server.
package providers

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/buymeabook/buymeabook-server/internal/config"
	"github.com/buymeabook/buymeabook-server/internal/logger"
)

// ProvideConfig loads configuration from the process flags and environment.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig(os.Args[1:])
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting BuyMeABook server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Data.BasePath,
	)

	return log, nil
}
