// Package main provides bookctl, the operator tool for a BuyMeABook data
// directory.
//
// Usage:
//
//	bookctl seed --file catalog.yaml
//	bookctl seed --fake 25
//	bookctl mint-identity --subject sub-123 --email ada@example.com
//	bookctl reindex
//
// seed and reindex open the store directly, so the server must be stopped.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/buymeabook/buymeabook-server/internal/config"
	"github.com/buymeabook/buymeabook-server/internal/logger"
)

var (
	dataPath string
	envFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:           "bookctl",
	Short:         "Operate a BuyMeABook data directory",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataPath, "data-path", "", "Base path for the store and search index")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to .env file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(seedCmd, mintIdentityCmd, reindexCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves the server configuration with the root flags applied.
func loadConfig() (*config.Config, *logger.Logger, error) {
	args := []string{"--env-file", envFile}
	if dataPath != "" {
		args = append(args, "--data-path", dataPath)
	}
	if logLevel != "" {
		args = append(args, "--log-level", logLevel)
	}
	cfg, err := config.LoadConfig(args)
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(logger.Config{
		Writer:      os.Stderr,
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})
	return cfg, log, nil
}
