// Package config loads the server configuration from flags, the environment
// and an optional .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is the full server configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Data      DataConfig
	Server    ServerConfig
	Auth      AuthConfig
	Identity  IdentityConfig
	Covers    CoversConfig
	Campaigns CampaignsConfig
	Books     BooksConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Environment string `env:"ENV" env-default:"development"`
}

type LoggerConfig struct {
	Level string `env:"LOG_LEVEL" env-default:"info"`
}

// DataConfig locates the badger store and the bleve index.
type DataConfig struct {
	BasePath string `env:"DATA_PATH"`
}

// StorePath is the badger directory.
func (d DataConfig) StorePath() string { return filepath.Join(d.BasePath, "db") }

// SearchPath is the bleve index directory.
func (d DataConfig) SearchPath() string { return filepath.Join(d.BasePath, "search") }

type ServerConfig struct {
	Port         string        `env:"SERVER_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" env-default:"15s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
	CORSOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
}

type AuthConfig struct {
	// KeyPath holds the hex PASETO key; defaults to {data}/auth.key.
	KeyPath             string        `env:"AUTH_KEY_PATH"`
	AccessTokenDuration time.Duration `env:"ACCESS_TOKEN_DURATION" env-default:"24h"`
	// AccessTokenKey is filled by auth.LoadOrGenerateKey at startup.
	AccessTokenKey []byte
}

// IdentityConfig describes the external identity provider's ID tokens.
type IdentityConfig struct {
	Issuer   string `env:"IDENTITY_ISSUER" env-default:"https://identity.buymeabook.dev"`
	Audience string `env:"IDENTITY_AUDIENCE" env-default:"buymeabook"`
	Secret   string `env:"IDENTITY_SECRET"`
}

// DevIdentitySecret signs ID tokens when IDENTITY_SECRET is unset outside
// production, so bookctl and a local server agree without setup.
const DevIdentitySecret = "buymeabook-dev-identity-secret"

// IdentitySecret returns the configured secret, or DevIdentitySecret when
// none is set and the environment is not production.
func (c *Config) IdentitySecret() string {
	if c.Identity.Secret == "" && c.App.Environment != "production" {
		return DevIdentitySecret
	}
	return c.Identity.Secret
}

type CoversConfig struct {
	BaseURL       string        `env:"COVERS_BASE_URL" env-default:"https://covers.openlibrary.org"`
	FallbackURL   string        `env:"COVERS_FALLBACK_URL" env-default:"/book123.png"`
	Timeout       time.Duration `env:"COVERS_TIMEOUT" env-default:"3s"`
	MaxConcurrent int           `env:"COVERS_MAX_CONCURRENT" env-default:"4"`
	RatePerSecond float64       `env:"COVERS_RATE" env-default:"5"`
	Burst         int           `env:"COVERS_BURST" env-default:"5"`
}

type CampaignsConfig struct {
	MaxPerOwner  int  `env:"CAMPAIGNS_MAX_PER_OWNER" env-default:"3"`
	EnforceQuota bool `env:"CAMPAIGNS_ENFORCE_QUOTA" env-default:"false"`
}

type BooksConfig struct {
	PageSize    int `env:"BOOKS_PAGE_SIZE" env-default:"5"`
	SearchLimit int `env:"BOOKS_SEARCH_LIMIT" env-default:"50"`
}

// RateLimitConfig bounds sign-in attempts per client IP.
type RateLimitConfig struct {
	SignInPerMinute int `env:"SIGNIN_RATE_PER_MINUTE" env-default:"10"`
	SignInBurst     int `env:"SIGNIN_BURST" env-default:"5"`
}

// LoadConfig resolves configuration with precedence
// flags > environment > .env file > defaults.
func LoadConfig(args []string) (*Config, error) {
	fset := flag.NewFlagSet("buymeabook", flag.ContinueOnError)
	env := fset.String("env", "", "Environment (development, staging, production)")
	logLevel := fset.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fset.String("data-path", "", "Base path for the store and search index")
	port := fset.String("port", "", "Server port (default: 8080)")
	envFile := fset.String("env-file", ".env", "Path to .env file")
	if err := fset.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", *envFile, err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	override(&cfg.App.Environment, *env)
	override(&cfg.Logger.Level, *logLevel)
	override(&cfg.Data.BasePath, *dataPath)
	override(&cfg.Server.Port, *port)

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks the resolved configuration.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data path cannot be empty after expansion")
	}
	if c.App.Environment == "production" && c.Identity.Secret == "" {
		return errors.New("IDENTITY_SECRET is required in production")
	}
	if c.Campaigns.MaxPerOwner < 1 {
		return fmt.Errorf("CAMPAIGNS_MAX_PER_OWNER must be positive, got %d", c.Campaigns.MaxPerOwner)
	}
	if c.Books.PageSize < 1 || c.Books.SearchLimit < 1 {
		return errors.New("BOOKS_PAGE_SIZE and BOOKS_SEARCH_LIMIT must be positive")
	}
	if c.Covers.MaxConcurrent < 1 {
		return fmt.Errorf("COVERS_MAX_CONCURRENT must be positive, got %d", c.Covers.MaxConcurrent)
	}
	if c.Covers.Timeout <= 0 {
		return errors.New("COVERS_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) expandPaths() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolve home directory: %w", err)
	}
	if c.Data.BasePath, err = expandPath(c.Data.BasePath, filepath.Join(home, "BuyMeABook", "data")); err != nil {
		return fmt.Errorf("invalid data path: %w", err)
	}
	if c.Auth.KeyPath, err = expandPath(c.Auth.KeyPath, filepath.Join(c.Data.BasePath, "auth.key")); err != nil {
		return fmt.Errorf("invalid auth key path: %w", err)
	}
	return nil
}

// expandPath resolves ~ and relative paths; an empty path takes def.
func expandPath(path, def string) (string, error) {
	if path == "" {
		return def, nil
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[2:])
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

func override(dst *string, flagValue string) {
	if flagValue != "" {
		*dst = flagValue
	}
}
