// Package api serves the crowdfunding HTTP API: huma operations mounted on
// a chi router under /api/v1.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/buymeabook/buymeabook-server/internal/auth"
	"github.com/buymeabook/buymeabook-server/internal/ratelimit"
	"github.com/buymeabook/buymeabook-server/internal/search"
	"github.com/buymeabook/buymeabook-server/internal/store"
)

// Config tunes transport concerns of the server.
type Config struct {
	Version         string
	CORSOrigins     []string
	SignInPerMinute int
	SignInBurst     int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store         *store.Store
	index         *search.ProfileIndex
	services      *Services
	tokens        *auth.TokenService
	router        chi.Router
	api           huma.API
	signInLimiter *ratelimit.KeyedRateLimiter
	logger        *slog.Logger
}

// NewServer creates the router, installs middleware and registers every
// operation.
func NewServer(
	st *store.Store,
	index *search.ProfileIndex,
	services *Services,
	tokens *auth.TokenService,
	cfg Config,
	logger *slog.Logger,
) *Server {
	if cfg.Version == "" {
		cfg.Version = "1.0.0"
	}
	if cfg.SignInPerMinute <= 0 {
		cfg.SignInPerMinute = 10
	}
	if cfg.SignInBurst <= 0 {
		cfg.SignInBurst = 5
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	router.Use(authMiddleware(tokens))

	humaConfig := huma.DefaultConfig("BuyMeABook API", cfg.Version)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	RegisterErrorHandler(logger)

	s := &Server{
		store:         st,
		index:         index,
		services:      services,
		tokens:        tokens,
		router:        router,
		api:           humachi.New(router, humaConfig),
		signInLimiter: ratelimit.PerMinute(cfg.SignInPerMinute, cfg.SignInBurst),
		logger:        logger,
	}

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerCampaignRoutes()
	s.registerProfileRoutes()
	s.registerBookRoutes()
	s.registerFeedbackRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	s.signInLimiter.Stop()
}
