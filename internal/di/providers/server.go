package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/buymeabook/buymeabook-server/internal/api"
	"github.com/buymeabook/buymeabook-server/internal/auth"
	"github.com/buymeabook/buymeabook-server/internal/config"
	"github.com/buymeabook/buymeabook-server/internal/logger"
	"github.com/buymeabook/buymeabook-server/internal/search"
	"github.com/buymeabook/buymeabook-server/internal/service"
)

// APIServerHandle wraps the router so its background limiter stops on
// shutdown.
type APIServerHandle struct {
	*api.Server
}

// Shutdown implements do.Shutdownable.
func (h *APIServerHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideAPIServer builds the huma router over every service.
func ProvideAPIServer(i do.Injector) (*APIServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	index := do.MustInvoke[*search.ProfileIndex](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Accounts:  do.MustInvoke[*service.AccountService](i),
		Profiles:  do.MustInvoke[*service.ProfileService](i),
		Campaigns: do.MustInvoke[*service.CampaignService](i),
		Books:     do.MustInvoke[*service.BookService](i),
		Feedback:  do.MustInvoke[*service.FeedbackService](i),
	}

	srv := api.NewServer(storeHandle.Store, index, services, tokens, api.Config{
		CORSOrigins:     cfg.Server.CORSOrigins,
		SignInPerMinute: cfg.RateLimit.SignInPerMinute,
		SignInBurst:     cfg.RateLimit.SignInBurst,
	}, log.Component("api").Logger)

	return &APIServerHandle{Server: srv}, nil
}

// HTTPServerHandle wraps http.Server with Shutdownable. The listener is
// bound before the handle is returned, so a busy port fails bootstrap.
type HTTPServerHandle struct {
	*http.Server
	listener net.Listener
	failed   chan error
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ListenAddr is the bound address, with the real port when ":0" was asked.
func (h *HTTPServerHandle) ListenAddr() string {
	return h.listener.Addr().String()
}

// Failed delivers the error that stopped serving before Shutdown was called.
func (h *HTTPServerHandle) Failed() <-chan error {
	return h.failed
}

// ProvideHTTPServer binds the port and serves in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	handler := do.MustInvoke[*APIServerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}
	h := &HTTPServerHandle{Server: srv, listener: ln, failed: make(chan error, 1)}

	go func() {
		log.Info("HTTP server listening", "addr", h.ListenAddr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			h.failed <- err
		}
	}()

	return h, nil
}
