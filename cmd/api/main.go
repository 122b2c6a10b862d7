// Package main provides the entry point for the BuyMeABook server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/buymeabook/buymeabook-server/internal/di"
	"github.com/buymeabook/buymeabook-server/internal/di/providers"
	"github.com/buymeabook/buymeabook-server/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "buymeabook: %v\n", err)
		os.Exit(1)
	}
}

// run serves until SIGINT, SIGTERM or a listener failure, then drains
// in-flight requests and closes the store.
func run() error {
	injector := di.NewContainer()

	if err := di.Bootstrap(injector); err != nil {
		_ = injector.Shutdown()
		return fmt.Errorf("bootstrap: %w", err)
	}

	log := do.MustInvoke[*logger.Logger](injector).Component("main")
	srv := do.MustInvoke[*providers.HTTPServerHandle](injector)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("Stopping campaign API", "addr", srv.ListenAddr())
	case serveErr = <-srv.Failed():
		log.Error("Campaign API stopped serving", "addr", srv.ListenAddr(), "error", serveErr)
	}
	// A second signal kills the process instead of waiting on the drain.
	stop()

	// Listener, router, search index and store close in reverse dependency
	// order.
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown incomplete", "error", err)
		if serveErr == nil {
			return fmt.Errorf("shutdown: %v", err)
		}
	}
	if serveErr != nil {
		return fmt.Errorf("serve: %w", serveErr)
	}

	log.Info("Campaign API stopped")
	return nil
}
