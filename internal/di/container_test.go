package di

import (
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buymeabook/buymeabook-server/internal/config"
	"github.com/buymeabook/buymeabook-server/internal/di/providers"
	"github.com/buymeabook/buymeabook-server/internal/domain"
	"github.com/buymeabook/buymeabook-server/internal/logger"
	"github.com/buymeabook/buymeabook-server/internal/service"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		App:    config.AppConfig{Environment: "development"},
		Logger: config.LoggerConfig{Level: "error"},
		Data:   config.DataConfig{BasePath: dir},
		Server: config.ServerConfig{Port: "0", ReadTimeout: time.Second, WriteTimeout: time.Second},
		Auth: config.AuthConfig{
			KeyPath:             filepath.Join(dir, "auth.key"),
			AccessTokenDuration: time.Hour,
		},
		Identity:  config.IdentityConfig{Issuer: "https://identity.test", Audience: "buymeabook"},
		Covers:    config.CoversConfig{BaseURL: "http://127.0.0.1:1", FallbackURL: "/book123.png", Timeout: time.Second, MaxConcurrent: 1},
		Campaigns: config.CampaignsConfig{MaxPerOwner: 3},
		Books:     config.BooksConfig{PageSize: 5, SearchLimit: 50},
		RateLimit: config.RateLimitConfig{SignInPerMinute: 10, SignInBurst: 5},
	}
}

func newTestContainer(t *testing.T, cfg *config.Config) *do.RootScope {
	t.Helper()
	injector := NewContainer()
	do.OverrideValue(injector, cfg)
	do.OverrideValue(injector, logger.Discard())
	return injector
}

func TestBootstrap_WiresServices(t *testing.T) {
	injector := newTestContainer(t, testConfig(t))
	require.NoError(t, Bootstrap(injector))
	t.Cleanup(func() { _ = injector.Shutdown() })

	srv, err := do.Invoke[*providers.HTTPServerHandle](injector)
	require.NoError(t, err)

	storeHandle := do.MustInvoke[*providers.StoreHandle](injector)
	require.NoError(t, storeHandle.Ping(context.Background()))

	resp, err := http.Get("http://" + srv.ListenAddr() + "/api/v1/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBootstrap_BusyPortFails(t *testing.T) {
	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer busy.Close()
	_, port, err := net.SplitHostPort(busy.Addr().String())
	require.NoError(t, err)

	cfg := testConfig(t)
	cfg.Server.Port = port
	injector := newTestContainer(t, cfg)
	t.Cleanup(func() { _ = injector.Shutdown() })

	err = Bootstrap(injector)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen on :"+port)
}

func TestBootstrap_RebuildsMissingIndex(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	first := newTestContainer(t, cfg)
	require.NoError(t, Bootstrap(first))
	storeHandle := do.MustInvoke[*providers.StoreHandle](first)
	require.NoError(t, storeHandle.CreateProfile(ctx, &domain.Profile{
		Username:  "ada",
		UID:       "sub-ada",
		Email:     "ada@example.com",
		CreatedAt: time.Now().UTC(),
	}))
	_ = first.Shutdown()

	require.NoError(t, os.RemoveAll(cfg.Data.SearchPath()))

	second := newTestContainer(t, cfg)
	require.NoError(t, Bootstrap(second))
	t.Cleanup(func() { _ = second.Shutdown() })

	profiles := do.MustInvoke[*service.ProfileService](second)
	res, err := profiles.Explore(ctx, service.ExploreRequest{})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "ada", res[0].Username)
}
