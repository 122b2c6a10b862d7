package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/buymeabook/buymeabook-server/internal/config"
	"github.com/buymeabook/buymeabook-server/internal/logger"
	"github.com/buymeabook/buymeabook-server/internal/search"
)

// SearchIndexHandle wraps the profile index with shutdown capability.
type SearchIndexHandle struct {
	*search.ProfileIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex opens the profile index and attaches it to the store
// so profile writes are mirrored.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	index, err := search.NewProfileIndex(search.Options{
		DataPath: cfg.Data.SearchPath(),
		Logger:   log.Component("search").Logger,
	})
	if err != nil {
		return nil, err
	}
	storeHandle.SetSearchIndexer(index)

	return &SearchIndexHandle{ProfileIndex: index}, nil
}

// ProvideProfileIndex exposes the bare index to consumers that do not
// manage its lifecycle.
func ProvideProfileIndex(i do.Injector) (*search.ProfileIndex, error) {
	return do.MustInvoke[*SearchIndexHandle](i).ProfileIndex, nil
}

// ReindexProfilesIfNeeded refills a freshly created index from the store.
func ReindexProfilesIfNeeded(i do.Injector) error {
	index := do.MustInvoke[*SearchIndexHandle](i)
	if !index.NeedsRebuild() {
		return nil
	}

	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	start := time.Now()
	n, err := storeHandle.ReindexProfiles(context.Background())
	if err != nil {
		log.Error("Profile reindex failed", "indexed", n, "error", err)
		return err
	}
	log.Info("Profile index rebuilt", "profiles", n, "duration", time.Since(start))
	return nil
}
