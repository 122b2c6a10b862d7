// Package search keeps a Bleve index of profiles for the explore listing.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/buymeabook/buymeabook-server/internal/domain"
)

// mappingVersion changes whenever buildIndexMapping does; a mismatch on
// open recreates the index, and NeedsRebuild tells the caller to refill it.
const mappingVersion = "1"

// ProfileIndex wraps a Bleve index of profiles. Safe for concurrent use.
type ProfileIndex struct {
	mu           sync.RWMutex
	index        bleve.Index
	path         string
	logger       *slog.Logger
	needsRebuild bool
}

// Options configures the index. An empty DataPath keeps it in memory.
type Options struct {
	DataPath string
	Logger   *slog.Logger
}

// NewProfileIndex opens the index under opts.DataPath, creating it when it
// is missing, unreadable or built from an older mapping.
func NewProfileIndex(opts Options) (*ProfileIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if opts.DataPath == "" {
		idx, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create in-memory index: %w", err)
		}
		return &ProfileIndex{index: idx, logger: logger}, nil
	}

	if err := os.MkdirAll(opts.DataPath, 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	indexPath := filepath.Join(opts.DataPath, "profiles.bleve")
	versionPath := filepath.Join(opts.DataPath, "profiles.version")

	var idx bleve.Index
	if _, err := os.Stat(indexPath); err == nil {
		v, readErr := os.ReadFile(versionPath)
		if readErr == nil && string(v) == mappingVersion {
			idx, err = bleve.Open(indexPath)
			if err != nil {
				logger.Warn("failed to open search index, recreating", "path", indexPath, "error", err)
			}
		} else {
			logger.Info("search index mapping changed, recreating", "new_version", mappingVersion)
		}
	}

	rebuild := false
	if idx == nil {
		if err := os.RemoveAll(indexPath); err != nil {
			return nil, fmt.Errorf("remove old index: %w", err)
		}
		var err error
		idx, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); err != nil {
			logger.Warn("failed to write search version file", "error", err)
		}
		rebuild = true
		logger.Info("created search index", "path", indexPath, "mapping_version", mappingVersion)
	}

	return &ProfileIndex{index: idx, path: indexPath, logger: logger, needsRebuild: rebuild}, nil
}

// NeedsRebuild reports whether the index was created empty on open and
// should be refilled from the store.
func (p *ProfileIndex) NeedsRebuild() bool {
	return p.needsRebuild
}

// Close releases the index.
func (p *ProfileIndex) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index.Close()
}

// IndexProfile adds or replaces the document for a profile.
func (p *ProfileIndex) IndexProfile(_ context.Context, prof *domain.Profile) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.index.Index(prof.Username, profileDocument(prof))
}

// Count returns the number of indexed profiles.
func (p *ProfileIndex) Count() (uint64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.index.DocCount()
}

func profileDocument(prof *domain.Profile) map[string]any {
	return map[string]any{
		fieldHandle:      strings.ToLower(prof.Username),
		fieldDisplayName: prof.DisplayName,
		fieldDisplaySort: sortKey(prof),
		fieldDescription: prof.Description,
	}
}

// sortKey orders profiles by display name, falling back to the handle.
func sortKey(prof *domain.Profile) string {
	name := strings.ToLower(strings.TrimSpace(prof.DisplayName))
	if name == "" {
		name = prof.Username
	}
	return name
}
