// Package store persists profiles, campaigns, the book catalog and feedback
// as JSON documents in Badger, with secondary index keys maintained in the
// same transaction as the document they point to.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/buymeabook/buymeabook-server/internal/domain"
)

// maxTxnRetries bounds how often a write is replayed after a Badger
// transaction conflict.
const maxTxnRetries = 3

// SearchIndexer mirrors profile writes into the search index.
type SearchIndexer interface {
	IndexProfile(ctx context.Context, p *domain.Profile) error
}

// NoopSearchIndexer discards index updates.
type NoopSearchIndexer struct{}

func (NoopSearchIndexer) IndexProfile(context.Context, *domain.Profile) error { return nil }

// Store wraps a Badger database.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// Set after construction; the index is opened once the store exists.
	searchIndexer SearchIndexer

	Profiles  *Entity[domain.Profile]
	Campaigns *Entity[domain.Campaign]
	Books     *Entity[domain.Book]
	Feedback  *Entity[domain.Feedback]
}

// New opens (or creates) the database at path. A nil logger is allowed.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.SyncWrites = true
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}

	s := &Store{
		db:            db,
		logger:        logger,
		searchIndexer: NoopSearchIndexer{},
	}
	s.initProfiles()
	s.initCampaigns()
	s.initBooks()
	s.initFeedback()

	if logger != nil {
		logger.Info("badger database opened", "path", path)
	}
	return s, nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("closing database")
	}
	return s.db.Close()
}

// Ping checks that the database answers a read transaction.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return errors.New("database is closed")
	}
	return s.db.View(func(*badger.Txn) error { return nil })
}

// SetSearchIndexer installs the profile indexer.
func (s *Store) SetSearchIndexer(indexer SearchIndexer) {
	if indexer == nil {
		indexer = NoopSearchIndexer{}
	}
	s.searchIndexer = indexer
}

// update runs fn in a read-write transaction, replaying it when Badger
// reports a conflict with a concurrent writer.
func (s *Store) update(fn func(txn *badger.Txn) error) error {
	var err error
	for range maxTxnRetries {
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("transaction conflict after %d attempts: %w", maxTxnRetries, err)
}

func (s *Store) logWarn(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.WarnContext(ctx, msg, args...)
	}
}
