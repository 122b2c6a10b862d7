package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/buymeabook/buymeabook-server/internal/domain"
	domainerrors "github.com/buymeabook/buymeabook-server/internal/errors"
	"github.com/buymeabook/buymeabook-server/internal/id"
	"github.com/buymeabook/buymeabook-server/internal/store"
)

var numericQuery = regexp.MustCompile(`^\d+$`)

// BookConfig sizes browse pages and search results.
type BookConfig struct {
	PageSize    int
	SearchLimit int
}

// BookService is the lookup helper campaigns pick their book from.
type BookService struct {
	store  *store.Store
	cfg    BookConfig
	logger *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(store *store.Store, cfg BookConfig, logger *slog.Logger) *BookService {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 5
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 50
	}
	return &BookService{store: store, cfg: cfg, logger: logger}
}

// BookQuery selects browse mode (empty Search) or search mode.
type BookQuery struct {
	Search string
	Cursor string
	Limit  int
}

// BookPage is one result set. Search results never carry a cursor.
type BookPage struct {
	Books      []*domain.Book `json:"books"`
	NextCursor string         `json:"nextCursor,omitempty"`
	HasMore    bool           `json:"hasMore"`
}

// Find browses the catalog in title order or searches it. A numeric query
// matches ISBN prefixes, anything else title prefixes.
func (s *BookService) Find(ctx context.Context, q BookQuery) (*BookPage, error) {
	term := strings.TrimSpace(q.Search)
	if term == "" {
		return s.browse(ctx, q.Cursor, q.Limit)
	}

	limit := s.cfg.SearchLimit
	if q.Limit > 0 {
		limit = min(q.Limit, s.cfg.SearchLimit)
	}

	var (
		books []*domain.Book
		err   error
	)
	if numericQuery.MatchString(term) {
		books, err = s.store.SearchBooksByISBN(ctx, term, limit)
	} else {
		books, err = s.store.SearchBooksByTitle(ctx, term, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return &BookPage{Books: books}, nil
}

func (s *BookService) browse(ctx context.Context, cursor string, limit int) (*BookPage, error) {
	if limit <= 0 {
		limit = s.cfg.PageSize
	}
	page, err := s.store.BrowseBooks(ctx, cursor, limit)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCursor) {
			return nil, domainerrors.Validation("invalid cursor")
		}
		return nil, fmt.Errorf("browse books: %w", err)
	}
	return &BookPage{
		Books:      page.Items,
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}, nil
}

// Import validates and upserts catalog books, assigning ids to those
// without one. It stops at the first invalid book.
func (s *BookService) Import(ctx context.Context, books []*domain.Book) (int, error) {
	for i, b := range books {
		b.Title = strings.TrimSpace(b.Title)
		b.ISBN = strings.ReplaceAll(strings.TrimSpace(b.ISBN), "-", "")
		if err := validate.Validate(b); err != nil {
			return i, fmt.Errorf("book %d (%q): %w", i, b.Title, err)
		}
		if b.ID == "" {
			v, err := id.Generate(id.PrefixBook)
			if err != nil {
				return i, err
			}
			b.ID = v
		}
		if err := s.store.PutBook(ctx, b); err != nil {
			return i, err
		}
	}
	s.logger.Info("books imported", "count", len(books))
	return len(books), nil
}
