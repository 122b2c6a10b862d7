package store

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/buymeabook/buymeabook-server/internal/domain"
)

const (
	bookPrefix = "book:"

	indexBookTitle = "title"
	indexBookISBN  = "isbn"
)

func (s *Store) initBooks() {
	s.Books = NewEntity[domain.Book](s, bookPrefix).
		WithOrderedIndex(indexBookTitle, func(b *domain.Book) []string {
			return []string{joinKey(titleKey(b.Title), b.ID)}
		}).
		WithOrderedIndex(indexBookISBN, func(b *domain.Book) []string {
			if b.ISBN == "" {
				return nil
			}
			return []string{joinKey(b.ISBN, b.ID)}
		})
}

// titleKey is the sort and match form of a title.
func titleKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// PutBook inserts or replaces a catalog book.
func (s *Store) PutBook(ctx context.Context, b *domain.Book) error {
	exists, err := s.Books.Exists(ctx, b.ID)
	if err != nil {
		return fmt.Errorf("check book %s: %w", b.ID, err)
	}
	if exists {
		err = s.Books.Update(ctx, b.ID, b)
	} else {
		err = s.Books.Create(ctx, b.ID, b)
	}
	if err != nil {
		return fmt.Errorf("put book %s: %w", b.ID, err)
	}
	return nil
}

// GetBook returns the catalog book with id.
func (s *Store) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	return s.Books.Get(ctx, bookID)
}

// BrowseBooks returns one page of the catalog in title order. cursor is
// the NextCursor of the previous page, or empty for the first.
func (s *Store) BrowseBooks(ctx context.Context, cursor string, limit int) (*Page[*domain.Book], error) {
	after, err := DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}
	limit = clampLimit(limit, 5, 100)

	// One extra row tells whether another page exists.
	hits, err := collectHits(s.Books.Scan(ctx, indexBookTitle, Range{After: after, Limit: limit + 1}))
	if err != nil {
		return nil, fmt.Errorf("browse books: %w", err)
	}

	page := &Page[*domain.Book]{Items: make([]*domain.Book, 0, limit)}
	if len(hits) > limit {
		hits = hits[:limit]
		page.HasMore = true
	}
	for _, h := range hits {
		page.Items = append(page.Items, h.Value)
	}
	if page.HasMore {
		page.NextCursor = EncodeCursor(hits[len(hits)-1].Key)
	}
	return page, nil
}

// SearchBooksByTitle returns books whose title starts with q, in title order.
func (s *Store) SearchBooksByTitle(ctx context.Context, q string, limit int) ([]*domain.Book, error) {
	q = titleKey(q)
	return collect(s.Books.Scan(ctx, indexBookTitle, Range{From: q, To: q + rangeEnd, Limit: limit}))
}

// SearchBooksByISBN returns books whose ISBN starts with q, in ISBN order.
func (s *Store) SearchBooksByISBN(ctx context.Context, q string, limit int) ([]*domain.Book, error) {
	return collect(s.Books.Scan(ctx, indexBookISBN, Range{From: q, To: q + rangeEnd, Limit: limit}))
}

// CountBooks returns the catalog size.
func (s *Store) CountBooks(ctx context.Context) (int, error) {
	return s.Books.Count(ctx, indexBookTitle, "")
}

func collect[T any](seq iter.Seq2[Hit[T], error]) ([]*T, error) {
	out := []*T{}
	for h, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, h.Value)
	}
	return out, nil
}

func collectHits[T any](seq iter.Seq2[Hit[T], error]) ([]Hit[T], error) {
	var out []Hit[T]
	for h, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}
