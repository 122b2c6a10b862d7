package store_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buymeabook/buymeabook-server/internal/domain"
	"github.com/buymeabook/buymeabook-server/internal/store"
)

func putBooks(t *testing.T, s *store.Store, books ...*domain.Book) {
	t.Helper()
	for _, b := range books {
		require.NoError(t, s.PutBook(context.Background(), b))
	}
}

func bookIDs(bs []*domain.Book) []string {
	ids := make([]string, len(bs))
	for i, b := range bs {
		ids[i] = b.ID
	}
	return ids
}

func TestBrowseBooks_EveryBookOnceInTitleOrder(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	faker := gofakeit.New(42)
	var all []*domain.Book
	for i := range 23 {
		b := &domain.Book{
			ID:         fmt.Sprintf("bk-%02d", i),
			Title:      faker.BookTitle(),
			Author:     faker.BookAuthor(),
			ISBN:       faker.Numerify("978##########"),
			FinalPrice: int64(faker.Number(100, 5000)),
		}
		all = append(all, b)
	}
	putBooks(t, s, all...)

	sort.SliceStable(all, func(i, j int) bool {
		ti, tj := strings.ToLower(all[i].Title), strings.ToLower(all[j].Title)
		if ti != tj {
			return ti < tj
		}
		return all[i].ID < all[j].ID
	})

	var seen []string
	cursor := ""
	pages := 0
	for {
		page, err := s.BrowseBooks(ctx, cursor, 5)
		require.NoError(t, err)
		require.LessOrEqual(t, len(page.Items), 5)
		seen = append(seen, bookIDs(page.Items)...)
		pages++
		if !page.HasMore {
			assert.Empty(t, page.NextCursor)
			break
		}
		require.NotEmpty(t, page.NextCursor)
		cursor = page.NextCursor
	}

	assert.Equal(t, 5, pages)
	if diff := cmp.Diff(bookIDs(all), seen); diff != "" {
		t.Fatalf("browse order mismatch (-want +got):\n%s", diff)
	}
}

func TestBrowseBooks_ExactMultipleOfPageSize(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	for i := range 5 {
		putBooks(t, s, &domain.Book{ID: fmt.Sprintf("bk-%d", i), Title: fmt.Sprintf("Title %d", i)})
	}

	page, err := s.BrowseBooks(context.Background(), "", 5)
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
	assert.False(t, page.HasMore, "no phantom empty page")
}

func TestBrowseBooks_InvalidCursor(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.BrowseBooks(context.Background(), "%%%", 5)
	assert.ErrorIs(t, err, store.ErrInvalidCursor)
}

func TestSearchBooks(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	putBooks(t, s,
		&domain.Book{ID: "b1", Title: "Dune", ISBN: "9780441013593"},
		&domain.Book{ID: "b2", Title: "Dune Messiah", ISBN: "9780593098233"},
		&domain.Book{ID: "b3", Title: "Dracula", ISBN: "9780486411095"},
		&domain.Book{ID: "b4", Title: "Emma"},
	)

	got, err := s.SearchBooksByTitle(ctx, "Dun", 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"b1", "b2"}, bookIDs(got))

	got, err = s.SearchBooksByTitle(ctx, "dune m", 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"b2"}, bookIDs(got))

	got, err = s.SearchBooksByISBN(ctx, "978044", 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"b1"}, bookIDs(got))

	got, err = s.SearchBooksByISBN(ctx, "9780", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b1", "b3"}, bookIDs(got), "isbn order, capped")

	got, err = s.SearchBooksByTitle(ctx, "Zz", 50)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPutBook_ReplacesIndexes(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	putBooks(t, s, &domain.Book{ID: "b1", Title: "Working Title"})
	putBooks(t, s, &domain.Book{ID: "b1", Title: "Final Title"})

	got, err := s.SearchBooksByTitle(ctx, "working", 50)
	require.NoError(t, err)
	assert.Empty(t, got)

	n, err := s.CountBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
