package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buymeabook/buymeabook-server/internal/domain"
	"github.com/buymeabook/buymeabook-server/internal/service"
	"github.com/buymeabook/buymeabook-server/internal/store"
)

func TestParseCatalog(t *testing.T) {
	books, err := parseCatalog(strings.NewReader(`
books:
  - title: Dune
    author: Frank Herbert
    isbn: "9780441013593"
    finalPrice: 1899
  - id: bk-fixed
    title: Emma
    finalPrice: 799
`))
	require.NoError(t, err)

	want := []*domain.Book{
		{Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593", FinalPrice: 1899},
		{ID: "bk-fixed", Title: "Emma", FinalPrice: 799},
	}
	if diff := cmp.Diff(want, books); diff != "" {
		t.Errorf("catalog mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCatalog_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty input", ""},
		{"no books", "books: []\n"},
		{"unknown field", "books:\n  - title: Dune\n    price: 10\n"},
		{"not yaml", "books: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCatalog(strings.NewReader(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestFakeBooks(t *testing.T) {
	books := fakeBooks(gofakeit.New(42), 10)
	require.Len(t, books, 10)
	for _, b := range books {
		assert.NotEmpty(t, b.Title)
		assert.Len(t, b.ISBN, 13)
		assert.GreaterOrEqual(t, b.FinalPrice, int64(299))
		assert.Empty(t, b.ID)
	}

	again := fakeBooks(gofakeit.New(42), 10)
	assert.Equal(t, books, again)
}

func TestImportCatalog_ReportsCatalogSize(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	defer st.Close()
	svc := service.NewBookService(st, service.BookConfig{}, slog.New(slog.DiscardHandler))
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, importCatalog(ctx, st, svc, fakeBooks(gofakeit.New(7), 3), &out))
	assert.Equal(t, "Imported 3 books, catalog holds 3\n", out.String())

	out.Reset()
	require.NoError(t, importCatalog(ctx, st, svc, []*domain.Book{{ID: "bk-fixed", Title: "Emma", FinalPrice: 799}}, &out))
	assert.Equal(t, "Imported 1 books, catalog holds 4\n", out.String())

	out.Reset()
	err = importCatalog(ctx, st, svc, []*domain.Book{{Title: " "}}, &out)
	assert.ErrorContains(t, err, "imported 0 of 1 books")
	assert.Empty(t, out.String())
}
