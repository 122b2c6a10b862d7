package api

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buymeabook/buymeabook-server/internal/domain"
	"github.com/buymeabook/buymeabook-server/internal/service"
)

func seedCatalog(t *testing.T, ts *testServer) {
	t.Helper()
	_, err := ts.services.Books.Import(context.Background(), []*domain.Book{
		{ID: "b1", Title: "Dune", ISBN: duneISBN, FinalPrice: 499},
		{ID: "b2", Title: "Dune Messiah", ISBN: "9780593098233", FinalPrice: 599},
		{ID: "b3", Title: "Emma", ISBN: "9780141439587", FinalPrice: 299},
		{ID: "b4", Title: "Frankenstein", ISBN: "9780486282114", FinalPrice: 199},
		{ID: "b5", Title: "Middlemarch", ISBN: "9780141439549", FinalPrice: 399},
		{ID: "b6", Title: "Persuasion", ISBN: "9780141439686", FinalPrice: 250},
		{ID: "b7", Title: "Ulysses", ISBN: "9780199535675", FinalPrice: 650},
	})
	require.NoError(t, err)
}

func TestBooks_BrowsePages(t *testing.T) {
	ts := setupTestServer(t, serverOptions{})
	seedCatalog(t, ts)

	resp := ts.api.Get("/api/v1/books")
	require.Equal(t, http.StatusOK, resp.Code)
	first := decode[service.BookPage](t, resp)
	require.Len(t, first.Books, 5)
	assert.True(t, first.HasMore)
	assert.NotEmpty(t, first.NextCursor)
	assert.Equal(t, "Dune", first.Books[0].Title)

	resp = ts.api.Get("/api/v1/books?cursor=" + url.QueryEscape(first.NextCursor))
	require.Equal(t, http.StatusOK, resp.Code)
	second := decode[service.BookPage](t, resp)
	require.Len(t, second.Books, 2)
	assert.False(t, second.HasMore)
	assert.Empty(t, second.NextCursor)
	assert.Equal(t, "Persuasion", second.Books[0].Title)
	assert.Equal(t, "Ulysses", second.Books[1].Title)
}

func TestBooks_Search(t *testing.T) {
	ts := setupTestServer(t, serverOptions{})
	seedCatalog(t, ts)

	resp := ts.api.Get("/api/v1/books?search=Dune")
	require.Equal(t, http.StatusOK, resp.Code)
	page := decode[service.BookPage](t, resp)
	require.Len(t, page.Books, 2)
	assert.False(t, page.HasMore)
	assert.Empty(t, page.NextCursor)

	resp = ts.api.Get("/api/v1/books?search=978014143")
	require.Equal(t, http.StatusOK, resp.Code)
	page = decode[service.BookPage](t, resp)
	require.Len(t, page.Books, 3)
	assert.Equal(t, "Middlemarch", page.Books[0].Title, "ISBN order")

	resp = ts.api.Get("/api/v1/books?cursor=%21%21")
	requireError(t, resp, http.StatusBadRequest, "VALIDATION")
}
