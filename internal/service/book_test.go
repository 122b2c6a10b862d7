package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buymeabook/buymeabook-server/internal/domain"
	domainerrors "github.com/buymeabook/buymeabook-server/internal/errors"
)

func seedBooks(t *testing.T, env *testEnv, n int) []*domain.Book {
	t.Helper()
	faker := gofakeit.New(7)
	books := make([]*domain.Book, 0, n)
	for i := range n {
		books = append(books, &domain.Book{
			Title:      fmt.Sprintf("%s %03d", faker.BookTitle(), i),
			Author:     faker.BookAuthor(),
			ISBN:       faker.Numerify("978##########"),
			FinalPrice: int64(faker.IntRange(100, 5000)),
		})
	}
	_, err := env.books.Import(context.Background(), books)
	require.NoError(t, err)
	return books
}

func TestBooks_BrowseVisitsEveryBookOnce(t *testing.T) {
	env := setupServices(t, CampaignConfig{})
	books := seedBooks(t, env, 12)

	var want []string
	for _, b := range books {
		want = append(want, strings.ToLower(b.Title))
	}
	sort.Strings(want)

	var (
		got    []string
		cursor string
		pages  int
	)
	for {
		page, err := env.books.Find(context.Background(), BookQuery{Cursor: cursor})
		require.NoError(t, err)
		pages++
		assert.LessOrEqual(t, len(page.Books), 5)
		for _, b := range page.Books {
			got = append(got, strings.ToLower(b.Title))
		}
		if !page.HasMore {
			assert.Empty(t, page.NextCursor)
			break
		}
		cursor = page.NextCursor
	}

	assert.Equal(t, want, got)
	assert.Equal(t, 3, pages)
}

func TestBooks_SearchModes(t *testing.T) {
	env := setupServices(t, CampaignConfig{})
	ctx := context.Background()
	_, err := env.books.Import(ctx, []*domain.Book{
		{Title: "Dune", ISBN: "9780441013593", FinalPrice: 499},
		{Title: "Dune Messiah", ISBN: "9780593098233", FinalPrice: 599},
		{Title: "Emma", ISBN: "978-0141439587", FinalPrice: 299},
	})
	require.NoError(t, err)

	byTitle, err := env.books.Find(ctx, BookQuery{Search: "dune"})
	require.NoError(t, err)
	require.Len(t, byTitle.Books, 2)
	assert.Equal(t, "Dune", byTitle.Books[0].Title)
	assert.False(t, byTitle.HasMore)
	assert.Empty(t, byTitle.NextCursor)

	byISBN, err := env.books.Find(ctx, BookQuery{Search: "97801"})
	require.NoError(t, err)
	require.Len(t, byISBN.Books, 1)
	assert.Equal(t, "Emma", byISBN.Books[0].Title)
	assert.Equal(t, "9780141439587", byISBN.Books[0].ISBN)

	none, err := env.books.Find(ctx, BookQuery{Search: "zzz"})
	require.NoError(t, err)
	assert.Empty(t, none.Books)
}

func TestBooks_InvalidCursor(t *testing.T) {
	env := setupServices(t, CampaignConfig{})
	_, err := env.books.Find(context.Background(), BookQuery{Cursor: "!!not-base64!!"})
	requireCode(t, err, domainerrors.CodeValidation)
}

func TestBooks_ImportRejectsInvalid(t *testing.T) {
	env := setupServices(t, CampaignConfig{})
	n, err := env.books.Import(context.Background(), []*domain.Book{
		{Title: "Fine"},
		{Title: "", FinalPrice: 10},
	})
	assert.Equal(t, 1, n)
	requireCode(t, err, domainerrors.CodeValidation)
}
