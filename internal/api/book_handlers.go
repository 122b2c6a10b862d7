package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/buymeabook/buymeabook-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "findBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "Browse or search books",
		Description: "Without search, pages through the catalog in title order. A numeric search matches ISBN prefixes, anything else title prefixes.",
		Tags:        []string{"Books"},
	}, s.handleFindBooks)
}

// FindBooksInput selects browse or search mode.
type FindBooksInput struct {
	Search string `query:"search" doc:"Title or ISBN prefix"`
	Cursor string `query:"cursor" doc:"nextCursor of the previous page"`
	Limit  int    `query:"limit" minimum:"0" maximum:"100" doc:"Page size"`
}

// BooksOutput wraps a book page for Huma.
type BooksOutput struct {
	Body service.BookPage
}

func (s *Server) handleFindBooks(ctx context.Context, input *FindBooksInput) (*BooksOutput, error) {
	page, err := s.services.Books.Find(ctx, service.BookQuery{
		Search: input.Search,
		Cursor: input.Cursor,
		Limit:  input.Limit,
	})
	if err != nil {
		return nil, err
	}
	return &BooksOutput{Body: *page}, nil
}
