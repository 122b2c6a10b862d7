package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// MaxExploreLimit caps one explore page.
const MaxExploreLimit = 100

// ExploreRequest selects a window of profiles.
type ExploreRequest struct {
	Query  string // handle prefix; empty lists everyone
	Limit  int
	Offset int
}

// ExploreResult lists matching handles in display order.
type ExploreResult struct {
	Handles []string
	Total   uint64
}

// Explore returns handles whose handle starts with req.Query, ordered by
// handle, or all handles ordered by display name when the query is empty.
func (p *ProfileIndex) Explore(ctx context.Context, req ExploreRequest) (*ExploreResult, error) {
	limit := req.Limit
	if limit <= 0 || limit > MaxExploreLimit {
		limit = MaxExploreLimit
	}
	offset := max(req.Offset, 0)

	var q query.Query
	sortBy := []string{fieldDisplaySort, fieldHandle}
	if prefix := strings.ToLower(strings.TrimSpace(req.Query)); prefix != "" {
		pq := bleve.NewPrefixQuery(prefix)
		pq.SetField(fieldHandle)
		q = pq
		sortBy = []string{fieldHandle}
	} else {
		q = bleve.NewMatchAllQuery()
	}

	sr := bleve.NewSearchRequestOptions(q, limit, offset, false)
	sr.SortBy(sortBy)

	p.mu.RLock()
	res, err := p.index.SearchInContext(ctx, sr)
	p.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("explore search: %w", err)
	}

	out := &ExploreResult{Handles: make([]string, 0, len(res.Hits)), Total: res.Total}
	for _, hit := range res.Hits {
		out.Handles = append(out.Handles, hit.ID)
	}
	return out, nil
}
