package client

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounce is how long BookSearch waits for typing to pause.
const DefaultDebounce = 300 * time.Millisecond

// BookLookup is the part of Client book searching needs.
type BookLookup interface {
	Books(ctx context.Context, q BookQuery) (*BookPage, error)
}

// SearchResult is the outcome of one settled query. A failed lookup yields
// no books and carries the error.
type SearchResult struct {
	Query      string
	Books      []*Book
	NextCursor string
	HasMore    bool
	Err        error
}

// BookSearch turns keystrokes into catalog queries. Only the query standing
// after a pause of Debounce is sent, an in-flight query is cancelled when a
// newer one starts, and results of superseded queries are never delivered.
type BookSearch struct {
	lookup   BookLookup
	delay    time.Duration
	timeout  time.Duration
	onResult func(SearchResult)

	mu      sync.Mutex
	seq     uint64
	timer   *time.Timer
	cancel  context.CancelFunc
	closed  bool
	running sync.WaitGroup

	// deliver serializes onResult calls with the staleness check.
	deliver sync.Mutex
}

// SearchOption configures a BookSearch.
type SearchOption func(*BookSearch)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) SearchOption {
	return func(s *BookSearch) { s.delay = d }
}

// WithQueryTimeout bounds each query. Zero means no bound.
func WithQueryTimeout(d time.Duration) SearchOption {
	return func(s *BookSearch) { s.timeout = d }
}

// NewBookSearch returns a search that reports settled queries to onResult.
// onResult runs on a background goroutine.
func NewBookSearch(lookup BookLookup, onResult func(SearchResult), opts ...SearchOption) *BookSearch {
	s := &BookSearch{
		lookup:   lookup,
		delay:    DefaultDebounce,
		timeout:  10 * time.Second,
		onResult: onResult,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Update records the current input. An empty query browses the first page.
func (s *BookSearch) Update(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.seq++
	seq := s.seq
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.timer = time.AfterFunc(s.delay, func() { s.run(seq, query) })
}

// Close stops pending and in-flight queries and waits for them to return.
func (s *BookSearch) Close() {
	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	s.running.Wait()
}

func (s *BookSearch) run(seq uint64, query string) {
	s.mu.Lock()
	if s.closed || seq != s.seq {
		s.mu.Unlock()
		return
	}
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if s.timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), s.timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	s.cancel = cancel
	s.running.Add(1)
	s.mu.Unlock()
	defer s.running.Done()
	defer cancel()

	res := SearchResult{Query: query}
	page, err := s.lookup.Books(ctx, BookQuery{Search: query})
	if err != nil {
		res.Err = err
	} else {
		res.Books = page.Books
		res.NextCursor = page.NextCursor
		res.HasMore = page.HasMore
	}

	s.deliver.Lock()
	defer s.deliver.Unlock()
	if !s.current(seq) {
		return
	}
	if s.onResult != nil {
		s.onResult(res)
	}
}

func (s *BookSearch) current(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && seq == s.seq
}

// BookBrowser pages through the catalog in title order, accumulating
// results for a "load more" list.
type BookBrowser struct {
	lookup BookLookup
	limit  int

	books  []*Book
	cursor string
	done   bool
}

// NewBookBrowser browses with the given page size; limit <= 0 takes the
// server default.
func NewBookBrowser(lookup BookLookup, limit int) *BookBrowser {
	return &BookBrowser{lookup: lookup, limit: limit}
}

// More fetches the next page and returns everything loaded so far. Once the
// end is reached it returns without a request.
func (b *BookBrowser) More(ctx context.Context) ([]*Book, error) {
	if b.done {
		return b.books, nil
	}
	page, err := b.lookup.Books(ctx, BookQuery{Cursor: b.cursor, Limit: b.limit})
	if err != nil {
		return b.books, err
	}
	b.books = append(b.books, page.Books...)
	b.cursor = page.NextCursor
	b.done = !page.HasMore || page.NextCursor == ""
	return b.books, nil
}

// Done reports whether the last page has been loaded.
func (b *BookBrowser) Done() bool { return b.done }
