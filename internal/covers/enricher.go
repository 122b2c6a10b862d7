package covers

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/buymeabook/buymeabook-server/internal/domain"
)

// Lookup resolves an ISBN to a cover image URL.
type Lookup interface {
	CoverURL(ctx context.Context, isbn string) (string, error)
}

// Enricher fills in campaign book covers. A failed lookup gets the
// fallback image and never fails the batch.
type Enricher struct {
	lookup        Lookup
	fallback      string
	timeout       time.Duration
	maxConcurrent int
	logger        *slog.Logger
}

// EnricherConfig configures an Enricher.
type EnricherConfig struct {
	FallbackURL   string
	Timeout       time.Duration // per lookup
	MaxConcurrent int
	Logger        *slog.Logger
}

// NewEnricher builds an enricher over lookup.
func NewEnricher(lookup Lookup, cfg EnricherConfig) *Enricher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Enricher{
		lookup:        lookup,
		fallback:      cfg.FallbackURL,
		timeout:       cfg.Timeout,
		maxConcurrent: max(cfg.MaxConcurrent, 1),
		logger:        logger,
	}
}

// Fallback is the image used when no cover resolves.
func (e *Enricher) Fallback() string { return e.fallback }

// Enrich sets Book.Cover on every campaign. At most maxConcurrent lookups
// run at once, each bounded by the per-item timeout; it returns once all
// have finished or ctx is done, with unresolved items on the fallback.
func (e *Enricher) Enrich(ctx context.Context, campaigns []*domain.Campaign) {
	var g errgroup.Group
	g.SetLimit(e.maxConcurrent)

	for _, c := range campaigns {
		if ctx.Err() != nil {
			c.Book.Cover = e.fallback
			continue
		}
		g.Go(func() error {
			c.Book.Cover = e.resolve(ctx, c.Book.ISBN)
			return nil
		})
	}
	_ = g.Wait()
}

func (e *Enricher) resolve(ctx context.Context, isbn string) string {
	if isbn == "" {
		return e.fallback
	}
	itemCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		itemCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	u, err := e.lookup.CoverURL(itemCtx, isbn)
	if err != nil || u == "" {
		e.logger.Debug("cover lookup failed, using fallback", "isbn", isbn, "error", err)
		return e.fallback
	}
	return u
}
