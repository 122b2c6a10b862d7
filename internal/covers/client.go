// Package covers resolves book cover images by ISBN and attaches them to
// campaign listings.
package covers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrNoCover means the lookup service has no image for the ISBN.
var ErrNoCover = errors.New("no cover for isbn")

// Client queries an Open Library style covers endpoint:
// {base}/b/isbn/{isbn}-M.jpg?default=false answers 404 for unknown ISBNs.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	HTTPClient    *http.Client // optional
	Logger        *slog.Logger // optional
}

// NewClient builds a rate limited cover client.
func NewClient(cfg ClientConfig) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:  hc,
		rateLimiter: rate.NewLimiter(limit, max(cfg.Burst, 1)),
		logger:      logger,
	}
}

// coverURL is the public image URL for isbn.
func (c *Client) coverURL(isbn string) string {
	return c.baseURL + "/b/isbn/" + url.PathEscape(isbn) + "-M.jpg"
}

// CoverURL confirms the service has an image for isbn and returns its URL.
// Any non-2xx answer is a failure.
func (c *Client) CoverURL(ctx context.Context, isbn string) (string, error) {
	isbn = strings.TrimSpace(isbn)
	if isbn == "" {
		return "", ErrNoCover
	}
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.coverURL(isbn)+"?default=false", nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("cover request: %w", err)
	}
	defer resp.Body.Close()
	// Drain a little so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", ErrNoCover
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", fmt.Errorf("cover lookup failed: status %d", resp.StatusCode)
	}

	c.logger.Debug("cover resolved", "isbn", isbn)
	return c.coverURL(isbn), nil
}
