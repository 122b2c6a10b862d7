// Package client is a Go client for the BuyMeABook API, plus the campaign
// board and debounced book search built on it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const apiPrefix = "/api/v1"

// Client talks to one server. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken starts the client with a session token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New returns a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the session token sent with every request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token is the current session token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SignIn exchanges an identity provider ID token for a session and keeps
// the session token for later calls.
func (c *Client) SignIn(ctx context.Context, idToken string) (*Session, error) {
	var sess Session
	if err := c.do(ctx, http.MethodPost, "/auth/session", nil, map[string]string{"idToken": idToken}, &sess); err != nil {
		return nil, err
	}
	c.SetToken(sess.Token)
	return &sess, nil
}

// Me returns the signed-in profile.
func (c *Client) Me(ctx context.Context) (*Profile, error) {
	var out struct {
		User *Profile `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// Profile fetches a profile by handle.
func (c *Client) Profile(ctx context.Context, handle string) (*Profile, error) {
	var out struct {
		User *Profile `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(handle), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// UpdateDescription replaces the signed-in user's description.
func (c *Client) UpdateDescription(ctx context.Context, handle, description string) error {
	return c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(handle), nil,
		map[string]string{"description": description}, nil)
}

// ExploreUsers lists profiles, optionally filtered by handle prefix.
func (c *Client) ExploreUsers(ctx context.Context, q ExploreQuery) ([]*Profile, error) {
	query := url.Values{}
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		query.Set("offset", strconv.Itoa(q.Offset))
	}
	var out struct {
		Users []*Profile `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/explore", query, nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// Campaigns lists an owner's campaigns newest first.
func (c *Client) Campaigns(ctx context.Context, owner string) (*CampaignList, error) {
	var out CampaignList
	if err := c.do(ctx, http.MethodGet, "/campaigns", url.Values{"username": {owner}}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Campaign fetches one campaign.
func (c *Client) Campaign(ctx context.Context, id string) (*Campaign, error) {
	var out struct {
		Campaign *Campaign `json:"campaign"`
	}
	if err := c.do(ctx, http.MethodGet, "/campaigns/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Campaign, nil
}

// CreateCampaign opens a campaign owned by the signed-in user.
func (c *Client) CreateCampaign(ctx context.Context, req CreateCampaignRequest) (*Campaign, error) {
	var out Campaign
	if err := c.do(ctx, http.MethodPost, "/campaigns", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCampaign hard-deletes one of the signed-in user's campaigns.
func (c *Client) DeleteCampaign(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/campaigns/"+url.PathEscape(id), nil, nil, nil)
}

// PublicCampaigns returns one page of campaigns of every user, newest
// first. Pass the previous page's NextCursor to continue. limit <= 0 takes
// the server default.
func (c *Client) PublicCampaigns(ctx context.Context, cursor string, limit int) (*CampaignPage, error) {
	query := url.Values{}
	if cursor != "" {
		query.Set("cursor", cursor)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var out CampaignPage
	if err := c.do(ctx, http.MethodGet, "/public-campaigns", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Books browses or searches the catalog.
func (c *Client) Books(ctx context.Context, q BookQuery) (*BookPage, error) {
	query := url.Values{}
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	if q.Cursor != "" {
		query.Set("cursor", q.Cursor)
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	var out BookPage
	if err := c.do(ctx, http.MethodGet, "/books", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitFeedback sends a feedback message. email may be empty.
func (c *Client) SubmitFeedback(ctx context.Context, message, email string) error {
	body := map[string]string{"message": message}
	if email != "" {
		body["email"] = email
	}
	return c.do(ctx, http.MethodPost, "/feedback", nil, body, nil)
}

// do sends one request. A non-2xx answer becomes an *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		if json.Unmarshal(raw, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
