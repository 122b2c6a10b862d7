package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrDeleteCancelled is returned by Board.Delete when the confirm callback
// declines.
var ErrDeleteCancelled = errors.New("delete cancelled")

// CampaignAPI is the part of Client a Board needs.
type CampaignAPI interface {
	Profile(ctx context.Context, handle string) (*Profile, error)
	Campaigns(ctx context.Context, owner string) (*CampaignList, error)
	CreateCampaign(ctx context.Context, req CreateCampaignRequest) (*Campaign, error)
	DeleteCampaign(ctx context.Context, id string) error
}

// ConfirmFunc asks the user whether c should really be deleted.
type ConfirmFunc func(c *Campaign) bool

// BoardState is one consistent load of a profile page.
type BoardState struct {
	Profile   *Profile
	Campaigns []*Campaign
	CanCreate bool
	// IsOwner is true when the viewer owns the page; only then are create
	// and delete offered.
	IsOwner bool
}

// Board is the campaign listing of one profile page. Every mutation is
// followed by a full reload so the state always mirrors the server.
type Board struct {
	api     CampaignAPI
	owner   string
	viewer  string
	confirm ConfirmFunc

	mu    sync.RWMutex
	state *BoardState
}

// NewBoard builds the board for owner's page as seen by viewer (empty for
// anonymous visitors). A nil confirm approves every delete.
func NewBoard(api CampaignAPI, owner, viewer string, confirm ConfirmFunc) *Board {
	if confirm == nil {
		confirm = func(*Campaign) bool { return true }
	}
	return &Board{api: api, owner: owner, viewer: viewer, confirm: confirm}
}

// State is the last loaded state, nil before the first Load.
func (b *Board) State() *BoardState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// Load fetches the profile and its campaigns in parallel and replaces the
// board state. A failed load keeps the previous state.
func (b *Board) Load(ctx context.Context) (*BoardState, error) {
	var (
		profile *Profile
		list    *CampaignList
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := b.api.Profile(gctx, b.owner)
		if err != nil {
			return fmt.Errorf("load profile %s: %w", b.owner, err)
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		l, err := b.api.Campaigns(gctx, b.owner)
		if err != nil {
			return fmt.Errorf("load campaigns of %s: %w", b.owner, err)
		}
		list = l
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	state := &BoardState{
		Profile:   profile,
		Campaigns: list.Campaigns,
		CanCreate: list.CanCreate,
		IsOwner:   b.viewer != "" && b.viewer == b.owner,
	}
	b.mu.Lock()
	b.state = state
	b.mu.Unlock()
	return state, nil
}

// Refresh reloads the board, discarding the state. It matches the
// callback shape the creation wizard expects.
func (b *Board) Refresh(ctx context.Context) error {
	_, err := b.Load(ctx)
	return err
}

// Create opens a campaign and reloads the board.
func (b *Board) Create(ctx context.Context, req CreateCampaignRequest) (*Campaign, error) {
	c, err := b.api.CreateCampaign(ctx, req)
	if err != nil {
		return nil, err
	}
	if _, err := b.Load(ctx); err != nil {
		return c, err
	}
	return c, nil
}

// Delete asks for confirmation, deletes the campaign and reloads the board.
// A declined confirmation returns ErrDeleteCancelled without a request.
func (b *Board) Delete(ctx context.Context, id string) error {
	target := b.find(id)
	if target == nil {
		target = &Campaign{ID: id}
	}
	if !b.confirm(target) {
		return ErrDeleteCancelled
	}
	if err := b.api.DeleteCampaign(ctx, id); err != nil {
		return err
	}
	_, err := b.Load(ctx)
	return err
}

func (b *Board) find(id string) *Campaign {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.state == nil {
		return nil
	}
	for _, c := range b.state.Campaigns {
		if c.ID == id {
			return c
		}
	}
	return nil
}
