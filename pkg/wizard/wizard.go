// Package wizard drives campaign creation through select-book, details,
// review and submitting. Nothing is written until the review is confirmed,
// and then exactly one create request is sent.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/buymeabook/buymeabook-server/pkg/client"
)

// State is a wizard step.
type State int

const (
	SelectBook State = iota
	Details
	Review
	Submitting
)

func (s State) String() string {
	switch s {
	case SelectBook:
		return "select-book"
	case Details:
		return "details"
	case Review:
		return "review"
	case Submitting:
		return "submitting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Event moves the wizard between states.
type Event int

const (
	EventSelectBook Event = iota
	EventSubmitDetails
	EventConfirm
	EventSucceeded
	EventFailed
	EventBack
	EventClose
)

func (e Event) String() string {
	switch e {
	case EventSelectBook:
		return "select-book"
	case EventSubmitDetails:
		return "submit-details"
	case EventConfirm:
		return "confirm"
	case EventSucceeded:
		return "succeeded"
	case EventFailed:
		return "failed"
	case EventBack:
		return "back"
	case EventClose:
		return "close"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// transitions is the complete table; anything missing is rejected.
var transitions = map[State]map[Event]State{
	SelectBook: {
		EventSelectBook: Details,
		EventClose:      SelectBook,
	},
	Details: {
		EventSubmitDetails: Review,
		EventBack:          SelectBook,
		EventClose:         SelectBook,
	},
	Review: {
		EventConfirm: Submitting,
		EventBack:    Details,
		EventClose:   SelectBook,
	},
	Submitting: {
		EventSucceeded: SelectBook,
		EventFailed:    Review,
	},
}

// TransitionError reports an event the current state does not accept.
type TransitionError struct {
	From  State
	Event Event
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("wizard: %s not allowed in %s", e.Event, e.From)
}

// ErrMissingDetails means the campaigner name or address is blank.
var ErrMissingDetails = errors.New("wizard: name and address are required")

// Submitter sends the create request.
type Submitter interface {
	CreateCampaign(ctx context.Context, req client.CreateCampaignRequest) (*client.Campaign, error)
}

// Locator resolves the user's current address. Best effort.
type Locator interface {
	Locate(ctx context.Context) (string, error)
}

// RefreshFunc is called after a successful submit, typically to reload the
// campaign listing.
type RefreshFunc func(ctx context.Context) error

// CampaignDetails are the fields collected in the details step.
type CampaignDetails struct {
	Title       string
	Description string
	Address     string
	Mobile      string
}

// Draft is the in-progress request.
type Draft struct {
	Book    *client.Book
	Details CampaignDetails
}

// Wizard is the creation state machine. Safe for concurrent use; a submit
// in progress rejects every other event.
type Wizard struct {
	submitter Submitter
	refresh   RefreshFunc
	locator   Locator

	mu    sync.Mutex
	state State
	draft Draft
}

// Option configures a Wizard.
type Option func(*Wizard)

// WithRefresh sets the callback run after a successful submit.
func WithRefresh(fn RefreshFunc) Option {
	return func(w *Wizard) { w.refresh = fn }
}

// WithLocator enables address auto-fill.
func WithLocator(l Locator) Option {
	return func(w *Wizard) { w.locator = l }
}

// New returns a wizard in the select-book state.
func New(submitter Submitter, opts ...Option) *Wizard {
	w := &Wizard{submitter: submitter, state: SelectBook}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// State is the current step.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Draft is a copy of the in-progress request.
func (w *Wizard) Draft() Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	d := w.draft
	if d.Book != nil {
		b := *d.Book
		d.Book = &b
	}
	return d
}

// fire applies ev under w.mu; the caller holds the lock.
func (w *Wizard) fire(ev Event) error {
	next, ok := transitions[w.state][ev]
	if !ok {
		return &TransitionError{From: w.state, Event: ev}
	}
	w.state = next
	return nil
}

// SelectBook attaches book and moves to details.
func (w *Wizard) SelectBook(book *client.Book) error {
	if book == nil {
		return errors.New("wizard: no book selected")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.fire(EventSelectBook); err != nil {
		return err
	}
	b := *book
	w.draft.Book = &b
	return nil
}

// SubmitDetails stores d and moves to review. A blank address falls back to
// the one found by LocateAddress. A blank name or address leaves the wizard
// in details.
func (w *Wizard) SubmitDetails(d CampaignDetails) error {
	d.Title = strings.TrimSpace(d.Title)
	d.Address = strings.TrimSpace(d.Address)
	d.Mobile = strings.TrimSpace(d.Mobile)

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := transitions[w.state][EventSubmitDetails]; !ok {
		return &TransitionError{From: w.state, Event: EventSubmitDetails}
	}
	if d.Address == "" {
		d.Address = w.draft.Details.Address
	}
	if d.Title == "" || d.Address == "" {
		return ErrMissingDetails
	}
	w.draft.Details = d
	return w.fire(EventSubmitDetails)
}

// LocateAddress asks the locator for an address and stores it in the
// draft. Only valid in details; a failure is returned and changes nothing.
func (w *Wizard) LocateAddress(ctx context.Context) (string, error) {
	if w.locator == nil {
		return "", errors.New("wizard: location unavailable")
	}
	if s := w.State(); s != Details {
		return "", &TransitionError{From: s, Event: EventSubmitDetails}
	}

	addr, err := w.locator.Locate(ctx)
	if err != nil {
		return "", fmt.Errorf("wizard: locate address: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != Details {
		return "", &TransitionError{From: w.state, Event: EventSubmitDetails}
	}
	w.draft.Details.Address = addr
	return addr, nil
}

// Back returns to the previous step keeping the draft.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fire(EventBack)
}

// Close discards the draft. Not allowed while submitting.
func (w *Wizard) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.fire(EventClose); err != nil {
		return err
	}
	w.draft = Draft{}
	return nil
}

// Confirm sends the create request. On success the wizard resets and the
// refresh callback runs; its error is returned alongside the created
// campaign. On failure the wizard goes back to review with the draft kept.
func (w *Wizard) Confirm(ctx context.Context) (*client.Campaign, error) {
	w.mu.Lock()
	if err := w.fire(EventConfirm); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	req := w.draft.request()
	w.mu.Unlock()

	created, err := w.submitter.CreateCampaign(ctx, req)

	w.mu.Lock()
	if err != nil {
		_ = w.fire(EventFailed)
		w.mu.Unlock()
		return nil, err
	}
	_ = w.fire(EventSucceeded)
	w.draft = Draft{}
	w.mu.Unlock()

	if w.refresh != nil {
		if err := w.refresh(ctx); err != nil {
			return created, fmt.Errorf("wizard: refresh after create: %w", err)
		}
	}
	return created, nil
}

func (d Draft) request() client.CreateCampaignRequest {
	req := client.CreateCampaignRequest{
		Title:       d.Details.Title,
		Description: d.Details.Description,
		Address:     d.Details.Address,
	}
	if d.Book != nil {
		req.Book = d.Book.Snapshot()
	}
	if d.Details.Mobile != "" {
		m := d.Details.Mobile
		req.Mobile = &m
	}
	return req
}
