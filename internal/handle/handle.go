// Package handle derives the unique, URL-safe handle a profile is
// addressed by.
package handle

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/buymeabook/buymeabook-server/internal/domain"
	"github.com/buymeabook/buymeabook-server/internal/store"
)

const (
	// Fallback is the base handle when a display name yields nothing usable.
	Fallback = "user"

	maxBaseLength      = 32
	defaultMaxAttempts = 5
)

// reserved handles collide with static routes under /users.
var reserved = map[string]bool{
	"explore": true,
	".":       true,
	"..":      true,
}

// Normalize reduces a display name to a handle base: accents folded, other
// non-ASCII dropped, lowercased, whitespace removed, and anything outside
// [a-z0-9._-] stripped.
func Normalize(displayName string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn))), displayName)
	if err != nil {
		folded = displayName
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
		if b.Len() >= maxBaseLength {
			break
		}
	}
	if b.Len() == 0 {
		return Fallback
	}
	return b.String()
}

// Suffix is the last four digits of t in Unix milliseconds.
func Suffix(t time.Time) string {
	return fmt.Sprintf("%04d", t.UnixMilli()%10000)
}

// Store is the profile storage the allocator writes through.
type Store interface {
	HandleExists(ctx context.Context, handle string) (bool, error)
	CreateProfile(ctx context.Context, p *domain.Profile) error
	GetProfileByIdentity(ctx context.Context, subject string) (*domain.Profile, error)
}

// Allocator creates the profile for an identity at its first sign-in.
type Allocator struct {
	store       Store
	now         func() time.Time
	maxAttempts int
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Allocator) { a.now = now }
}

// WithMaxAttempts bounds how many candidate handles are tried.
func WithMaxAttempts(n int) Option {
	return func(a *Allocator) {
		if n > 0 {
			a.maxAttempts = n
		}
	}
}

// NewAllocator returns an allocator writing to s.
func NewAllocator(s Store, opts ...Option) *Allocator {
	a := &Allocator{store: s, now: time.Now, maxAttempts: defaultMaxAttempts}
	for _, o := range opts {
		o(a)
	}
	return a
}

// ErrExhausted is returned when every candidate handle was taken.
var ErrExhausted = errors.New("no free handle found")

// Allocate creates id's profile under a fresh handle and reports whether it
// did. If a concurrent sign-in linked the identity first, that profile is
// returned with created=false.
func (a *Allocator) Allocate(ctx context.Context, id domain.Identity) (*domain.Profile, bool, error) {
	base := Normalize(id.DisplayName)

	candidate := base
	taken := reserved[base]
	if !taken {
		var err error
		if taken, err = a.store.HandleExists(ctx, base); err != nil {
			return nil, false, fmt.Errorf("check handle %s: %w", base, err)
		}
	}
	if taken {
		candidate = base + Suffix(a.now())
	}

	for attempt := range a.maxAttempts {
		p := domain.NewProfile(candidate, id, a.now().UTC())
		err := a.store.CreateProfile(ctx, p)
		switch {
		case err == nil:
			return p, true, nil
		case errors.Is(err, store.ErrIdentityLinked):
			existing, getErr := a.store.GetProfileByIdentity(ctx, id.Subject)
			if getErr != nil {
				return nil, false, fmt.Errorf("load linked profile: %w", getErr)
			}
			return existing, false, nil
		case errors.Is(err, store.ErrHandleTaken):
			// The clock may not have moved; later attempts draw random digits.
			if attempt == 0 && candidate == base {
				candidate = base + Suffix(a.now())
			} else {
				candidate = base + fmt.Sprintf("%04d", rand.IntN(10000))
			}
		default:
			return nil, false, err
		}
	}
	return nil, false, fmt.Errorf("%w for %q after %d attempts", ErrExhausted, base, a.maxAttempts)
}
