package handle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buymeabook/buymeabook-server/internal/domain"
	"github.com/buymeabook/buymeabook-server/internal/store"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	dir, err := os.MkdirTemp("", "handle-test-*")
	require.NoError(t, err)
	s, err := store.New(filepath.Join(dir, "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
		_ = os.RemoveAll(dir)
	})
	return s
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Ada Lovelace", "adalovelace"},
		{"  Grace\tMurray  Hopper ", "gracemurrayhopper"},
		{"José Ñúñez", "josenunez"},
		{"O'Brien & Sons", "obriensons"},
		{"first.last_name-x", "first.last_name-x"},
		{"李小龙", Fallback},
		{"", Fallback},
		{"!!!", Fallback},
		{"A Very Long Display Name That Keeps Going And Going", "averylongdisplaynamethatkeepsgoi"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestSuffix(t *testing.T) {
	assert.Equal(t, "1234", Suffix(time.UnixMilli(1_700_000_001_234)))
	assert.Equal(t, "0007", Suffix(time.UnixMilli(1_700_000_000_007)))
}

func identity(sub, name string) domain.Identity {
	return domain.Identity{Subject: sub, Email: sub + "@example.com", DisplayName: name}
}

func TestAllocate_FreshHandle(t *testing.T) {
	s := setupTestStore(t)
	a := NewAllocator(s)

	p, created, err := a.Allocate(context.Background(), identity("sub-1", "Ada Lovelace"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "adalovelace", p.Username)
	assert.Equal(t, domain.DefaultDescription, p.Description)

	linked, err := s.GetProfileByIdentity(context.Background(), "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "adalovelace", linked.Username)
}

func TestAllocate_CollisionAppendsDigits(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, _, err := NewAllocator(s).Allocate(ctx, identity("sub-1", "Ada Lovelace"))
	require.NoError(t, err)

	p, created, err := NewAllocator(s).Allocate(ctx, identity("sub-2", "Ada Lovelace"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Regexp(t, `^adalovelace\d{4}$`, p.Username)

	clock := func() time.Time { return time.UnixMilli(1_700_000_004_821) }
	p, _, err = NewAllocator(s, WithClock(clock)).Allocate(ctx, identity("sub-3", "Ada Lovelace"))
	require.NoError(t, err)
	if p.Username != "adalovelace4821" {
		// sub-2 may have drawn 4821 itself; then a random retry is taken.
		assert.Regexp(t, `^adalovelace\d{4}$`, p.Username)
	}
}

func TestAllocate_ReservedWordGetsSuffix(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	clock := func() time.Time { return time.UnixMilli(1_700_000_000_042) }

	p, created, err := NewAllocator(s, WithClock(clock)).Allocate(ctx, identity("sub-1", "Explore"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "explore0042", p.Username)

	exists, err := s.HandleExists(ctx, "explore")
	require.NoError(t, err)
	assert.False(t, exists)

	p, _, err = NewAllocator(s, WithClock(clock)).Allocate(ctx, identity("sub-2", ".."))
	require.NoError(t, err)
	assert.Equal(t, "..0042", p.Username)
}

func TestAllocate_FrozenClockStillFindsHandle(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	clock := func() time.Time { return time.UnixMilli(1_700_000_000_001) }
	a := NewAllocator(s, WithClock(clock), WithMaxAttempts(10))

	seen := map[string]bool{}
	for i := range 3 {
		p, _, err := a.Allocate(ctx, identity(fmt.Sprintf("sub-%d", i), "Ada"))
		require.NoError(t, err)
		assert.False(t, seen[p.Username], "duplicate handle %s", p.Username)
		seen[p.Username] = true
	}
	assert.True(t, seen["ada"])
	assert.True(t, seen["ada0001"])
}

// racingStore reports a handle as free but loses the write.
type racingStore struct {
	profile  *domain.Profile
	failWith error
	creates  int
}

func (r *racingStore) HandleExists(context.Context, string) (bool, error) { return false, nil }

func (r *racingStore) CreateProfile(_ context.Context, p *domain.Profile) error {
	r.creates++
	return r.failWith
}

func (r *racingStore) GetProfileByIdentity(context.Context, string) (*domain.Profile, error) {
	return r.profile, nil
}

func TestAllocate_ConcurrentSignInReturnsLinkedProfile(t *testing.T) {
	existing := &domain.Profile{Username: "adalovelace", UID: "sub-1"}
	rs := &racingStore{profile: existing, failWith: store.ErrIdentityLinked}

	p, created, err := NewAllocator(rs).Allocate(context.Background(), identity("sub-1", "Ada Lovelace"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, existing, p)
}

func TestAllocate_Exhausted(t *testing.T) {
	rs := &racingStore{failWith: store.ErrHandleTaken}

	_, _, err := NewAllocator(rs, WithMaxAttempts(3)).Allocate(context.Background(), identity("sub-1", "Ada"))
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 3, rs.creates)
}
