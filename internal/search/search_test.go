package search

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buymeabook/buymeabook-server/internal/domain"
)

func setupTestIndex(t *testing.T) *ProfileIndex {
	t.Helper()
	idx, err := NewProfileIndex(Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func profile(handle, name string) *domain.Profile {
	return &domain.Profile{Username: handle, UID: "sub-" + handle, DisplayName: name, CreatedAt: time.Now()}
}

func indexAll(t *testing.T, idx *ProfileIndex, ps ...*domain.Profile) {
	t.Helper()
	for _, p := range ps {
		require.NoError(t, idx.IndexProfile(context.Background(), p))
	}
}

func TestExplore_AllByDisplayName(t *testing.T) {
	idx := setupTestIndex(t)
	indexAll(t, idx,
		profile("gracehopper", "Grace Hopper"),
		profile("adalovelace", "Ada Lovelace"),
		profile("hedy", "Hedy Lamarr"),
	)

	res, err := idx.Explore(context.Background(), ExploreRequest{})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), res.Total)
	assert.Equal(t, []string{"adalovelace", "gracehopper", "hedy"}, res.Handles)

	res, err = idx.Explore(context.Background(), ExploreRequest{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"gracehopper"}, res.Handles)
}

func TestExplore_HandlePrefix(t *testing.T) {
	idx := setupTestIndex(t)
	indexAll(t, idx,
		profile("adalovelace", "Ada Lovelace"),
		profile("adalovelace4821", "Ada Lovelace"),
		profile("adam", "Adam Smith"),
		profile("grace", "Grace Hopper"),
	)

	res, err := idx.Explore(context.Background(), ExploreRequest{Query: "AdaL"})
	require.NoError(t, err)
	assert.Equal(t, []string{"adalovelace", "adalovelace4821"}, res.Handles)

	res, err = idx.Explore(context.Background(), ExploreRequest{Query: "zzz"})
	require.NoError(t, err)
	assert.Empty(t, res.Handles)
}

func TestIndexProfile_ReplacesDocument(t *testing.T) {
	idx := setupTestIndex(t)
	p := profile("ada", "Ada")
	indexAll(t, idx, p)
	p.Description = "updated"
	indexAll(t, idx, p)

	n, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
}

func TestNewProfileIndex_OnDisk(t *testing.T) {
	dir, err := os.MkdirTemp("", "search-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	idx, err := NewProfileIndex(Options{DataPath: dir})
	require.NoError(t, err)
	assert.True(t, idx.NeedsRebuild(), "fresh index must be filled")
	indexAll(t, idx, profile("ada", "Ada"))
	require.NoError(t, idx.Close())

	idx, err = NewProfileIndex(Options{DataPath: dir})
	require.NoError(t, err)
	defer idx.Close()
	assert.False(t, idx.NeedsRebuild())
	n, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
}
