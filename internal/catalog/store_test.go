// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/slide-engine/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(types.CatalogConfig{IndexDir: filepath.Join(t.TempDir(), "index")})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testEntries() map[string]types.CatalogEntry {
	return map[string]types.CatalogEntry{
		"page-001-image-01": {
			Path:    "resources/images/page-001-image-01.png",
			Page:    1,
			Width:   640,
			Height:  480,
			Context: "architecture of the ingestion system",
		},
		"page-002-image-01": {
			Path:    "resources/images/page-002-image-01.png",
			Page:    2,
			Width:   320,
			Height:  240,
			Context: "benchmark results over time",
		},
	}
}

func TestReplaceAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Replace(ctx, testEntries()))

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "page-001-image-01", records[0].ID)
	assert.Equal(t, 1, records[0].Page)
	assert.Equal(t, 640, records[0].Width)
	assert.Equal(t, "page-002-image-01", records[1].ID)
}

func TestReplaceClearsPreviousRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Replace(ctx, testEntries()))
	require.NoError(t, store.Replace(ctx, map[string]types.CatalogEntry{
		"page-005-image-01": {Path: "p.png", Page: 5, Context: "a lone figure"},
	}))

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "page-005-image-01", records[0].ID)
}

func TestSearchMatchesContext(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Replace(ctx, testEntries()))

	records, err := store.Search(ctx, "benchmark")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "page-002-image-01", records[0].ID)

	records, err = store.Search(ctx, "nonexistentterm")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSearchReflectsReplace(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Replace(ctx, testEntries()))

	// The FTS triggers must drop the old rows with the delete.
	require.NoError(t, store.Replace(ctx, map[string]types.CatalogEntry{}))

	records, err := store.Search(ctx, "benchmark")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestListEmptyStore(t *testing.T) {
	store := newTestStore(t)

	records, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestNewStoreReopensExisting(t *testing.T) {
	indexDir := filepath.Join(t.TempDir(), "index")
	cfg := types.CatalogConfig{IndexDir: indexDir}
	ctx := context.Background()

	store, err := NewStore(cfg)
	require.NoError(t, err)
	require.NoError(t, store.Replace(ctx, testEntries()))
	require.NoError(t, store.Close())

	reopened, err := NewStore(cfg)
	require.NoError(t, err)
	defer reopened.Close()

	records, err := reopened.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
