// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assets

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/slide-engine/pkg/types"
)

func testAssetConfig(t *testing.T) types.AssetConfig {
	t.Helper()
	cacheDir := filepath.Join(t.TempDir(), "resources")
	return types.AssetConfig{
		CacheDir: cacheDir,
		CachePDF: filepath.Join(cacheDir, "source.pdf"),
	}
}

func writeTestPDF(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 test"), 0o644))
}

func TestCandidatesOrderAndDedup(t *testing.T) {
	cfg := testAssetConfig(t)
	cfg.OverridePath = "override.pdf"
	cfg.FallbackPaths = []string{"fallback.pdf", "override.pdf", cfg.CachePDF}

	got := Candidates(cfg)

	require.Len(t, got, 3)
	assert.Equal(t, cfg.CachePDF, got[0])
	assert.Equal(t, "override.pdf", got[1])
	assert.Equal(t, "fallback.pdf", got[2])
}

func TestCandidatesSkipsEmptyPaths(t *testing.T) {
	cfg := types.AssetConfig{
		CachePDF:      "cache.pdf",
		FallbackPaths: []string{"", "a.pdf"},
	}

	got := Candidates(cfg)

	require.Len(t, got, 2)
	assert.Equal(t, []string{"cache.pdf", "a.pdf"}, got)
}

func TestEnsurePDFCopiesOverrideIntoCache(t *testing.T) {
	cfg := testAssetConfig(t)
	cfg.OverridePath = filepath.Join(t.TempDir(), "mine.pdf")
	writeTestPDF(t, cfg.OverridePath)

	var out bytes.Buffer
	path, err := EnsurePDF(cfg, &out)

	require.NoError(t, err)
	assert.Equal(t, cfg.CachePDF, path)

	data, err := os.ReadFile(cfg.CachePDF)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 test", string(data))
	assert.Contains(t, out.String(), cfg.OverridePath)
}

func TestEnsurePDFPrefersExistingCache(t *testing.T) {
	cfg := testAssetConfig(t)
	writeTestPDF(t, cfg.CachePDF)

	// An override also exists, but the cache copy wins.
	cfg.OverridePath = filepath.Join(t.TempDir(), "other.pdf")
	writeTestPDF(t, cfg.OverridePath)

	var out bytes.Buffer
	path, err := EnsurePDF(cfg, &out)

	require.NoError(t, err)
	assert.Equal(t, cfg.CachePDF, path)
	assert.Contains(t, out.String(), "using cached PDF")
}

func TestEnsurePDFSkipsDirectories(t *testing.T) {
	cfg := testAssetConfig(t)
	dir := t.TempDir()
	cfg.OverridePath = dir // exists, but not a regular file

	fallback := filepath.Join(t.TempDir(), "fallback.pdf")
	writeTestPDF(t, fallback)
	cfg.FallbackPaths = []string{fallback}

	var out bytes.Buffer
	path, err := EnsurePDF(cfg, &out)

	require.NoError(t, err)
	assert.Equal(t, cfg.CachePDF, path)
	assert.Contains(t, out.String(), "not a regular file")
}

func TestCopyFileFailureLeavesNoDestination(t *testing.T) {
	// Reading a directory fd fails mid-copy; the cache path must stay
	// absent so the next run does not pick up a truncated file.
	dstDir := t.TempDir()
	dst := filepath.Join(dstDir, "source.pdf")

	err := copyFile(t.TempDir(), dst)

	require.Error(t, err)
	assert.NoFileExists(t, dst)

	// No stray temp files either.
	entries, err := os.ReadDir(dstDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEnsurePDFNotFound(t *testing.T) {
	cfg := testAssetConfig(t)
	cfg.FallbackPaths = []string{filepath.Join(t.TempDir(), "missing.pdf")}

	var out bytes.Buffer
	_, err := EnsurePDF(cfg, &out)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPDFNotFound)
	assert.Contains(t, err.Error(), "SOURCE_PDF_PATH")
}
