// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assets resolves the reference PDF and extracts its embedded images.
package assets

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/slide-engine/pkg/types"
)

// ErrPDFNotFound reports that no candidate path resolved to a regular file.
var ErrPDFNotFound = errors.New("reference PDF not found")

// Candidates returns the ordered, deduplicated list of paths considered as
// the reference PDF. Priority: the cache path itself, the override path, then
// the configured fallback paths. Paths are deduplicated by resolved absolute
// path; a leading "~/" is expanded.
func Candidates(cfg types.AssetConfig) []string {
	seen := make(map[string]bool)
	var out []string

	add := func(path string) {
		if path == "" {
			return
		}
		path = expandUser(path)
		abs, err := filepath.Abs(path)
		if err != nil {
			return
		}
		if seen[abs] {
			return
		}
		seen[abs] = true
		out = append(out, path)
	}

	add(cfg.CachePDF)
	add(cfg.OverridePath)
	for _, p := range cfg.FallbackPaths {
		add(p)
	}
	return out
}

// EnsurePDF returns the cache path to the reference PDF, copying the first
// matching candidate's bytes into the cache when the match is not already the
// cache file. The cache directory is created if absent. Candidates that exist
// but are not regular files are skipped with a warning; they are not an error
// unless nothing else matches.
func EnsurePDF(cfg types.AssetConfig, w io.Writer) (string, error) {
	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		return "", fmt.Errorf("creating cache directory %s: %w", cfg.CacheDir, err)
	}

	for _, candidate := range Candidates(cfg) {
		info, err := os.Stat(candidate)
		if err != nil {
			continue
		}
		if !info.Mode().IsRegular() {
			fmt.Fprintf(w, "warning: %s exists but is not a regular file, skipping\n", candidate)
			continue
		}
		if samePath(candidate, cfg.CachePDF) {
			fmt.Fprintf(w, "using cached PDF %s\n", cfg.CachePDF)
			return cfg.CachePDF, nil
		}
		if err := copyFile(candidate, cfg.CachePDF); err != nil {
			return "", fmt.Errorf("caching %s: %w", candidate, err)
		}
		fmt.Fprintf(w, "using PDF %s (cached as %s)\n", candidate, cfg.CachePDF)
		return cfg.CachePDF, nil
	}

	return "", fmt.Errorf("%w: place a PDF at %s or set SOURCE_PDF_PATH", ErrPDFNotFound, cfg.CachePDF)
}

// expandUser resolves a leading "~/" against the current user's home directory.
func expandUser(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

// samePath reports whether two paths resolve to the same absolute location.
func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// copyFile copies src's bytes to dst via a temp file and rename, so a failed
// copy never leaves a truncated dst behind. The cache path is the top-priority
// candidate on the next run, so a partial file there would be used silently.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
