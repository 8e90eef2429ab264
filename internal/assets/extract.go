// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assets

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/slide-engine/pkg/types"
)

const (
	// defaultExcerptLimit bounds the per-page context excerpt in characters.
	defaultExcerptLimit = 240

	ellipsis = "…"
)

// ExtractImages opens the PDF at pdfPath, writes every embedded raster image
// to cfg.ImageDir as a PNG named "page-<3-digit page>-image-<2-digit index>",
// and returns the catalog keyed by that deterministic id. Fixed-width
// zero-padded numbering makes lexicographic id order equal extraction order.
//
// A nil open func, or an engine that cannot open the document, degrades to an
// empty catalog with an advisory on w; it is never an error. Per-page and
// per-image failures are reported as warnings and skipped.
func ExtractImages(pdfPath string, cfg types.ExtractionConfig, open OpenFunc, w io.Writer) (map[string]types.CatalogEntry, error) {
	catalog := make(map[string]types.CatalogEntry)

	if open == nil {
		fmt.Fprintln(w, "image extraction disabled: no PDF engine configured, continuing without figures")
		return catalog, nil
	}
	doc, err := open(pdfPath)
	if err != nil {
		fmt.Fprintf(w, "image extraction unavailable (%v), continuing without figures\n", err)
		return catalog, nil
	}
	defer doc.Close()

	if err := os.MkdirAll(cfg.ImageDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating image directory %s: %w", cfg.ImageDir, err)
	}

	limit := cfg.ExcerptLimit
	if limit <= 0 {
		limit = defaultExcerptLimit
	}

	for page := 1; page <= doc.NumPages(); page++ {
		text, err := doc.PageText(page)
		if err != nil {
			fmt.Fprintf(w, "warning: page %d text: %v\n", page, err)
			text = ""
		}
		excerpt := Excerpt(text, limit)

		images, err := doc.PageImages(page)
		if err != nil {
			// Decode failures are per-image; any siblings in the
			// listing are still usable.
			fmt.Fprintf(w, "warning: page %d images: %v\n", page, err)
		}

		for idx, img := range images {
			if img.Image == nil {
				continue
			}
			id := fmt.Sprintf("page-%03d-image-%02d", page, idx+1)
			path, err := writePNG(img.Image, filepath.Join(cfg.ImageDir, id+".png"))
			if err != nil {
				fmt.Fprintf(w, "warning: %s: %v\n", id, err)
				continue
			}
			catalog[id] = types.CatalogEntry{
				Path:    path,
				Page:    page,
				Width:   img.Width,
				Height:  img.Height,
				Context: excerpt,
			}
		}
	}

	if len(catalog) > 0 {
		fmt.Fprintf(w, "extracted %d image(s) from the reference PDF\n", len(catalog))
	} else {
		fmt.Fprintln(w, "no extractable images found in the reference PDF")
	}
	return catalog, nil
}

// writePNG saves img to path, flattening CMYK-like and alpha-bearing buffers
// to plain opaque RGB first. Returns the slash-separated path for HTML use.
func writePNG(img image.Image, path string) (string, error) {
	if needsRGB(img) {
		img = toRGB(img)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("encoding png: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return filepath.ToSlash(path), nil
}

// needsRGB reports whether the buffer is CMYK-like, paletted, or carries an
// alpha channel and must be converted before saving. Paletted buffers (GIFs,
// indexed PNGs) are always expanded: their palette may hold transparent
// entries, and the saved file must be plain truecolor either way.
func needsRGB(img image.Image) bool {
	switch img.ColorModel() {
	case color.CMYKModel,
		color.RGBAModel, color.RGBA64Model,
		color.NRGBAModel, color.NRGBA64Model,
		color.AlphaModel, color.Alpha16Model:
		return true
	}
	if _, ok := img.ColorModel().(color.Palette); ok {
		return true
	}
	if _, ok := img.(*image.NYCbCrA); ok {
		return true
	}
	return false
}

// toRGB flattens img onto an opaque white background and discards the alpha
// channel, so the encoded PNG carries three color channels and no alpha.
func toRGB(img image.Image) image.Image {
	bounds := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Over)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xFF
	}
	return out
}

// Excerpt collapses whitespace runs to single spaces, trims, and truncates the
// result to at most limit characters. Truncation happens on a word boundary
// where possible and appends a single ellipsis marker.
func Excerpt(text string, limit int) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	runes := []rune(collapsed)
	if len(runes) <= limit {
		return collapsed
	}

	cut := strings.TrimRight(string(runes[:limit-1]), " ")
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + ellipsis
}
