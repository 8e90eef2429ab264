// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render produces the final HTML document from the slide list and the
// image catalog.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	ghtml "github.com/yuin/goldmark/renderer/html"

	"github.com/pdiddy/slide-engine/pkg/types"
)

// ErrRender wraps template parse and execution failures.
var ErrRender = errors.New("template rendering failed")

// markdown converts slide bodies. Hard wraps keep the model's short speak
// lines as separate lines in the rendered slide.
var markdown = goldmark.New(
	goldmark.WithRendererOptions(ghtml.WithHardWraps()),
)

// Data is the root object available to the deck template.
type Data struct {
	// Label is the run's display label (first non-empty prompt line).
	Label string

	// Slides is the generated slide list, in order.
	Slides []types.Slide

	// Catalog maps image ids to their extracted entries.
	Catalog map[string]types.CatalogEntry
}

// Deck renders templateText with the slide list and catalog and returns the
// complete HTML document. Two funcs are available to the template:
//
//	markdown  slide body → HTML (bold, bullets, line breaks)
//	image     catalog id → *CatalogEntry, nil when the id is unknown
//
// Unknown image_refs are therefore skipped by templates that guard the lookup;
// they never fail the render.
func Deck(templateText string, data Data) (string, error) {
	tmpl, err := template.New("deck").Funcs(funcMap(data.Catalog)).Parse(templateText)
	if err != nil {
		return "", fmt.Errorf("%w: parsing template: %v", ErrRender, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	return buf.String(), nil
}

func funcMap(catalog map[string]types.CatalogEntry) template.FuncMap {
	return template.FuncMap{
		"markdown": renderMarkdown,
		"image": func(id string) *types.CatalogEntry {
			if entry, ok := catalog[id]; ok {
				return &entry
			}
			return nil
		},
	}
}

// renderMarkdown converts a slide body to HTML via goldmark.
func renderMarkdown(body string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// UnresolvedRefs returns the image_refs ids, in first-seen order, that do not
// exist in the catalog. Callers report them as advisories; rendering proceeds
// regardless.
func UnresolvedRefs(slides []types.Slide, catalog map[string]types.CatalogEntry) []string {
	var missing []string
	seen := make(map[string]bool)
	for _, slide := range slides {
		for _, id := range slide.ImageRefs {
			if _, ok := catalog[id]; ok || seen[id] {
				continue
			}
			seen[id] = true
			missing = append(missing, id)
		}
	}
	return missing
}
