// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compose builds the generation prompt from the user's instructions
// and the extracted image catalog.
package compose

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/pdiddy/slide-engine/pkg/types"
)

// defaultMaxSlides caps the deck size the model is asked for.
const defaultMaxSlides = 40

// promptTmpl is the full request sent to the generation service. It pins the
// output to a single JSON array of slide objects and spells out the body
// formatting rules the renderer relies on.
var promptTmpl = template.Must(template.New("deck").Parse(`[System]: You are a professional slide-deck architect focused on maximizing audience understanding. Avoid redundant information, propose diagrams where they help, and emphasize technical terms so the content stays dense but easy to follow.
[Task]: Based on the instructions below, consolidate the information and produce the content for an HTML slide deck.
[Output Format]:
- Respond with JSON only, structured as a single top-level JSON array.
- Every slide must be an object of the form {"title": "slide title", "body": "detailed content built from bullets or paragraphs"}.
    - Optimize each body for presentation delivery:
        1.  **Bold emphasis**: wrap important keywords and technical terms in double asterisks (e.g. ` + "`**energy efficiency**`" + `).
        2.  **Bullet lists**: whenever three or more parallel items appear, use "-" or "*" bullets grouped under short headings.
        3.  **Short speak lines**: keep each bullet a noun-plus-keyword phrase of at most 40 characters.
        4.  **Diagram suggestions**: when a slide explains a complex concept (system structure, comparison, flow), start the body with a short line proposing a concrete diagram.
        5.  **PDF figures**: to show an extracted figure, add "image_refs": ["<ID>", ...] and pick IDs from the catalog below.
    - Produce at most {{.MaxSlides}} slides in total.

[Supporting Assets]:
{{.Assets}}

[Instructions]: {{.Instructions}}
`))

// promptData is the template payload.
type promptData struct {
	Instructions string
	Assets       string
	MaxSlides    int
}

// Build renders the full generation prompt. It is deterministic: catalog
// lines are emitted in id order (which equals extraction order), and an empty
// catalog yields a placeholder line instead of a per-image list.
func Build(instructions string, catalog map[string]types.CatalogEntry, maxSlides int) (string, error) {
	if maxSlides <= 0 {
		maxSlides = defaultMaxSlides
	}

	var buf bytes.Buffer
	err := promptTmpl.Execute(&buf, promptData{
		Instructions: instructions,
		Assets:       assetSection(catalog),
		MaxSlides:    maxSlides,
	})
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return buf.String(), nil
}

// assetSection formats the image catalog for the prompt.
func assetSection(catalog map[string]types.CatalogEntry) string {
	if len(catalog) == 0 {
		return "[PDF Image Catalog]: no images were extracted from the reference PDF."
	}

	ids := make([]string, 0, len(catalog))
	for id := range catalog {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	b.WriteString("[PDF Image Catalog]:")
	for _, id := range ids {
		entry := catalog[id]
		context := entry.Context
		if context == "" {
			context = "no surrounding page text was available."
		}
		fmt.Fprintf(&b, "\n- ID: %s | page: %d | context: %s", id, entry.Page, context)
	}
	return b.String()
}
