// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the slide generation stages in order: locate the
// reference PDF, extract its images, compose the prompt, call the generation
// service, validate the response, and render the deck. One run, fully
// sequential, no retries.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/slide-engine/internal/assets"
	"github.com/pdiddy/slide-engine/internal/catalog"
	"github.com/pdiddy/slide-engine/internal/compose"
	"github.com/pdiddy/slide-engine/internal/genai"
	"github.com/pdiddy/slide-engine/internal/render"
	"github.com/pdiddy/slide-engine/pkg/types"
)

// Pipeline wires the stages of one deck run. Collaborators are injected so
// tests run without network, MuPDF, or a real project layout.
type Pipeline struct {
	Config  types.PipelineConfig
	Backend genai.Backend
	Open    assets.OpenFunc
	Out     io.Writer
}

// Summary reports the outcome of a successful run.
type Summary struct {
	Label      string
	SlideCount int
	ImageCount int
	OutputPath string
}

// Run executes the pipeline end to end. Every fatal condition is returned as
// an error; the caller maps it to a user-facing message and a non-zero exit.
// The deck template is read only after generation succeeds, so a bad response
// never leaves a stale or partial output file behind.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	w := p.Out
	if w == nil {
		w = io.Discard
	}

	instructions, label, err := readPrompt(p.Config.PromptPath)
	if err != nil {
		return Summary{}, err
	}

	imageCatalog := map[string]types.CatalogEntry{}
	if p.Config.WithoutPDF {
		fmt.Fprintln(w, "running without a reference PDF")
	} else {
		pdfPath, err := assets.EnsurePDF(p.Config.Assets, w)
		if err != nil {
			return Summary{}, err
		}
		imageCatalog, err = assets.ExtractImages(pdfPath, p.Config.Extraction, p.Open, w)
		if err != nil {
			return Summary{}, err
		}
		p.persistCatalog(ctx, imageCatalog, w)
	}

	prompt, err := compose.Build(instructions, imageCatalog, p.Config.Generation.MaxSlides)
	if err != nil {
		return Summary{}, err
	}

	fmt.Fprintf(w, "generating slide content (model %s, theme %q)\n", p.Config.Generation.Model, label)

	raw, err := p.Backend.Generate(ctx, prompt)
	if err != nil {
		return Summary{}, err
	}

	slides, err := genai.ParseSlides(raw)
	if err != nil {
		if errors.Is(err, genai.ErrInvalidResponse) {
			fmt.Fprintf(w, "raw response for debugging:\n%s\n", raw)
		}
		return Summary{}, err
	}

	for _, id := range render.UnresolvedRefs(slides, imageCatalog) {
		fmt.Fprintf(w, "warning: slides reference unknown image id %q\n", id)
	}

	templateText, err := os.ReadFile(p.Config.Render.TemplatePath)
	if err != nil {
		return Summary{}, fmt.Errorf("reading template %s: %w", p.Config.Render.TemplatePath, err)
	}

	html, err := render.Deck(string(templateText), render.Data{
		Label:   label,
		Slides:  slides,
		Catalog: imageCatalog,
	})
	if err != nil {
		return Summary{}, err
	}

	if err := os.WriteFile(p.Config.Render.OutputPath, []byte(html), 0o644); err != nil {
		return Summary{}, fmt.Errorf("writing %s: %w", p.Config.Render.OutputPath, err)
	}

	if err := p.writeManifest(label, slides, imageCatalog); err != nil {
		fmt.Fprintf(w, "warning: manifest: %v\n", err)
	}

	return Summary{
		Label:      label,
		SlideCount: len(slides),
		ImageCount: len(imageCatalog),
		OutputPath: p.Config.Render.OutputPath,
	}, nil
}

// readPrompt loads the instruction file. The first non-empty line becomes the
// run's display label. A missing or blank file is fatal.
func readPrompt(path string) (instructions, label string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("reading prompt %s: %w", path, err)
	}

	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", "", fmt.Errorf("prompt file %s is empty", path)
	}
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			label = trimmed
			break
		}
	}
	return text, label, nil
}

// persistCatalog mirrors the in-memory catalog into the SQLite index. Index
// failures are advisory; the run continues on the in-memory mapping.
func (p *Pipeline) persistCatalog(ctx context.Context, entries map[string]types.CatalogEntry, w io.Writer) {
	if len(entries) == 0 {
		return
	}
	store, err := catalog.NewStore(p.Config.Catalog)
	if err != nil {
		fmt.Fprintf(w, "warning: catalog index: %v\n", err)
		return
	}
	defer store.Close()
	if err := store.Replace(ctx, entries); err != nil {
		fmt.Fprintf(w, "warning: catalog index: %v\n", err)
	}
}

// manifest is the YAML run summary written next to the cache after a
// successful render.
type manifest struct {
	Label       string          `yaml:"label"`
	Model       string          `yaml:"model"`
	GeneratedAt time.Time       `yaml:"generated_at"`
	SlideCount  int             `yaml:"slide_count"`
	Titles      []string        `yaml:"titles"`
	Images      []manifestImage `yaml:"images,omitempty"`
}

type manifestImage struct {
	ID                 string `yaml:"id"`
	types.CatalogEntry `yaml:",inline"`
}

func (p *Pipeline) writeManifest(label string, slides []types.Slide, entries map[string]types.CatalogEntry) error {
	if p.Config.ManifestPath == "" {
		return nil
	}

	m := manifest{
		Label:       label,
		Model:       p.Config.Generation.Model,
		GeneratedAt: time.Now().UTC(),
		SlideCount:  len(slides),
	}
	for _, s := range slides {
		m.Titles = append(m.Titles, s.Title)
	}
	for _, id := range sortedIDs(entries) {
		m.Images = append(m.Images, manifestImage{ID: id, CatalogEntry: entries[id]})
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return os.WriteFile(p.Config.ManifestPath, data, 0o644)
}

func sortedIDs(entries map[string]types.CatalogEntry) []string {
	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	// Ids are fixed-width, so plain string sort restores extraction order.
	sort.Strings(ids)
	return ids
}
