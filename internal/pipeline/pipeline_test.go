// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/slide-engine/internal/assets"
	"github.com/pdiddy/slide-engine/internal/genai"
	"github.com/pdiddy/slide-engine/pkg/types"
)

// mockBackend returns a canned response and records the prompt it was given.
type mockBackend struct {
	response string
	err      error
	prompt   string
	calls    int
}

func (m *mockBackend) Generate(ctx context.Context, prompt string) (string, error) {
	m.calls++
	m.prompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

// fakeDoc provides one page with one image for full-pipeline tests.
type fakeDoc struct{}

func (fakeDoc) NumPages() int                { return 1 }
func (fakeDoc) PageText(int) (string, error) { return "page one discusses the design", nil }
func (fakeDoc) Close() error                 { return nil }

func (fakeDoc) PageImages(int) ([]assets.PageImage, error) {
	return []assets.PageImage{
		{Width: 8, Height: 8, Image: image.NewGray(image.Rect(0, 0, 8, 8))},
	}, nil
}

const testTemplate = `<html><title>{{.Label}}</title>
{{range .Slides}}<section><h2>{{.Title}}</h2>{{markdown .Body}}</section>
{{end}}</html>`

// newTestPipeline lays out a full project in a temp dir: prompt, template,
// cache layout, mock backend. Callers tweak the returned pipeline as needed.
func newTestPipeline(t *testing.T, backend genai.Backend) (*Pipeline, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()

	promptPath := filepath.Join(dir, "prompt.txt")
	require.NoError(t, os.WriteFile(promptPath, []byte("Solar Power Deck\n\nExplain solar power.\n"), 0o644))

	templatePath := filepath.Join(dir, "template.html")
	require.NoError(t, os.WriteFile(templatePath, []byte(testTemplate), 0o644))

	cacheDir := filepath.Join(dir, "resources")
	var out bytes.Buffer

	return &Pipeline{
		Config: types.PipelineConfig{
			PromptPath:   promptPath,
			WithoutPDF:   true,
			ManifestPath: filepath.Join(cacheDir, "manifest.yaml"),
			Assets: types.AssetConfig{
				CacheDir: cacheDir,
				CachePDF: filepath.Join(cacheDir, "source.pdf"),
			},
			Extraction: types.ExtractionConfig{
				ImageDir: filepath.Join(cacheDir, "images"),
			},
			Generation: types.GenerationConfig{
				AIConfig: types.AIConfig{Model: "test-model"},
			},
			Catalog: types.CatalogConfig{
				IndexDir: filepath.Join(cacheDir, "index"),
			},
			Render: types.RenderConfig{
				TemplatePath: templatePath,
				OutputPath:   filepath.Join(dir, "output.html"),
			},
		},
		Backend: backend,
		Out:     &out,
	}, &out
}

func TestRunHappyPathWithoutPDF(t *testing.T) {
	backend := &mockBackend{response: `[
		{"title": "What is Solar", "body": "**Photovoltaics** turn light into power."},
		{"title": "Economics", "body": "- falling panel cost\n- grid parity"}
	]`}
	p, out := newTestPipeline(t, backend)

	summary, err := p.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, backend.calls)
	assert.Equal(t, "Solar Power Deck", summary.Label)
	assert.Equal(t, 2, summary.SlideCount)
	assert.Equal(t, 0, summary.ImageCount)

	html, err := os.ReadFile(summary.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<title>Solar Power Deck</title>")
	assert.Contains(t, string(html), "<h2>What is Solar</h2>")
	assert.Contains(t, string(html), "<strong>Photovoltaics</strong>")

	assert.Contains(t, backend.prompt, "Explain solar power.")
	assert.Contains(t, backend.prompt, "no images were extracted")
	assert.Contains(t, out.String(), "running without a reference PDF")
}

func TestRunWithPDFCatalogInPrompt(t *testing.T) {
	backend := &mockBackend{response: `[{"title": "t", "body": "b", "image_refs": ["page-001-image-01"]}]`}
	p, _ := newTestPipeline(t, backend)
	p.Config.WithoutPDF = false
	p.Open = func(string) (assets.Document, error) { return fakeDoc{}, nil }

	// Seed the cache so EnsurePDF resolves without touching the network.
	require.NoError(t, os.MkdirAll(p.Config.Assets.CacheDir, 0o755))
	require.NoError(t, os.WriteFile(p.Config.Assets.CachePDF, []byte("%PDF"), 0o644))

	summary, err := p.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.ImageCount)
	assert.Contains(t, backend.prompt, "- ID: page-001-image-01")
	assert.Contains(t, backend.prompt, "page one discusses the design")

	// The extracted PNG and the index both land under the cache.
	assert.FileExists(t, filepath.Join(p.Config.Extraction.ImageDir, "page-001-image-01.png"))
	assert.FileExists(t, filepath.Join(p.Config.Catalog.IndexDir, "catalog.db"))
}

func TestRunInvalidResponseEchoesRaw(t *testing.T) {
	backend := &mockBackend{response: "sorry, not json"}
	p, out := newTestPipeline(t, backend)

	_, err := p.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, genai.ErrInvalidResponse)
	assert.Contains(t, out.String(), "sorry, not json")
	assert.NoFileExists(t, p.Config.Render.OutputPath)
}

func TestRunEmptyResponseFails(t *testing.T) {
	backend := &mockBackend{response: "[]"}
	p, _ := newTestPipeline(t, backend)

	_, err := p.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, genai.ErrEmptyResponse)
	assert.NoFileExists(t, p.Config.Render.OutputPath)
}

func TestRunBackendFailureStopsRun(t *testing.T) {
	backend := &mockBackend{err: genai.ErrTransport}
	p, _ := newTestPipeline(t, backend)

	_, err := p.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, genai.ErrTransport)
	assert.NoFileExists(t, p.Config.Render.OutputPath)
}

func TestRunMissingPromptFails(t *testing.T) {
	backend := &mockBackend{response: `[{"title":"t","body":"b"}]`}
	p, _ := newTestPipeline(t, backend)
	p.Config.PromptPath = filepath.Join(t.TempDir(), "nope.txt")

	_, err := p.Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, 0, backend.calls)
}

func TestRunEmptyPromptFails(t *testing.T) {
	backend := &mockBackend{response: `[{"title":"t","body":"b"}]`}
	p, _ := newTestPipeline(t, backend)
	require.NoError(t, os.WriteFile(p.Config.PromptPath, []byte("  \n\t\n"), 0o644))

	_, err := p.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
	assert.Equal(t, 0, backend.calls)
}

func TestRunMissingTemplateFailsAfterGeneration(t *testing.T) {
	backend := &mockBackend{response: `[{"title":"t","body":"b"}]`}
	p, _ := newTestPipeline(t, backend)
	p.Config.Render.TemplatePath = filepath.Join(t.TempDir(), "nope.html")

	_, err := p.Run(context.Background())

	require.Error(t, err)
	// Generation ran; the template read happens after a valid response.
	assert.Equal(t, 1, backend.calls)
	assert.NoFileExists(t, p.Config.Render.OutputPath)
}

func TestRunMissingPDFFails(t *testing.T) {
	backend := &mockBackend{response: `[{"title":"t","body":"b"}]`}
	p, _ := newTestPipeline(t, backend)
	p.Config.WithoutPDF = false

	_, err := p.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, assets.ErrPDFNotFound)
	assert.Equal(t, 0, backend.calls)
}

func TestRunWarnsOnUnresolvedRefs(t *testing.T) {
	backend := &mockBackend{response: `[{"title":"t","body":"b","image_refs":["page-099-image-01"]}]`}
	p, out := newTestPipeline(t, backend)

	_, err := p.Run(context.Background())

	require.NoError(t, err)
	assert.Contains(t, out.String(), `unknown image id "page-099-image-01"`)
}

func TestRunWritesManifest(t *testing.T) {
	backend := &mockBackend{response: `[{"title":"First","body":"b"},{"title":"Second","body":"b"}]`}
	p, _ := newTestPipeline(t, backend)
	require.NoError(t, os.MkdirAll(p.Config.Assets.CacheDir, 0o755))

	_, err := p.Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(p.Config.ManifestPath)
	require.NoError(t, err)

	var m struct {
		Label      string   `yaml:"label"`
		Model      string   `yaml:"model"`
		SlideCount int      `yaml:"slide_count"`
		Titles     []string `yaml:"titles"`
	}
	require.NoError(t, yaml.Unmarshal(data, &m))
	assert.Equal(t, "Solar Power Deck", m.Label)
	assert.Equal(t, "test-model", m.Model)
	assert.Equal(t, 2, m.SlideCount)
	assert.Equal(t, []string{"First", "Second"}, m.Titles)
}

func TestRunManifestFailureIsAdvisory(t *testing.T) {
	backend := &mockBackend{response: `[{"title":"t","body":"b"}]`}
	p, out := newTestPipeline(t, backend)
	p.Config.ManifestPath = filepath.Join(t.TempDir(), "missing-dir", "manifest.yaml")

	summary, err := p.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.SlideCount)
	assert.Contains(t, out.String(), "warning: manifest")
}

func TestReadPromptLabel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n\n  My Deck Title  \nmore text\n"), 0o644))

	text, label, err := readPrompt(path)

	require.NoError(t, err)
	assert.Equal(t, "My Deck Title", label)
	assert.Contains(t, text, "more text")
}

func TestRunBackendErrorWrapping(t *testing.T) {
	wrapped := errors.New("connection reset")
	backend := &mockBackend{err: wrapped}
	p, _ := newTestPipeline(t, backend)

	_, err := p.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, wrapped)
}
