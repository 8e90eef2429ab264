package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "slide-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for calls to the generative-language API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "gemini-2.5-flash").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// AssetConfig holds settings for locating and caching the reference PDF.
type AssetConfig struct {
	// CacheDir is the resource cache directory (default "resources").
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`

	// CachePDF is the cached copy of the reference PDF inside CacheDir
	// (default "resources/source.pdf"). It is also the highest-priority
	// candidate when resolving the PDF.
	CachePDF string `json:"cache_pdf" yaml:"cache_pdf"`

	// OverridePath is a user-supplied PDF location, normally sourced from
	// the SOURCE_PDF_PATH environment variable.
	OverridePath string `json:"override_path,omitempty" yaml:"override_path,omitempty"`

	// FallbackPaths is an ordered list of additional candidate locations
	// tried after the cache and the override.
	FallbackPaths []string `json:"fallback_paths,omitempty" yaml:"fallback_paths,omitempty"`
}

// ExtractionConfig holds settings for the image extraction stage.
type ExtractionConfig struct {
	// ImageDir is the directory extracted PNGs are written to
	// (default "resources/images").
	ImageDir string `json:"image_dir" yaml:"image_dir"`

	// ExcerptLimit caps the per-page context excerpt length in characters
	// (default 240).
	ExcerptLimit int `json:"excerpt_limit" yaml:"excerpt_limit"`
}

// GenerationConfig holds settings for the slide generation stage.
type GenerationConfig struct {
	AIConfig   `yaml:",inline"`
	HTTPConfig `yaml:",inline"`

	// MaxSlides caps the number of slides the model is asked to produce
	// (default 40).
	MaxSlides int `json:"max_slides" yaml:"max_slides"`
}

// CatalogConfig holds settings for the persisted image catalog index.
type CatalogConfig struct {
	// IndexDir is the directory holding the catalog database
	// (default "resources/index").
	IndexDir string `json:"index_dir" yaml:"index_dir"`
}

// RenderConfig holds settings for the rendering stage.
type RenderConfig struct {
	// TemplatePath is the deck template file (default "slide_template.html").
	TemplatePath string `json:"template_path" yaml:"template_path"`

	// OutputPath is the final HTML document, overwritten on every run
	// (default "output.html").
	OutputPath string `json:"output_path" yaml:"output_path"`
}

// PipelineConfig groups all stage configurations for one deck run.
type PipelineConfig struct {
	// PromptPath is the instruction file (default "prompt.txt"). Its first
	// non-empty line is used as the run's display label.
	PromptPath string `json:"prompt_path" yaml:"prompt_path"`

	// WithoutPDF skips PDF resolution and image extraction; the deck is
	// generated from the instructions alone.
	WithoutPDF bool `json:"without_pdf" yaml:"without_pdf"`

	// ManifestPath is the run summary written after a successful render.
	// Empty disables the manifest.
	ManifestPath string `json:"manifest_path,omitempty" yaml:"manifest_path,omitempty"`

	Assets     AssetConfig      `json:"assets" yaml:"assets"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Generation GenerationConfig `json:"generation" yaml:"generation"`
	Catalog    CatalogConfig    `json:"catalog" yaml:"catalog"`
	Render     RenderConfig     `json:"render" yaml:"render"`
}
