package main

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/slide-engine/pkg/types"
)

// addAssetFlags registers the flags shared by every command that resolves the
// reference PDF.
func addAssetFlags(cmd *cobra.Command) {
	cmd.Flags().String("cache-dir", "resources", "resource cache directory")
	cmd.Flags().String("pdf", "", "explicit reference PDF path (overrides SOURCE_PDF_PATH)")
	cmd.Flags().StringSlice("pdf-fallback", nil, "additional candidate PDF locations, tried in order")
}

// assetConfig assembles the locator configuration from flags, environment,
// and the optional config file.
func assetConfig(cmd *cobra.Command) types.AssetConfig {
	cacheDir, _ := cmd.Flags().GetString("cache-dir")

	override, _ := cmd.Flags().GetString("pdf")
	if override == "" {
		override = viper.GetString("source_pdf")
	}

	fallbacks, _ := cmd.Flags().GetStringSlice("pdf-fallback")
	if len(fallbacks) == 0 {
		fallbacks = viper.GetStringSlice("assets.fallback_paths")
	}
	if len(fallbacks) == 0 {
		fallbacks = []string{"reference.pdf", filepath.Join(cacheDir, "reference.pdf")}
	}

	return types.AssetConfig{
		CacheDir:      cacheDir,
		CachePDF:      filepath.Join(cacheDir, "source.pdf"),
		OverridePath:  override,
		FallbackPaths: fallbacks,
	}
}

// extractionConfig derives the image extraction settings from the cache layout.
func extractionConfig(assets types.AssetConfig) types.ExtractionConfig {
	return types.ExtractionConfig{
		ImageDir:     filepath.Join(assets.CacheDir, "images"),
		ExcerptLimit: viper.GetInt("extraction.excerpt_limit"),
	}
}

// catalogConfig derives the catalog index settings from the cache layout.
func catalogConfig(assets types.AssetConfig) types.CatalogConfig {
	return types.CatalogConfig{
		IndexDir: filepath.Join(assets.CacheDir, "index"),
	}
}

// pipelineConfig assembles the full run configuration for generate.
func pipelineConfig(cmd *cobra.Command) types.PipelineConfig {
	assets := assetConfig(cmd)

	promptPath, _ := cmd.Flags().GetString("prompt")
	templatePath, _ := cmd.Flags().GetString("template")
	outputPath, _ := cmd.Flags().GetString("output")
	model, _ := cmd.Flags().GetString("model")
	maxSlides, _ := cmd.Flags().GetInt("max-slides")
	withoutPDF, _ := cmd.Flags().GetBool("without-pdf")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	if model == "" {
		model = viper.GetString("generation.model")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return types.PipelineConfig{
		PromptPath:   promptPath,
		WithoutPDF:   withoutPDF,
		ManifestPath: filepath.Join(assets.CacheDir, "manifest.yaml"),
		Assets:       assets,
		Extraction:   extractionConfig(assets),
		Generation: types.GenerationConfig{
			AIConfig: types.AIConfig{
				Model:  model,
				APIKey: secretDefault("gemini-api-key", viper.GetString("api_key")),
			},
			HTTPConfig: types.HTTPConfig{
				Timeout:   timeout,
				UserAgent: "slide-engine/" + version,
			},
			MaxSlides: maxSlides,
		},
		Catalog: catalogConfig(assets),
		Render: types.RenderConfig{
			TemplatePath: templatePath,
			OutputPath:   outputPath,
		},
	}
}

// defaultTimeout for the generation call; the flag overrides it.
const defaultTimeout = 120 * time.Second
