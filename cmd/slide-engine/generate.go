// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/slide-engine/internal/assets"
	"github.com/pdiddy/slide-engine/internal/genai"
	"github.com/pdiddy/slide-engine/internal/httputil"
	"github.com/pdiddy/slide-engine/internal/pipeline"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run the full pipeline: prompt + PDF in, HTML deck out",
	Long: `generate reads the instruction file, resolves and caches the reference PDF,
extracts its embedded images, asks the generation model for slide content
constrained to a JSON schema, and renders the result through the deck
template. The run is one-shot: any failed stage stops it with a non-zero
exit, and a failed generation never overwrites a previous deck.`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().String("prompt", "prompt.txt", "instruction file driving the deck")
	generateCmd.Flags().String("template", "slide_template.html", "HTML deck template")
	generateCmd.Flags().StringP("output", "o", "output.html", "rendered deck path")
	generateCmd.Flags().String("model", "", "generation model (default: gemini-2.5-flash)")
	generateCmd.Flags().Int("max-slides", 0, "cap on generated slides (default: 40)")
	generateCmd.Flags().Bool("without-pdf", false, "skip PDF resolution and image extraction")
	generateCmd.Flags().Duration("timeout", defaultTimeout, "generation request timeout")
	addAssetFlags(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig(cmd)

	if cfg.Generation.APIKey == "" {
		return fmt.Errorf("no API key configured: set GEMINI_API_KEY (or put one in .secrets/gemini-api-key)")
	}

	p := &pipeline.Pipeline{
		Config: cfg,
		Backend: &genai.GeminiBackend{
			APIKey: cfg.Generation.APIKey,
			Model:  cfg.Generation.Model,
			Client: httputil.NewClient(cfg.Generation.HTTPConfig),
		},
		Open: assets.OpenDocument,
		Out:  cmd.OutOrStdout(),
	}

	summary, err := p.Run(cmd.Context())
	if err != nil {
		describeFailure(cmd, err)
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d slides)\n", summary.OutputPath, summary.SlideCount)
	return nil
}

// describeFailure prints a hint for the failure classes users hit most often.
func describeFailure(cmd *cobra.Command, err error) {
	w := cmd.ErrOrStderr()
	switch {
	case errors.Is(err, assets.ErrPDFNotFound):
		fmt.Fprintln(w, "hint: pass --pdf, set SOURCE_PDF_PATH, or rerun with --without-pdf")
	case errors.Is(err, genai.ErrTransport):
		fmt.Fprintln(w, "hint: check the API key and network connectivity; the request is not retried")
	case errors.Is(err, genai.ErrInvalidResponse), errors.Is(err, genai.ErrEmptyResponse):
		fmt.Fprintln(w, "hint: the model response was unusable; rerun, or adjust the prompt")
	}
}
