// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pdiddy/slide-engine/internal/assets"
	"github.com/pdiddy/slide-engine/internal/catalog"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract embedded images from the reference PDF into the cache",
	Long: `extract resolves the reference PDF, pulls every embedded image out as a
normalized RGB PNG under the image cache, records each image's page number
and surrounding page text, and persists the catalog to the SQLite index.`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	addAssetFlags(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	cfg := assetConfig(cmd)

	pdfPath, err := assets.EnsurePDF(cfg, out)
	if err != nil {
		return err
	}

	entries, err := assets.ExtractImages(pdfPath, extractionConfig(cfg), assets.OpenDocument, out)
	if err != nil {
		return err
	}

	if len(entries) > 0 {
		store, err := catalog.NewStore(catalogConfig(cfg))
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Replace(cmd.Context(), entries); err != nil {
			return err
		}
	}

	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		e := entries[id]
		fmt.Fprintf(out, "%s -> %s (page %d, %dx%d)\n", id, e.Path, e.Page, e.Width, e.Height)
	}
	fmt.Fprintf(out, "extracted %d images\n", len(entries))
	return nil
}
