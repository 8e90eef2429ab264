// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/slide-engine/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Query the persisted image catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all cataloged images in extraction order",
	RunE:  runCatalogList,
}

var catalogSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over the page-context excerpts",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogSearch,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogSearchCmd)

	catalogCmd.PersistentFlags().Bool("json", false, "emit records as JSON")
	for _, sub := range []*cobra.Command{catalogListCmd, catalogSearchCmd} {
		addAssetFlags(sub)
	}
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	store, err := catalog.NewStore(catalogConfig(assetConfig(cmd)))
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(cmd.Context())
	if err != nil {
		return err
	}
	return printRecords(cmd, records)
}

func runCatalogSearch(cmd *cobra.Command, args []string) error {
	store, err := catalog.NewStore(catalogConfig(assetConfig(cmd)))
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Search(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printRecords(cmd, records)
}

func printRecords(cmd *cobra.Command, records []catalog.Record) error {
	out := cmd.OutOrStdout()

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "no images in catalog")
		return nil
	}
	for _, r := range records {
		fmt.Fprintf(out, "%s  page %d  %dx%d  %s\n", r.ID, r.Page, r.Width, r.Height, r.Path)
		if r.Context != "" {
			fmt.Fprintf(out, "    %s\n", r.Context)
		}
	}
	return nil
}
