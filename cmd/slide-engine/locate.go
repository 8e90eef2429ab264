// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/slide-engine/internal/assets"
)

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Resolve the reference PDF and copy it into the cache",
	Long: `locate tries each candidate location for the reference PDF in priority
order (cache copy, --pdf / SOURCE_PDF_PATH override, fallbacks) and copies the
first match into the cache. With --list it prints the candidate order without
touching anything.`,
	RunE: runLocate,
}

func init() {
	rootCmd.AddCommand(locateCmd)

	locateCmd.Flags().Bool("list", false, "print candidate paths in priority order and exit")
	addAssetFlags(locateCmd)
}

func runLocate(cmd *cobra.Command, args []string) error {
	cfg := assetConfig(cmd)

	if list, _ := cmd.Flags().GetBool("list"); list {
		for i, c := range assets.Candidates(cfg) {
			fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, c)
		}
		return nil
	}

	path, err := assets.EnsurePDF(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
