// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the slide-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/slide-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, otherwise the secret value for key
// if one was loaded.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the slide-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "slide-engine",
	Short: "Generate HTML slide decks from instructions and a reference PDF",
	Long: `slide-engine turns free-form presentation instructions (prompt.txt) plus an
optional reference PDF into a generated HTML slide deck. Embedded images are
extracted from the PDF into a local cache and offered to the generation model
as a catalog it can reference per slide.

Each pipeline stage is also available as its own subcommand: locate resolves
and caches the reference PDF, extract pulls its embedded images, catalog
queries the persisted image index, and generate runs the whole pipeline.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Merge a local .env into the process environment before any
		// viper reads, matching how credentials are usually supplied.
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "warning: .env: %v\n", err)
		}

		s, err := secrets.Load(".secrets/", os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./slide-engine.yaml or ~/.config/slide-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("slide-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "slide-engine"))
		}
	}

	viper.SetEnvPrefix("SLIDE_ENGINE")
	viper.AutomaticEnv()

	// Unprefixed variable names users already have in their .env files.
	viper.BindEnv("api_key", "GEMINI_API_KEY")
	viper.BindEnv("source_pdf", "SOURCE_PDF_PATH")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
