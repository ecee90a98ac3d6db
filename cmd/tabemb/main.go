// Package main provides the tabemb CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	configPath string
	logLevel   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(exitCodeFor(err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "tabemb",
	Short: "Annotate tabular datasets with embedding vectors",
	Long: `tabemb adds embedding columns to a tabular dataset with a positional schema:
the first K columns are structured, the next one is free text and the last
one is the label.

Each structured cell gets a {column}_emb vector column. The text column is
split into sentences on "。" and "." and each sentence gets one of the
{text}_sent1..N slot columns; unused slots hold "MASK".

Supported files: .xlsx, .csv, .jsonl and SQLite (.db, .sqlite).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Load .env file if present (API keys, tokens)
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default ./tabemb.yaml or ~/.config/tabemb/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")
	rootCmd.Version = Version
}
