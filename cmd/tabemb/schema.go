package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tabemb/internal/dataset"
	"tabemb/internal/schema"
)

var (
	schemaInput string
	schemaSheet string
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show the column roles of a dataset without embedding anything",
	Long: `Resolve the positional schema of the input dataset and print the role and
missing-value count of every column. No embedding service is contacted.

Examples:
  tabemb schema
  tabemb schema --input data.csv`,
	Args: cobra.NoArgs,
	RunE: runSchema,
}

func init() {
	schemaCmd.Flags().StringVarP(&schemaInput, "input", "i", "", "Input dataset (overrides input.path)")
	schemaCmd.Flags().StringVar(&schemaSheet, "sheet", "", "XLSX sheet (overrides input.sheet)")
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if schemaInput != "" {
		cfg.Input.Path = schemaInput
		cfg.Input.Sheet = ""
	}
	if schemaSheet != "" {
		cfg.Input.Sheet = schemaSheet
	}

	reader, err := dataset.NewReader(cfg.Input.Path, dataset.Options{Sheet: cfg.Input.Sheet})
	if err != nil {
		return &configError{err: fmt.Errorf("input.path: %w", err)}
	}
	ds, err := reader.Read(cmd.Context())
	if err != nil {
		return err
	}
	roles, err := schema.Resolve(ds.Columns, cfg.Schema.StructuredColumns)
	if err != nil {
		return err
	}
	return renderOverview(cmd.OutOrStdout(), ds, roles)
}
