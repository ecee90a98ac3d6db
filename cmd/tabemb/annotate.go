package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tabemb/internal/chunker"
	"tabemb/internal/config"
	"tabemb/internal/dataset"
	"tabemb/internal/domain"
	"tabemb/internal/metrics"
	"tabemb/internal/service"
	"tabemb/internal/tui"
)

// maxPrintedErrors limits the recoverable errors echoed after a run.
const maxPrintedErrors = 20

var (
	annotateInput    string
	annotateOutput   string
	annotateEmbedder string
	annotateTUI      bool
	annotateDryRun   bool
	annotateMetrics  string
)

var annotateCmd = &cobra.Command{
	Use:   "annotate",
	Short: "Add embedding and sentence slot columns to a dataset",
	Long: `Read the input dataset, embed every structured cell and every sentence of
the text column, and write the dataset with the new columns appended.

Failed embeddings are replaced by a zero vector and logged; the run carries on.
The output format follows the file extension of --output.

Examples:
  tabemb annotate
  tabemb annotate --input data.xlsx --output annotated.xlsx
  tabemb annotate --input data.csv --output annotated.db --embedder tfidf
  tabemb annotate --tui --metrics-textfile /var/lib/node_exporter/tabemb.prom`,
	Args: cobra.NoArgs,
	RunE: runAnnotate,
}

func init() {
	annotateCmd.Flags().StringVarP(&annotateInput, "input", "i", "", "Input dataset (overrides input.path)")
	annotateCmd.Flags().StringVarP(&annotateOutput, "output", "o", "", "Output dataset (overrides output.path)")
	annotateCmd.Flags().StringVar(&annotateEmbedder, "embedder", "", "Embedding service: gradio, openai or tfidf (overrides embedder.type)")
	annotateCmd.Flags().BoolVar(&annotateTUI, "tui", false, "Show an interactive progress view")
	annotateCmd.Flags().BoolVar(&annotateDryRun, "dry-run", false, "Annotate without writing the output")
	annotateCmd.Flags().StringVar(&annotateMetrics, "metrics-textfile", "", "Write Prometheus metrics to this file (overrides metrics.textfile)")
	rootCmd.AddCommand(annotateCmd)
}

func runAnnotate(cmd *cobra.Command, _ []string) error {
	cfg, cfgPath, err := loadConfig()
	if err != nil {
		return err
	}
	applyAnnotateFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return &configError{err: err}
	}
	logger, closeLog, err := newLogger(cfg, annotateTUI)
	if err != nil {
		return err
	}
	defer closeLog()
	logger.Debug("config loaded", slog.String("path", cfgPath))

	reader, err := dataset.NewReader(cfg.Input.Path, dataset.Options{Sheet: cfg.Input.Sheet})
	if err != nil {
		return &configError{err: fmt.Errorf("input.path: %w", err)}
	}
	var writer domain.DatasetWriter = dataset.NewMemory()
	if !annotateDryRun {
		writer, err = dataset.NewWriter(cfg.Output.Path, dataset.Options{Sheet: cfg.Output.Sheet, Table: cfg.Output.Table})
		if err != nil {
			return &configError{err: fmt.Errorf("output.path: %w", err)}
		}
	}

	recorder := metrics.NewRecorder()
	svc, err := newEmbeddingService(cfg.Embedder)
	if err != nil {
		return err
	}
	adapter := newAdapter(cfg.Embedder, recorder.InstrumentService(svc))
	logger.Info("embedding service ready",
		slog.String("service", adapter.ServiceName()),
		slog.String("model", adapter.Model()),
		slog.Int("dimension", adapter.Dimension()),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var report *service.Report
	run := func(ctx context.Context, observers ...service.Observer) error {
		observers = append(observers, recorder)
		annotator := service.NewAnnotationService(adapter, chunker.NewSentenceChunker(),
			cfg.Schema.StructuredColumns, cfg.Schema.MaxSentences, logger, observers...)
		var err error
		report, err = annotator.Process(ctx, reader, writer)
		return err
	}

	if annotateTUI {
		err = tui.Run(ctx, cfg.Input.Path, os.Stderr, func(ctx context.Context, obs service.Observer) error {
			return run(ctx, obs)
		})
	} else {
		err = run(ctx)
	}

	if cfg.Metrics.Textfile != "" {
		if werr := recorder.WriteTextfile(cfg.Metrics.Textfile); werr != nil {
			logger.Warn("writing metrics textfile failed", slog.String("path", cfg.Metrics.Textfile), slog.Any("error", werr))
		}
	}
	if err != nil {
		return err
	}

	output := cfg.Output.Path
	if annotateDryRun {
		output = "(dry run, not written)"
	}
	out := cmd.OutOrStdout()
	if err := renderReport(out, report, cfg.Input.Path, output); err != nil {
		return err
	}
	if path := logDestination(cfg, annotateTUI); path != "" {
		fmt.Fprintf(out, "Log written to %s\n", path)
	}
	renderErrors(out, report.Errors, maxPrintedErrors)
	return nil
}

func applyAnnotateFlags(cfg *config.AppConfig) {
	if annotateInput != "" {
		cfg.Input.Path = annotateInput
		cfg.Input.Sheet = ""
	}
	if annotateOutput != "" {
		cfg.Output.Path = annotateOutput
	}
	if annotateEmbedder != "" {
		cfg.Embedder.Type = annotateEmbedder
		config.ApplyDefaults(cfg)
	}
	if annotateMetrics != "" {
		cfg.Metrics.Textfile = annotateMetrics
	}
}
