package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tabemb/internal/domain"
	"tabemb/internal/schema"
)

// Observer is notified of run progress. Calls happen on the annotating
// goroutine, in row order.
type Observer interface {
	RunStarted(runID string, rows int)
	RowAnnotated(res RowResult, done, total int)
}

// AnnotationServiceImpl runs schema resolution, column materialisation and row
// annotation over whole datasets.
type AnnotationServiceImpl struct {
	embedder          Embedder
	segmenter         domain.Segmenter
	structuredColumns int
	maxSentences      int
	logger            *slog.Logger
	observers         []Observer
}

func NewAnnotationService(embedder Embedder, segmenter domain.Segmenter, structuredColumns, maxSentences int, logger *slog.Logger, observers ...Observer) *AnnotationServiceImpl {
	if maxSentences <= 0 {
		maxSentences = DefaultMaxSentences
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AnnotationServiceImpl{
		embedder:          embedder,
		segmenter:         segmenter,
		structuredColumns: structuredColumns,
		maxSentences:      maxSentences,
		logger:            logger,
		observers:         observers,
	}
}

// Process reads a dataset, annotates it and writes the result. Nothing is
// written when annotation is cancelled.
func (s *AnnotationServiceImpl) Process(ctx context.Context, r domain.DatasetReader, w domain.DatasetWriter) (*Report, error) {
	ds, err := r.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}
	report, err := s.Annotate(ctx, ds)
	if err != nil {
		return report, err
	}
	if err := w.Write(ctx, ds); err != nil {
		return report, fmt.Errorf("writing dataset: %w", err)
	}
	return report, nil
}

// Annotate resolves the roles of ds, adds the output columns and annotates
// every row in order. Schema failures are returned before any embedding call.
func (s *AnnotationServiceImpl) Annotate(ctx context.Context, ds *domain.Dataset) (*Report, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := s.logger.With(slog.String("run_id", runID))

	roles, err := schema.Resolve(ds.Columns, s.structuredColumns)
	if err != nil {
		return nil, fmt.Errorf("resolving schema: %w", err)
	}
	logger.Info("schema resolved",
		slog.Int("structured", len(roles.Structured)),
		slog.String("text", roles.Text),
		slog.String("label", roles.Label),
		slog.Int("rows", len(ds.Rows)),
	)
	for _, col := range schema.Overview(ds, roles) {
		logger.Debug("column overview",
			slog.String("column", col.Name),
			slog.String("role", col.Role),
			slog.Int("missing", col.Missing),
		)
	}

	layout := Materialize(ds, roles, s.maxSentences)
	logger.Debug("output columns ready", slog.Int("columns", len(layout.Columns())), slog.Int("added", len(layout.Added)))

	report := &Report{RunID: runID, Roles: roles, Layout: layout}
	for _, o := range s.observers {
		o.RunStarted(runID, len(ds.Rows))
	}

	annotator := NewRowAnnotator(s.embedder, s.segmenter, roles, s.maxSentences, logger)
	for i, row := range ds.Rows {
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(start)
			return report, err
		}
		res, err := annotator.Annotate(ctx, i, row)
		if err != nil {
			report.Duration = time.Since(start)
			logger.Warn("annotation cancelled", slog.Int("row", i), slog.Any("error", err))
			return report, err
		}
		report.add(res)
		for _, o := range s.observers {
			o.RowAnnotated(res, i+1, len(ds.Rows))
		}
	}

	report.Duration = time.Since(start)
	logger.Info("annotation finished",
		slog.Int("rows", report.Rows),
		slog.Int("cell_fallbacks", report.CellFallbacks),
		slog.Int("sentence_fallbacks", report.SentenceFallbacks),
		slog.Int("rows_masked", report.RowsMasked),
		slog.Duration("duration", report.Duration),
	)
	return report, nil
}
