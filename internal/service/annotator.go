package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/mo"

	"tabemb/internal/domain"
	"tabemb/internal/embedding"
	"tabemb/internal/schema"
)

// Mask fills sentence slots that have no sentence.
const Mask = "MASK"

// Embedder produces one vector per text. *embedding.Adapter implements it.
type Embedder interface {
	Embed(ctx context.Context, text string) mo.Result[embedding.Vector]
	Dimension() int
}

// RowState is the progress of a row through annotation.
type RowState int

const (
	StatePending RowState = iota
	StateStructuredAnnotated
	StateTextSegmented
	StateSentencesResolved
	StateComplete
)

func (s RowState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateStructuredAnnotated:
		return "structured_annotated"
	case StateTextSegmented:
		return "text_segmented"
	case StateSentencesResolved:
		return "sentences_resolved"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// RowResult is the outcome of annotating one row.
type RowResult struct {
	Index             int
	State             RowState
	CellsEmbedded     int
	SentencesEmbedded int
	MaskedSlots       int
	// Truncated counts sentences beyond the last slot that were dropped.
	Truncated      int
	CellErrors     []*CellError
	SentenceErrors []*SentenceError
	TextError      *RowTextError
}

// Errors returns every recoverable error of the row in the order they occurred.
func (r RowResult) Errors() []error {
	var out []error
	for _, e := range r.CellErrors {
		out = append(out, e)
	}
	for _, e := range r.SentenceErrors {
		out = append(out, e)
	}
	if r.TextError != nil {
		out = append(out, r.TextError)
	}
	return out
}

// RowAnnotator writes the embedding and sentence slot columns of single rows.
type RowAnnotator struct {
	embedder     Embedder
	segmenter    domain.Segmenter
	roles        domain.Roles
	maxSentences int
	fallback     string
	logger       *slog.Logger
}

// NewRowAnnotator creates an annotator for datasets with the given roles.
func NewRowAnnotator(embedder Embedder, segmenter domain.Segmenter, roles domain.Roles, maxSentences int, logger *slog.Logger) *RowAnnotator {
	if maxSentences <= 0 {
		maxSentences = DefaultMaxSentences
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RowAnnotator{
		embedder:     embedder,
		segmenter:    segmenter,
		roles:        roles,
		maxSentences: maxSentences,
		fallback:     embedding.Fallback(embedder.Dimension()).Serialize(),
		logger:       logger,
	}
}

// Annotate fills the output columns of row in place. Embedding failures are
// isolated to their cell or slot and reported in the result; the returned
// error is non-nil only when ctx is done, in which case the row is left
// partially written.
func (a *RowAnnotator) Annotate(ctx context.Context, index int, row domain.Row) (RowResult, error) {
	res := RowResult{Index: index, State: StatePending}

	for _, col := range a.roles.Structured {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		out := schema.EmbeddingColumn(col)
		vec, err := a.embedCell(ctx, domain.CellString(row[col]))
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}
			cellErr := &CellError{Row: index, Column: col, Err: err}
			a.logger.Warn("structured cell embedding failed, using fallback",
				slog.Int("row", index),
				slog.String("column", col),
				slog.Any("error", err),
			)
			res.CellErrors = append(res.CellErrors, cellErr)
			row[out] = a.fallback
			continue
		}
		row[out] = vec.Serialize()
		res.CellsEmbedded++
	}
	res.State = StateStructuredAnnotated

	slots, err := a.resolveSentences(ctx, index, row[a.roles.Text], &res)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}
	if err != nil {
		res.TextError = &RowTextError{Row: index, Column: a.roles.Text, Err: err}
		a.logger.Error("text annotation failed, masking all sentence slots",
			slog.Int("row", index),
			slog.String("column", a.roles.Text),
			slog.Any("error", err),
		)
		slots = make([]string, a.maxSentences)
		for i := range slots {
			slots[i] = Mask
		}
		// Fallbacks written before the failure were overwritten by MASK.
		res.SentenceErrors = nil
		res.SentencesEmbedded = 0
		res.Truncated = 0
	}

	res.MaskedSlots = 0
	for i, v := range slots {
		row[schema.SentenceColumn(a.roles.Text, i+1)] = v
		if v == Mask {
			res.MaskedSlots++
		}
	}
	res.State = StateComplete
	return res, nil
}

// embedCell embeds one structured cell. A panic in the service or decode path
// is returned as an error so the cell gets the fallback.
func (a *RowAnnotator) embedCell(ctx context.Context, text string) (vec embedding.Vector, err error) {
	defer func() {
		if r := recover(); r != nil {
			vec = nil
			err = fmt.Errorf("panic while embedding cell: %v", r)
		}
	}()
	return a.embedder.Embed(ctx, text).Get()
}

// resolveSentences returns the values of every sentence slot. A segmenter
// failure or a panic while resolving is returned as an error.
func (a *RowAnnotator) resolveSentences(ctx context.Context, index int, text domain.Value, res *RowResult) (slots []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			slots = nil
			err = fmt.Errorf("panic while resolving sentences: %v", r)
		}
	}()

	sentences, err := a.segmenter.Segment(text)
	if err != nil {
		return nil, fmt.Errorf("segmenting text: %w", err)
	}
	res.State = StateTextSegmented
	if len(sentences) > a.maxSentences {
		res.Truncated = len(sentences) - a.maxSentences
		sentences = sentences[:a.maxSentences]
	}

	slots = make([]string, a.maxSentences)
	for i := range slots {
		if i >= len(sentences) {
			slots[i] = Mask
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := a.embedder.Embed(ctx, sentences[i]).Get()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			sentErr := &SentenceError{Row: index, Sentence: i + 1, Err: err}
			a.logger.Warn("sentence embedding failed, using fallback",
				slog.Int("row", index),
				slog.Int("sentence", i+1),
				slog.Any("error", err),
			)
			res.SentenceErrors = append(res.SentenceErrors, sentErr)
			slots[i] = a.fallback
			continue
		}
		slots[i] = vec.Serialize()
		res.SentencesEmbedded++
	}
	res.State = StateSentencesResolved
	return slots, nil
}
