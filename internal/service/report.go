package service

import (
	"time"

	"tabemb/internal/domain"
)

// Report summarises an annotation run.
type Report struct {
	RunID              string
	Roles              domain.Roles
	Layout             Layout
	Rows               int
	CellsEmbedded      int
	CellFallbacks      int
	SentencesEmbedded  int
	SentenceFallbacks  int
	MaskedSlots        int
	TruncatedSentences int
	RowsMasked         int
	// Errors collects every recoverable error in row order.
	Errors   []error
	Duration time.Duration
}

func (r *Report) add(res RowResult) {
	r.Rows++
	r.CellsEmbedded += res.CellsEmbedded
	r.CellFallbacks += len(res.CellErrors)
	r.SentencesEmbedded += res.SentencesEmbedded
	r.MaskedSlots += res.MaskedSlots
	r.TruncatedSentences += res.Truncated
	r.SentenceFallbacks += len(res.SentenceErrors)
	if res.TextError != nil {
		r.RowsMasked++
	}
	r.Errors = append(r.Errors, res.Errors()...)
}
