package chunker

import (
	"strings"

	"tabemb/internal/domain"
)

// DefaultTerminators are the sentence terminators used when none are given:
// the CJK full stop and the Latin period.
var DefaultTerminators = []rune{'。', '.'}

// SentenceChunker splits a text cell into trimmed, non-empty sentences.
type SentenceChunker struct {
	terminators map[rune]struct{}
}

func NewSentenceChunker(terminators ...rune) *SentenceChunker {
	if len(terminators) == 0 {
		terminators = DefaultTerminators
	}
	set := make(map[rune]struct{}, len(terminators))
	for _, r := range terminators {
		set[r] = struct{}{}
	}
	return &SentenceChunker{terminators: set}
}

// Segment returns the sentences of v in original order, without terminators.
// A missing cell yields no sentences. The result is not capped.
func (c *SentenceChunker) Segment(v domain.Value) ([]string, error) {
	if domain.IsMissing(v) {
		return nil, nil
	}
	parts := strings.FieldsFunc(domain.CellString(v), func(r rune) bool {
		_, ok := c.terminators[r]
		return ok
	})
	sentences := parts[:0]
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences, nil
}

var _ domain.Segmenter = (*SentenceChunker)(nil)
