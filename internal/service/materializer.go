package service

import (
	"tabemb/internal/domain"
	"tabemb/internal/schema"
)

// DefaultMaxSentences is the number of sentence slots per row.
const DefaultMaxSentences = 23

// Layout lists the output columns of a run in dataset order.
type Layout struct {
	Embedding []string
	Sentences []string
	// Added holds the columns that did not exist before Materialize.
	Added []string
}

// Columns returns every output column, embedding columns first.
func (l Layout) Columns() []string {
	out := make([]string, 0, len(l.Embedding)+len(l.Sentences))
	out = append(out, l.Embedding...)
	return append(out, l.Sentences...)
}

// Materialize ensures ds has one embedding column per structured column and
// maxSentences sentence columns for the text column. Existing columns are kept
// where they are; missing ones are appended after the current columns.
func Materialize(ds *domain.Dataset, roles domain.Roles, maxSentences int) Layout {
	var layout Layout
	for _, col := range roles.Structured {
		name := schema.EmbeddingColumn(col)
		layout.Embedding = append(layout.Embedding, name)
		if ds.AddColumn(name) {
			layout.Added = append(layout.Added, name)
		}
	}
	for i := 1; i <= maxSentences; i++ {
		name := schema.SentenceColumn(roles.Text, i)
		layout.Sentences = append(layout.Sentences, name)
		if ds.AddColumn(name) {
			layout.Added = append(layout.Added, name)
		}
	}
	return layout
}
