// Package schema assigns positional roles to the columns of a dataset and
// names the output columns derived from them.
package schema

import (
	"fmt"
	"strconv"
	"strings"

	"tabemb/internal/domain"
)

const (
	// DefaultStructuredColumns is the number of leading structured columns.
	DefaultStructuredColumns = 31

	// EmbeddingSuffix is appended to a structured column name to form its output column.
	EmbeddingSuffix = "_emb"

	// SentenceInfix joins the text column name and the 1-based slot index.
	SentenceInfix = "_sent"
)

// Error reports a dataset that cannot be partitioned into roles.
type Error struct {
	Got  int
	Want int
}

func (e *Error) Error() string {
	return fmt.Sprintf("schema: dataset has %d usable columns, need at least %d (structured + text + label)", e.Got, e.Want)
}

// EmbeddingColumn returns the output column holding the vector of structured column col.
func EmbeddingColumn(col string) string {
	return col + EmbeddingSuffix
}

// SentenceColumn returns the output column for the 1-based sentence slot i of text column col.
func SentenceColumn(col string, i int) string {
	return col + SentenceInfix + strconv.Itoa(i)
}

// Resolve partitions columns positionally: the first k are structured, the next
// one is text and the last is the label. When the dataset ends with the complete
// block of output columns an earlier annotation run appended (every structured
// embedding column followed by sentence slots 1..n), the label is the column just
// before that block, so resolving an annotated dataset yields the same roles.
func Resolve(columns []string, k int) (domain.Roles, error) {
	if k < 0 {
		return domain.Roles{}, fmt.Errorf("schema: negative structured column count %d", k)
	}
	want := k + 2
	if len(columns) < want {
		return domain.Roles{}, &Error{Got: len(columns), Want: want}
	}

	structured := append([]string(nil), columns[:k]...)
	text := columns[k]

	usable := len(columns) - derivedBlock(columns[k+1:], structured, text)
	if usable < want {
		return domain.Roles{}, &Error{Got: usable, Want: want}
	}

	return domain.Roles{Structured: structured, Text: text, Label: columns[usable-1]}, nil
}

// derivedBlock returns the length of the trailing run of tail laid out exactly
// as annotation appends it, or 0 when tail does not end with such a run.
func derivedBlock(tail, structured []string, text string) int {
	slots := 0
	for i := len(tail) - 1; i >= 0 && isSentenceSlot(tail[i], text); i-- {
		slots++
	}
	if slots == 0 {
		return 0
	}
	size := len(structured) + slots
	if size > len(tail) {
		return 0
	}
	block := tail[len(tail)-size:]
	for i, c := range structured {
		if block[i] != EmbeddingColumn(c) {
			return 0
		}
	}
	for i := 0; i < slots; i++ {
		if block[len(structured)+i] != SentenceColumn(text, i+1) {
			return 0
		}
	}
	return size
}

func isSentenceSlot(name, text string) bool {
	rest, ok := strings.CutPrefix(name, text+SentenceInfix)
	if !ok {
		return false
	}
	n, err := strconv.Atoi(rest)
	return err == nil && n > 0
}
