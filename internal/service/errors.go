package service

import "fmt"

// CellError records a structured cell whose embedding failed and was replaced
// by the fallback vector.
type CellError struct {
	Row    int
	Column string
	Err    error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("row %d column %q: embedding failed, fallback written: %v", e.Row, e.Column, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }

// SentenceError records a sentence whose embedding failed and was replaced by
// the fallback vector. Sentence is the 1-based slot index.
type SentenceError struct {
	Row      int
	Sentence int
	Err      error
}

func (e *SentenceError) Error() string {
	return fmt.Sprintf("row %d sentence %d: embedding failed, fallback written: %v", e.Row, e.Sentence, e.Err)
}

func (e *SentenceError) Unwrap() error { return e.Err }

// RowTextError records a text step that failed as a whole; every sentence slot
// of the row was masked.
type RowTextError struct {
	Row    int
	Column string
	Err    error
}

func (e *RowTextError) Error() string {
	return fmt.Sprintf("row %d text column %q: all sentence slots masked: %v", e.Row, e.Column, e.Err)
}

func (e *RowTextError) Unwrap() error { return e.Err }
