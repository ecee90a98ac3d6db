package domain

import "context"

// Value is a single tabular cell: string, float64, int64, bool or nil when missing.
type Value = any

// Row maps column names to cell values. All rows of a Dataset share one column set.
type Row map[string]Value

// Dataset is an ordered sequence of rows with an ordered column list.
type Dataset struct {
	Columns []string
	Rows    []Row
}

// HasColumn reports whether name is part of the column list.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn appends name to the column list and initialises it to nil in every
// row. It is a no-op returning false when the column already exists.
func (d *Dataset) AddColumn(name string) bool {
	if d.HasColumn(name) {
		return false
	}
	d.Columns = append(d.Columns, name)
	for _, r := range d.Rows {
		if _, ok := r[name]; !ok {
			r[name] = nil
		}
	}
	return true
}

// Role is the positional role of a column.
type Role int

const (
	RoleStructured Role = iota
	RoleText
	RoleLabel
)

func (r Role) String() string {
	switch r {
	case RoleStructured:
		return "structured"
	case RoleText:
		return "text"
	case RoleLabel:
		return "label"
	default:
		return "unknown"
	}
}

// Roles is the partition of a dataset's columns produced by schema resolution.
type Roles struct {
	Structured []string
	Text       string
	Label      string
}

// RoleOf returns the role of column name and whether it has one.
func (r Roles) RoleOf(name string) (Role, bool) {
	for _, c := range r.Structured {
		if c == name {
			return RoleStructured, true
		}
	}
	switch name {
	case r.Text:
		return RoleText, true
	case r.Label:
		return RoleLabel, true
	}
	return 0, false
}

// Segmenter splits a text cell into ordered sentences.
type Segmenter interface {
	Segment(v Value) ([]string, error)
}

// DatasetReader loads a whole dataset from its source.
type DatasetReader interface {
	Read(ctx context.Context) (*Dataset, error)
}

// DatasetWriter persists a whole dataset to its destination.
type DatasetWriter interface {
	Write(ctx context.Context, ds *Dataset) error
}
