// Package dataset reads and writes whole tabular datasets in CSV, XLSX, JSONL
// and SQLite form, keeping column order.
package dataset

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"tabemb/internal/domain"
)

// Format identifies a file codec.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatXLSX   Format = "xlsx"
	FormatJSONL  Format = "jsonl"
	FormatSQLite Format = "sqlite"
)

const (
	// DefaultSheet is used when writing XLSX without a sheet name.
	DefaultSheet = "Sheet1"

	// DefaultTable is used when reading or writing SQLite without a table name.
	DefaultTable = "annotated"
)

// ErrUnsupportedFormat is returned for paths whose extension has no codec.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// PersistError reports a failure to load or store a dataset.
type PersistError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// Options carries codec-specific settings.
type Options struct {
	// Sheet selects the XLSX worksheet. Empty reads the first sheet and
	// writes DefaultSheet.
	Sheet string
	// Table names the SQLite table.
	Table string
}

// FormatOf infers the codec from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
}

// NewReader returns a reader for path based on its extension.
func NewReader(path string, opts Options) (domain.DatasetReader, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatCSV:
		return &CSV{Path: path}, nil
	case FormatXLSX:
		return &XLSX{Path: path, Sheet: opts.Sheet}, nil
	case FormatJSONL:
		return &JSONL{Path: path}, nil
	default:
		return &SQLite{Path: path, Table: opts.Table}, nil
	}
}

// NewWriter returns a writer for path based on its extension.
func NewWriter(path string, opts Options) (domain.DatasetWriter, error) {
	r, err := NewReader(path, opts)
	if err != nil {
		return nil, err
	}
	return r.(domain.DatasetWriter), nil
}

// normalizeHeader names blank header cells "Unnamed: i" and suffixes repeated
// names with ".n", so every column of the result is unique.
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		base := strings.TrimSpace(h)
		if base == "" {
			base = "Unnamed: " + strconv.Itoa(i)
		}
		name := base
		for n := 1; used[name]; n++ {
			name = base + "." + strconv.Itoa(n)
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// textCell converts a raw text cell to a value; empty cells are missing.
func textCell(s string) domain.Value {
	if s == "" {
		return nil
	}
	return s
}

// rowsFromRecords builds rows from string records laid out like header.
// Short records are padded with missing values.
func rowsFromRecords(columns []string, records [][]string) []domain.Row {
	rows := make([]domain.Row, 0, len(records))
	for _, rec := range records {
		row := make(domain.Row, len(columns))
		for i, col := range columns {
			if i < len(rec) {
				row[col] = textCell(rec[i])
			} else {
				row[col] = nil
			}
		}
		rows = append(rows, row)
	}
	return rows
}
