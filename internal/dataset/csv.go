package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"tabemb/internal/domain"
)

// CSV reads and writes comma-separated files with a header row.
type CSV struct {
	Path string
}

// Read loads the file. Empty fields are missing values; other fields are kept
// as strings.
func (c *CSV) Read(ctx context.Context) (*domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, &PersistError{Op: "read", Path: c.Path, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, &PersistError{Op: "read", Path: c.Path, Err: fmt.Errorf("parsing csv: %w", err)}
	}
	if len(records) == 0 {
		return nil, &PersistError{Op: "read", Path: c.Path, Err: io.ErrUnexpectedEOF}
	}

	columns := normalizeHeader(records[0])
	return &domain.Dataset{Columns: columns, Rows: rowsFromRecords(columns, records[1:])}, nil
}

// Write replaces the file with ds. Missing values become empty fields.
func (c *CSV) Write(ctx context.Context, ds *domain.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Create(c.Path)
	if err != nil {
		return &PersistError{Op: "write", Path: c.Path, Err: err}
	}

	w := csv.NewWriter(f)
	writeErr := w.Write(ds.Columns)
	record := make([]string, len(ds.Columns))
	for _, row := range ds.Rows {
		if writeErr != nil {
			break
		}
		for i, col := range ds.Columns {
			record[i] = domain.CellString(row[col])
		}
		writeErr = w.Write(record)
	}
	w.Flush()
	if err := errors.Join(writeErr, w.Error(), f.Close()); err != nil {
		return &PersistError{Op: "write", Path: c.Path, Err: err}
	}
	return nil
}
