package dataset

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"tabemb/internal/domain"
)

// XLSX reads and writes one worksheet of an Excel workbook. The first row of
// the sheet is the header.
type XLSX struct {
	Path  string
	Sheet string
}

// Read loads the configured sheet, or the first sheet when none is set.
func (x *XLSX) Read(ctx context.Context) (*domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(x.Path)
	if err != nil {
		return nil, &PersistError{Op: "read", Path: x.Path, Err: err}
	}
	defer f.Close()

	sheet := x.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, &PersistError{Op: "read", Path: x.Path, Err: errors.New("workbook has no sheets")}
		}
		sheet = sheets[0]
	}

	records, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &PersistError{Op: "read", Path: x.Path, Err: fmt.Errorf("sheet %q: %w", sheet, err)}
	}
	if len(records) == 0 {
		return nil, &PersistError{Op: "read", Path: x.Path, Err: fmt.Errorf("sheet %q is empty", sheet)}
	}

	columns := normalizeHeader(records[0])
	rows := make([]domain.Row, 0, len(records)-1)
	for r, rec := range records[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := make(domain.Row, len(columns))
		for i, col := range columns {
			if i >= len(rec) || rec[i] == "" {
				row[col] = nil
				continue
			}
			v, err := xlsxCell(f, sheet, i+1, r+2, rec[i])
			if err != nil {
				return nil, &PersistError{Op: "read", Path: x.Path, Err: fmt.Errorf("sheet %q: %w", sheet, err)}
			}
			row[col] = v
		}
		rows = append(rows, row)
	}
	return &domain.Dataset{Columns: columns, Rows: rows}, nil
}

// xlsxCell types a raw cell value by its stored cell type: numbers become
// int64 or float64, booleans bool, and everything else stays text.
func xlsxCell(f *excelize.File, sheet string, col, row int, raw string) (domain.Value, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return nil, err
	}
	typ, err := f.GetCellType(sheet, cell)
	if err != nil {
		return nil, err
	}
	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n, nil
		}
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v, nil
		}
	case excelize.CellTypeBool:
		switch raw {
		case "1", "TRUE", "true":
			return true, nil
		case "0", "FALSE", "false":
			return false, nil
		}
	}
	return raw, nil
}

// Write replaces the workbook with a single sheet holding ds.
func (x *XLSX) Write(ctx context.Context, ds *domain.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sheet := x.Sheet
	if sheet == "" {
		sheet = DefaultSheet
	}

	f := excelize.NewFile()
	defer f.Close()
	if sheet != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, sheet); err != nil {
			return &PersistError{Op: "write", Path: x.Path, Err: err}
		}
	}

	header := make([]any, len(ds.Columns))
	for i, col := range ds.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return &PersistError{Op: "write", Path: x.Path, Err: err}
	}

	values := make([]any, len(ds.Columns))
	for r, row := range ds.Rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i, col := range ds.Columns {
			values[i] = xlsxValue(row[col])
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return &PersistError{Op: "write", Path: x.Path, Err: err}
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return &PersistError{Op: "write", Path: x.Path, Err: fmt.Errorf("row %d: %w", r, err)}
		}
	}

	if err := f.SaveAs(x.Path); err != nil {
		return &PersistError{Op: "write", Path: x.Path, Err: err}
	}
	return nil
}

// xlsxValue keeps numbers and booleans typed and renders everything else as
// text. Missing values become empty strings, which read back as missing.
func xlsxValue(v domain.Value) any {
	if domain.IsMissing(v) {
		return ""
	}
	switch v.(type) {
	case string, float64, int64, int, bool:
		return v
	}
	return domain.CellString(v)
}
