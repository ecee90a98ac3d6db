package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"tabemb/internal/domain"
)

// SQLite stores a dataset as one table whose columns follow the dataset
// columns. Columns are untyped so cells keep their dynamic type.
type SQLite struct {
	Path  string
	Table string
}

func (s *SQLite) table() string {
	if s.Table == "" {
		return DefaultTable
	}
	return s.Table
}

func (s *SQLite) open() (*sql.DB, error) {
	db, err := sql.Open("sqlite", s.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// Read loads every row of the table in rowid order.
func (s *SQLite) Read(ctx context.Context) (*domain.Dataset, error) {
	db, err := s.open()
	if err != nil {
		return nil, &PersistError{Op: "read", Path: s.Path, Err: err}
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(s.table())+" ORDER BY rowid")
	if err != nil {
		return nil, &PersistError{Op: "read", Path: s.Path, Err: fmt.Errorf("querying table %q: %w", s.table(), err)}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, &PersistError{Op: "read", Path: s.Path, Err: err}
	}
	ds := &domain.Dataset{Columns: columns}
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &PersistError{Op: "read", Path: s.Path, Err: fmt.Errorf("scanning row: %w", err)}
		}
		row := make(domain.Row, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		ds.Rows = append(ds.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistError{Op: "read", Path: s.Path, Err: err}
	}
	return ds, nil
}

// Write replaces the table with ds in a single transaction.
func (s *SQLite) Write(ctx context.Context, ds *domain.Dataset) error {
	if len(ds.Columns) == 0 {
		return &PersistError{Op: "write", Path: s.Path, Err: errors.New("dataset has no columns")}
	}
	db, err := s.open()
	if err != nil {
		return &PersistError{Op: "write", Path: s.Path, Err: err}
	}
	defer db.Close()

	if err := s.write(ctx, db, ds); err != nil {
		return &PersistError{Op: "write", Path: s.Path, Err: err}
	}
	return nil
}

func (s *SQLite) write(ctx context.Context, db *sql.DB, ds *domain.Dataset) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	table := quoteIdent(s.table())
	quoted := make([]string, len(ds.Columns))
	for i, col := range ds.Columns {
		quoted[i] = quoteIdent(col)
	}

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return fmt.Errorf("dropping table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "CREATE TABLE "+table+" ("+strings.Join(quoted, ", ")+")"); err != nil {
		return fmt.Errorf("creating table: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(quoted)), ", ")
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO "+table+" ("+strings.Join(quoted, ", ")+") VALUES ("+placeholders+")")
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(ds.Columns))
	for r, row := range ds.Rows {
		for i, col := range ds.Columns {
			args[i] = sqliteValue(row[col])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("inserting row %d: %w", r, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

func sqliteValue(v domain.Value) any {
	if domain.IsMissing(v) {
		return nil
	}
	switch x := v.(type) {
	case string, float64, int64, bool, []byte:
		return x
	case int:
		return int64(x)
	}
	return domain.CellString(v)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
