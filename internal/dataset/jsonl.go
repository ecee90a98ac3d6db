package dataset

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"tabemb/internal/domain"
)

// MaxJSONLLineCapacity is the largest line the JSONL reader accepts.
const MaxJSONLLineCapacity = 4 * 1024 * 1024

// JSONL reads and writes one JSON object per line. Column order follows the
// order in which keys first appear.
type JSONL struct {
	Path string
}

// Read loads the file. Integral numbers become int64, other numbers float64.
func (j *JSONL) Read(ctx context.Context) (*domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(j.Path)
	if err != nil {
		return nil, &PersistError{Op: "read", Path: j.Path, Err: err}
	}
	defer f.Close()

	ds := &domain.Dataset{}
	scanner := bufio.NewScanner(f)
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		keys, row, err := decodeObject(line)
		if err != nil {
			return nil, &PersistError{Op: "read", Path: j.Path, Err: fmt.Errorf("parsing line %d: %w", lineNum, err)}
		}
		for _, k := range keys {
			ds.AddColumn(k)
		}
		for _, col := range ds.Columns {
			if _, ok := row[col]; !ok {
				row[col] = nil
			}
		}
		ds.Rows = append(ds.Rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, &PersistError{Op: "read", Path: j.Path, Err: err}
	}
	return ds, nil
}

// Write replaces the file with ds, keys in column order.
func (j *JSONL) Write(ctx context.Context, ds *domain.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Create(j.Path)
	if err != nil {
		return &PersistError{Op: "write", Path: j.Path, Err: err}
	}

	w := bufio.NewWriter(f)
	var writeErr error
	for r, row := range ds.Rows {
		line, err := encodeObject(ds.Columns, row)
		if err != nil {
			writeErr = fmt.Errorf("row %d: %w", r, err)
			break
		}
		if _, err := w.Write(line); err != nil {
			writeErr = err
			break
		}
	}
	if writeErr == nil {
		writeErr = w.Flush()
	}
	if err := errors.Join(writeErr, f.Close()); err != nil {
		return &PersistError{Op: "write", Path: j.Path, Err: err}
	}
	return nil
}

func decodeObject(line []byte) ([]string, domain.Row, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, errors.New("expected a JSON object")
	}

	var keys []string
	row := domain.Row{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected token %v", tok)
		}
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, fmt.Errorf("field %q: %w", key, err)
		}
		if _, dup := row[key]; !dup {
			keys = append(keys, key)
		}
		row[key] = jsonValue(raw)
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return keys, row, nil
}

func jsonValue(raw any) domain.Value {
	switch v := raw.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		f, err := v.Float64()
		if err != nil {
			return v.String()
		}
		return f
	case string, bool, nil:
		return v
	default:
		// Nested arrays and objects are kept as their JSON text.
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}

func encodeObject(columns []string, row domain.Row) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		v := row[col]
		if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			v = nil
		}
		val, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col, err)
		}
		buf.Write(val)
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}
