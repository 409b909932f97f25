// Package export serializes a table to CSV, JSON or Excel.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
)

// ErrEmptyInput is returned for a table without rows.
var ErrEmptyInput = errors.New("export: nothing to export")

// DefaultBaseName is the file name, without extension, of every export.
const DefaultBaseName = "veri"

const sheet = "Sheet1"

// Payload is a ready-to-write export.
type Payload struct {
	Data        []byte
	Filename    string
	ContentType string
}

type options struct {
	baseName string
}

// Option tunes Export.
type Option func(*options)

// WithBaseName overrides DefaultBaseName.
func WithBaseName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.baseName = name
		}
	}
}

// Export encodes t in format f.
func Export(t Table, f Format, opts ...Option) (Payload, error) {
	o := options{baseName: DefaultBaseName}
	for _, opt := range opts {
		opt(&o)
	}
	if t.Empty() {
		return Payload{}, ErrEmptyInput
	}

	var (
		data []byte
		err  error
	)
	switch f {
	case CSV:
		data, err = encodeCSV(t)
	case JSON:
		data, err = encodeJSON(t)
	case Excel:
		data, err = encodeExcel(t)
	default:
		return Payload{}, fmt.Errorf("export: unsupported format %v", f)
	}
	if err != nil {
		return Payload{}, fmt.Errorf("export %s: %w", f, err)
	}
	return Payload{Data: data, Filename: o.baseName + "." + f.Ext(), ContentType: f.ContentType()}, nil
}

// WriteFile stores p under dir and returns the full path.
func WriteFile(dir string, p Payload) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, p.Filename)
	if err := os.WriteFile(path, p.Data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func encodeCSV(t Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Columns); err != nil {
		return nil, err
	}
	rec := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for j := range t.Columns {
			rec[j] = ""
			if j < len(row) {
				rec[j] = FormatValue(row[j])
			}
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// orderedRecord marshals as a JSON object with keys in column order.
type orderedRecord struct {
	cols []string
	row  Row
}

func (r orderedRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for j, c := range r.cols {
		if j > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalNoEscape(c)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		var v any
		if j < len(r.row) {
			v = r.row[j]
		}
		if tm, ok := v.(time.Time); ok {
			v = formatTime(tm)
		}
		b, err := marshalNoEscape(v)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c, err)
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func encodeJSON(t Table) ([]byte, error) {
	recs := make([]orderedRecord, len(t.Rows))
	for i, row := range t.Rows {
		recs[i] = orderedRecord{cols: t.Columns, row: row}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(recs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeExcel(t Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, len(t.Columns))
	for j, c := range t.Columns {
		header[j] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, row := range t.Rows {
		cells := make([]any, len(t.Columns))
		for j := range t.Columns {
			if j >= len(row) {
				continue
			}
			switch v := row[j].(type) {
			case float64, float32, int, int64:
				cells[j] = v
			default:
				cells[j] = FormatValue(v)
			}
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, axis, &cells); err != nil {
			return nil, err
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
