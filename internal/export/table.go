package export

import (
	"maps"
	"slices"
	"strconv"
	"time"

	"finboard/internal/series"
)

// Row holds one value per column. Supported value types are string,
// float64, int, int64, time.Time and nil.
type Row []any

// Table is a column-ordered tabular dataset.
type Table struct {
	Columns []string
	Rows    []Row
}

func (t Table) Empty() bool { return len(t.Rows) == 0 }


// FromRecords builds a table from maps. With no columns given the
// sorted union of all keys is used.
func FromRecords(records []map[string]any, columns ...string) Table {
	if len(columns) == 0 {
		seen := make(map[string]struct{})
		for _, r := range records {
			for k := range r {
				seen[k] = struct{}{}
			}
		}
		columns = slices.Sorted(maps.Keys(seen))
	}
	t := Table{Columns: slices.Clone(columns), Rows: make([]Row, 0, len(records))}
	for _, r := range records {
		row := make(Row, len(columns))
		for j, c := range columns {
			row[j] = r[c]
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// FromSeries lays a series out with its key in keyColumn followed by
// the named fields.
func FromSeries(s series.Series, keyColumn string, fields ...string) Table {
	t := Table{Columns: append([]string{keyColumn}, fields...), Rows: make([]Row, 0, s.Len())}
	for _, p := range s.Points() {
		row := make(Row, 0, len(fields)+1)
		row = append(row, p.Key())
		for _, f := range fields {
			row = append(row, p.Value(f))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// FormatValue renders v the way every exporter writes it as text.
// Floats keep their shortest exact representation.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return formatTime(x)
	default:
		return ""
	}
}

func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.DateTime)
}
