package export

import (
	"fmt"
	"strings"
)

// Format is an export file format.
type Format int

const (
	CSV Format = iota + 1
	JSON
	Excel
)

func (f Format) String() string {
	switch f {
	case CSV:
		return "csv"
	case JSON:
		return "json"
	case Excel:
		return "excel"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// Ext is the file extension, without the dot.
func (f Format) Ext() string {
	if f == Excel {
		return "xlsx"
	}
	return f.String()
}

func (f Format) ContentType() string {
	switch f {
	case CSV:
		return "text/csv"
	case JSON:
		return "application/json"
	case Excel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// ParseFormat accepts csv, json, excel and xlsx, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return CSV, nil
	case "json":
		return JSON, nil
	case "excel", "xlsx":
		return Excel, nil
	default:
		return 0, fmt.Errorf("unknown export format %q (want csv, json or excel)", s)
	}
}
