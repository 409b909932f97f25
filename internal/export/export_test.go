package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"finboard/internal/series"
)

func TestExport_CSVFromRecords(t *testing.T) {
	t.Parallel()

	// Arrange
	table := FromRecords([]map[string]any{{"A": 1, "B": 2}})

	// Act
	p, err := Export(table, CSV)

	// Assert
	require.NoError(t, err)
	require.Equal(t, "A,B\n1,2\n", string(p.Data))
	require.Equal(t, "veri.csv", p.Filename)
	require.Equal(t, "text/csv", p.ContentType)
}

func TestExport_EmptyInputForEveryFormat(t *testing.T) {
	t.Parallel()

	for _, f := range []Format{CSV, JSON, Excel} {
		p, err := Export(Table{Columns: []string{"A"}}, f)
		require.ErrorIs(t, err, ErrEmptyInput, f.String())
		require.Nil(t, p.Data)
	}
}

func TestExport_CSVKeepsFloatPrecisionAndQuotes(t *testing.T) {
	t.Parallel()

	table := Table{
		Columns: []string{"Code", "Name", "Selling"},
		Rows:    []Row{{"USD", "ABD DOLARI, US", 34.123456789}},
	}

	p, err := Export(table, CSV)

	require.NoError(t, err)
	require.Equal(t, "Code,Name,Selling\nUSD,\"ABD DOLARI, US\",34.123456789\n", string(p.Data))
}

func TestExport_JSONKeepsColumnOrder(t *testing.T) {
	t.Parallel()

	// Arrange
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	table := Table{
		Columns: []string{"Zeta", "Alpha", "Date", "Name"},
		Rows:    []Row{{1.5, 2, day, "TÜRK LİRASI <TRY>"}},
	}

	// Act
	p, err := Export(table, JSON)

	// Assert
	require.NoError(t, err)
	require.Equal(t, "veri.json", p.Filename)
	require.Equal(t, "application/json", p.ContentType)
	want := "[\n  {\n    \"Zeta\": 1.5,\n    \"Alpha\": 2,\n    \"Date\": \"2025-03-14\",\n    \"Name\": \"TÜRK LİRASI <TRY>\"\n  }\n]\n"
	require.Equal(t, want, string(p.Data))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(p.Data, &decoded))
	require.Len(t, decoded, 1)
}

func TestExport_ExcelReadsBack(t *testing.T) {
	t.Parallel()

	// Arrange
	table := Table{
		Columns: []string{"Time", "Close"},
		Rows: []Row{
			{time.Date(2025, 1, 2, 10, 15, 0, 0, time.UTC), 97000.5},
			{time.Date(2025, 1, 2, 10, 30, 0, 0, time.UTC), 97010.25},
		},
	}

	// Act
	p, err := Export(table, Excel)
	require.NoError(t, err)

	// Assert
	require.Equal(t, "veri.xlsx", p.Filename)
	f, err := excelize.OpenReader(bytes.NewReader(p.Data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"Time", "Close"},
		{"2025-01-02 10:15:00", "97000.5"},
		{"2025-01-02 10:30:00", "97010.25"},
	}, rows)
}

func TestExport_BaseNameAndWriteFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p, err := Export(Table{Columns: []string{"A"}, Rows: []Row{{"x"}}}, CSV, WithBaseName("rates"))
	require.NoError(t, err)

	path, err := WriteFile(filepath.Join(dir, "out"), p)
	require.NoError(t, err)

	require.Equal(t, filepath.Join(dir, "out", "rates.csv"), path)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "A\nx\n", string(got))
}

func TestExport_UnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := Export(Table{Columns: []string{"A"}, Rows: []Row{{"x"}}}, Format(42))

	require.Error(t, err)
	require.False(t, errors.Is(err, ErrEmptyInput))
}

func TestFromSeries(t *testing.T) {
	t.Parallel()

	d1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	s := series.New([]series.Point{
		series.NewPoint(d2, series.Field{Name: "Selling", Value: 2}),
		series.NewPoint(d1, series.Field{Name: "Buying", Value: 0.5}, series.Field{Name: "Selling", Value: 1}),
	})

	table := FromSeries(s, "Date", "Buying", "Selling")

	require.Equal(t, []string{"Date", "Buying", "Selling"}, table.Columns)
	require.Equal(t, []Row{{d1, 0.5, 1.0}, {d2, 0.0, 2.0}}, table.Rows)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Format{"csv": CSV, "JSON": JSON, "excel": Excel, " xlsx ": Excel} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParseFormat("pdf")
	require.Error(t, err)
}
