package dashboard

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"finboard/internal/export"
)

// Render writes r as a text table followed by its metrics.
func Render(w io.Writer, r Result) error {
	out := &strings.Builder{}
	p := message.NewPrinter(language.English)

	if r.Title != "" {
		out.WriteString(r.Title + "\n")
	}
	if len(r.Choices) > 0 {
		out.WriteString("Matches:\n")
		for i, c := range r.Choices {
			fmt.Fprintf(out, "  [%d] %s  %s\n", i, c.Key, c.Label)
		}
	}
	if !r.Table.Empty() {
		table := tablewriter.NewWriter(out)
		table.SetHeader(r.Table.Columns)
		table.SetAutoFormatHeaders(false)
		table.SetAlignment(tablewriter.ALIGN_RIGHT)
		for _, row := range r.Table.Rows {
			cells := make([]string, len(r.Table.Columns))
			for j := range cells {
				if j < len(row) {
					cells[j] = cell(p, row[j])
				}
			}
			table.Append(cells)
		}
		table.Render()
	}
	for _, m := range r.Metrics {
		out.WriteString(p.Sprintf("%-24s %.4f\n", m.Label, m.Value))
	}
	if r.Warning != "" {
		out.WriteString("warning: " + r.Warning + "\n")
	}

	_, err := io.WriteString(w, out.String())
	return err
}

func cell(p *message.Printer, v any) string {
	if f, ok := v.(float64); ok {
		return p.Sprintf("%.4f", f)
	}
	return export.FormatValue(v)
}
