// Package render formats result rows for output. Three formats are
// supported: CSV, JSON, and markdown tables. Timestamps render as
// ISO-8601 strings in every format.
package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/bennycheung/PyFireSQL/firesql"
)

// Format names accepted by NewPrinter.
const (
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatTable = "table"
)

// Printer writes result rows in a fixed format.
type Printer struct {
	format string
}

// NewPrinter creates a printer for the named format.
func NewPrinter(format string) (*Printer, error) {
	switch format {
	case FormatCSV, FormatJSON, FormatTable:
		return &Printer{format: format}, nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

// Print writes the rows to w with columns in field order. Fields
// absent from a row render as empty.
func (p *Printer) Print(w io.Writer, fields []string, rows []firesql.Document) error {
	switch p.format {
	case FormatCSV:
		return printCSV(w, fields, rows)
	case FormatJSON:
		return printJSON(w, rows)
	default:
		return printTable(w, fields, rows)
	}
}

func printCSV(w io.Writer, fields []string, rows []firesql.Document) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(fields); err != nil {
		return err
	}
	for _, row := range rows {
		record := make([]string, len(fields))
		for i, field := range fields {
			record[i] = formatValue(row[field])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func printJSON(w io.Writer, rows []firesql.Document) error {
	rendered := make([]interface{}, len(rows))
	for i, row := range rows {
		rendered[i] = firesql.RenderValue(map[string]interface{}(row))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rendered)
}

func printTable(w io.Writer, fields []string, rows []firesql.Document) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "_No rows_")
		return err
	}

	alignment := make([]tw.Align, len(fields))
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header(fields)

	for _, row := range rows {
		record := make([]string, len(fields))
		for i, field := range fields {
			record[i] = formatValue(row[field])
		}
		table.Append(record)
	}
	table.Render()

	_, err := fmt.Fprintf(w, "\n_%d rows_\n", len(rows))
	return err
}

// formatValue renders a single cell.
func formatValue(val interface{}) string {
	if val == nil {
		return ""
	}
	switch v := val.(type) {
	case string:
		return v
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	case float64:
		return fmt.Sprintf("%v", v)
	case bool:
		return fmt.Sprintf("%t", v)
	case time.Time:
		return firesql.FormatTime(v)
	case []interface{}:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = formatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}
