package export

import "fmt"

// Format names a supported rendering format.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv"
	}
}

// Table is a titled grid of already-formatted cells.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
	Footer  []string
}

func (t Table) validate() error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("table requires at least one column")
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(t.Columns))
		}
	}
	if len(t.Footer) > 0 && len(t.Footer) != len(t.Columns) {
		return fmt.Errorf("footer has %d cells, want %d", len(t.Footer), len(t.Columns))
	}
	return nil
}

// Render dispatches to the renderer for format.
func Render(format Format, table Table) ([]byte, error) {
	switch format {
	case FormatCSV:
		return RenderCSV(table)
	case FormatPDF:
		return RenderPDF(table)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}
