package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const pageWidth = 277.0

// RenderPDF lays the table out on landscape A4 pages.
func RenderPDF(table Table) ([]byte, error) {
	if err := table.validate(); err != nil {
		return nil, err
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	if table.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(table.Title), "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	colWidth := pageWidth / float64(len(table.Columns))
	writeRow := func(cells []string, style string, height float64) {
		pdf.SetFont("Arial", style, 9)
		for _, cell := range cells {
			pdf.CellFormat(colWidth, height, cell, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	writeRow(table.Columns, "B", 8)
	for _, row := range table.Rows {
		writeRow(row, "", 7)
	}
	if len(table.Footer) > 0 {
		writeRow(table.Footer, "B", 7)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
