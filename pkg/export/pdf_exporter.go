package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders datasets into a tabular PDF, one band per group.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	columns := data.Columns()
	if len(columns) == 0 {
		return nil, fmt.Errorf("pdf requires a column besides the group")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	colWidth := 190.0 / float64(len(columns))
	header := func() {
		pdf.SetFont("Arial", "B", 10)
		for _, h := range columns {
			pdf.CellFormat(colWidth, 8, tr(h), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	group, started := "", false
	for _, row := range data.Rows {
		if data.GroupBy != "" && (!started || row[data.GroupBy] != group) {
			group = row[data.GroupBy]
			if started {
				pdf.Ln(3)
			}
			pdf.SetFont("Arial", "B", 11)
			pdf.SetFillColor(230, 230, 230)
			pdf.CellFormat(0, 8, tr(group), "1", 1, "L", true, 0, "")
			header()
		} else if !started {
			header()
		}
		started = true

		pdf.SetFont("Arial", "", 9)
		for _, h := range columns {
			pdf.CellFormat(colWidth, 7, tr(row[h]), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if !started {
		header()
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
