package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset defines tabular export content. When GroupBy names one of the
// headers, renderers that support grouping print consecutive rows sharing
// that value under a single heading.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
	GroupBy string
}

// Columns returns the headers shown in the table body.
func (d Dataset) Columns() []string {
	if d.GroupBy == "" {
		return d.Headers
	}
	cols := make([]string, 0, len(d.Headers))
	for _, h := range d.Headers {
		if h != d.GroupBy {
			cols = append(cols, h)
		}
	}
	return cols
}

// CSVExporter renders Dataset records into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset. Grouping is flattened:
// every header is written as a column.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
