package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/speedread/internal/doctree"
)

// rowsPerSection groups table rows so long sheets get periodic headings.
const rowsPerSection = 20

// CSVParser handles CSV files. The first row is read as column headers.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	b := doctree.NewBuilder(titleFromFilename(filename))
	addRows(b, 1, records)
	return b.Document(), nil
}

// addRows renders a table under headings at level. Each data row becomes a
// sentence of "header: value" pairs.
func addRows(b *doctree.Builder, level int, records [][]string) {
	if len(records) == 0 {
		return
	}
	headers := records[0]
	rows := records[1:]
	if len(rows) == 0 {
		b.Paragraph(strings.Join(nonEmpty(headers), ", "))
		return
	}

	for i := 0; i < len(rows); i += rowsPerSection {
		end := min(i+rowsPerSection, len(rows))
		// 1-indexed, skip header
		b.Heading(level, fmt.Sprintf("Rows %d to %d", i+2, end+1))
		for _, row := range rows[i:end] {
			b.Paragraph(renderRow(headers, row))
		}
	}
}

func renderRow(headers, row []string) string {
	var parts []string
	for j, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		if j < len(headers) && strings.TrimSpace(headers[j]) != "" {
			parts = append(parts, strings.TrimSpace(headers[j])+": "+cell)
		} else {
			parts = append(parts, cell)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, ", ") + "."
}

func nonEmpty(cells []string) []string {
	out := cells[:0:0]
	for _, c := range cells {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
