package parser

import (
	"fmt"
	"io"

	"github.com/dgallion1/speedread/internal/doctree"
	"github.com/xuri/excelize/v2"
)

// XLSXParser handles Excel workbooks. Every non-empty sheet becomes a
// top-level heading with its rows read like CSV.
type XLSXParser struct{}

func (p *XLSXParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	b := doctree.NewBuilder(titleFromFilename(filename))
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}
		b.Heading(1, sheet)
		addRows(b, 2, rows)
	}
	return b.Document(), nil
}
