package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// parseSpreadsheet reads one worksheet of an Office Open XML workbook. The
// first row is the header; rows wider than it get "Unnamed: <i>" columns.
func parseSpreadsheet(data []byte, opt Options) (*grid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheet, err := pickSheet(sheets, opt.SheetName)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}
	return sheetGrid(rows), nil
}

// pickSheet resolves a case-insensitive sheet name; empty selects the first.
func pickSheet(sheets []string, name string) (string, error) {
	if name == "" {
		return sheets[0], nil
	}
	for _, s := range sheets {
		if strings.EqualFold(s, name) {
			return s, nil
		}
	}
	return "", fmt.Errorf("sheet %q not found; available sheets: %s", name, strings.Join(sheets, ", "))
}

// sheetGrid pads ragged worksheet rows to the widest one. The first row is
// the header.
func sheetGrid(rows [][]string) *grid {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	g := &grid{header: make([]string, width)}
	for i := 0; i < width; i++ {
		var h string
		if i < len(rows[0]) {
			h = rows[0][i]
		}
		if h == "" {
			h = unnamed(i)
		}
		g.header[i] = h
	}
	for _, r := range rows[1:] {
		rec := make([]string, width)
		copy(rec, r)
		g.rows = append(g.rows, rec)
	}
	return g
}
