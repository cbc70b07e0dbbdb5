package ingest

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/extrame/xls"
)

// oleMagic opens every Compound File Binary container, which is how BIFF
// workbooks are stored.
var oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

var errNotLegacyWorkbook = errors.New("not a legacy Excel workbook")

// maxLegacyColumns is the BIFF8 column limit.
const maxLegacyColumns = 256

// parseLegacySpreadsheet reads one worksheet of a BIFF (.xls) workbook. The
// decoder panics on some malformed input, so panics become parse errors.
func parseLegacySpreadsheet(data []byte, opt Options) (g *grid, err error) {
	if !bytes.HasPrefix(data, oleMagic) {
		return nil, errNotLegacyWorkbook
	}
	defer func() {
		if r := recover(); r != nil {
			g, err = nil, fmt.Errorf("decode workbook: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	if wb == nil {
		return nil, errNotLegacyWorkbook
	}
	if wb.NumSheets() == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheets := make([]*xls.WorkSheet, 0, wb.NumSheets())
	names := make([]string, 0, wb.NumSheets())
	for i := 0; i < wb.NumSheets(); i++ {
		if ws := wb.GetSheet(i); ws != nil {
			sheets = append(sheets, ws)
			names = append(names, ws.Name)
		}
	}
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	name, err := pickSheet(names, opt.SheetName)
	if err != nil {
		return nil, err
	}
	var ws *xls.WorkSheet
	for i, n := range names {
		if n == name {
			ws = sheets[i]
			break
		}
	}

	rows := legacyRows(ws)
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", name)
	}
	return sheetGrid(rows), nil
}

// legacyRows returns the sheet's cells by row index with trailing empty rows
// and trailing empty cells removed. Absent rows come back empty.
func legacyRows(ws *xls.WorkSheet) [][]string {
	var rows [][]string
	last := -1
	for i := 0; i <= int(ws.MaxRow); i++ {
		cells := legacyCells(sheetRow(ws, i))
		rows = append(rows, cells)
		if len(cells) > 0 {
			last = i
		}
	}
	return rows[:last+1]
}

func legacyCells(row *xls.Row) []string {
	if row == nil {
		return nil
	}
	width := row.LastCol()
	if width <= 0 || width > maxLegacyColumns {
		// Rows created from cells alone carry no extent.
		width = maxLegacyColumns
	}
	cells := make([]string, width)
	n := 0
	for c := 0; c < width; c++ {
		cells[c] = row.Col(c)
		if cells[c] != "" {
			n = c + 1
		}
	}
	return cells[:n]
}

// sheetRow returns nil for rows the sheet does not define; WorkSheet.Row
// panics on them.
func sheetRow(ws *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return ws.Row(i)
}
