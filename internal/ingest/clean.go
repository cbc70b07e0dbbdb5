package ingest

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// RawFile is an uploaded dataset. Reader is consumed exactly once by Clean.
type RawFile struct {
	Name   string
	Reader io.Reader
}

// Options controls ingestion.
type Options struct {
	// MaxBytes rejects uploads larger than this many bytes; 0 means unlimited.
	MaxBytes int64
	// SheetName selects a worksheet for spreadsheet inputs. Empty means the first sheet.
	SheetName string
	Logger    *slog.Logger
}

// DefaultOptions returns the limits used by the CLI and the server.
func DefaultOptions() Options {
	return Options{MaxBytes: 10 << 20}
}

// grid is the raw header and cells produced by one strategy.
type grid struct {
	header []string
	rows   [][]string
}

type strategy struct {
	name  string
	parse func(data []byte, opt Options) (*grid, error)
}

// Formats are tried in this order; the first one that decodes the content wins.
var strategies = []strategy{
	{name: "csv", parse: delimited(',')},
	{name: "csv-semicolon", parse: delimited(';')},
	{name: "tsv", parse: delimited('\t')},
	{name: "xlsx", parse: parseSpreadsheet},
	{name: "xls", parse: parseLegacySpreadsheet},
}

// Clean decodes an uploaded file into a Table.
//
// Column names are whitespace-trimmed and rows in which every cell is missing
// are dropped; everything else, including duplicate column names and
// partially missing rows, is kept in source order. When no strategy succeeds
// the returned error is an *UnreadableFileError carrying the last failure of a
// strategy that recognised the content.
func Clean(file RawFile, opt Options) (*Table, error) {
	log := opt.Logger
	if log == nil {
		log = slog.Default()
	}
	data, err := readAll(file, opt.MaxBytes)
	if err != nil {
		return nil, err
	}
	var lastErr error
	for _, s := range strategies {
		g, err := s.parse(data, opt)
		if err != nil {
			log.Debug("ingest strategy rejected file", "file", file.Name, "strategy", s.name, "error", err)
			// A strategy that does not recognise the container keeps the
			// earlier, more specific failure.
			if errors.Is(err, errNotLegacyWorkbook) && lastErr != nil {
				continue
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				err = &ParseError{Strategy: s.name, Err: err}
			}
			lastErr = err
			continue
		}
		t := buildTable(file.Name, s.name, g)
		log.Debug("ingested file", "file", file.Name, "strategy", s.name, "rows", len(t.Rows), "columns", len(t.Columns))
		return t, nil
	}
	return nil, &UnreadableFileError{Name: file.Name, Err: lastErr}
}

func readAll(file RawFile, limit int64) ([]byte, error) {
	if file.Reader == nil {
		return nil, fmt.Errorf("read %q: no content", file.Name)
	}
	r := file.Reader
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", file.Name, err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, &TooLargeError{Name: file.Name, Limit: limit}
	}
	return data, nil
}

// missingMarkers are the cell spellings a dataframe reader treats as NaN by default.
var missingMarkers = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

func isMissing(s string) bool {
	_, ok := missingMarkers[s]
	return ok
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// buildTable applies column-kind inference and the cleaning rules to a raw grid.
func buildTable(name, format string, g *grid) *Table {
	ncol := len(g.header)
	t := &Table{Name: name, Format: format, Columns: make([]string, ncol), Kinds: make([]Kind, ncol)}
	for i, h := range g.header {
		t.Columns[i] = strings.TrimSpace(h)
	}
	// A column is numeric when every present cell parses as a number.
	for j := 0; j < ncol; j++ {
		kind := KindNumeric
		for _, rec := range g.rows {
			v := rec[j]
			if isMissing(v) {
				continue
			}
			if _, ok := parseNumber(v); !ok {
				kind = KindText
				break
			}
		}
		t.Kinds[j] = kind
	}
	t.Rows = make([]Row, 0, len(g.rows))
	for _, rec := range g.rows {
		row := make(Row, ncol)
		present := false
		for j := 0; j < ncol; j++ {
			v := rec[j]
			if isMissing(v) {
				continue
			}
			present = true
			if t.Kinds[j] == KindNumeric {
				f, _ := parseNumber(v)
				row[j] = Value{Kind: Number, Text: strings.TrimSpace(v), Number: f}
			} else {
				row[j] = Value{Kind: String, Text: v}
			}
		}
		if present {
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}

func unnamed(i int) string { return "Unnamed: " + strconv.Itoa(i) }
