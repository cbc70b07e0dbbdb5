package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

var (
	errNoHeader         = errors.New("no header row")
	errDelimiterInField = errors.New("header is a single field containing another delimiter")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var candidateDelimiters = []rune{',', ';', '\t'}

func delimited(comma rune) func([]byte, Options) (*grid, error) {
	return func(data []byte, _ Options) (*grid, error) {
		return parseDelimited(data, comma)
	}
}

func delimiterName(comma rune) string {
	switch comma {
	case ',':
		return "csv"
	case ';':
		return "csv-semicolon"
	case '\t':
		return "tsv"
	}
	return string(comma)
}

// parseDelimited reads a header plus records. Short records are padded; a
// record wider than the header is a delimiter failure.
func parseDelimited(data []byte, comma rune) (*grid, error) {
	name := delimiterName(comma)
	if !utf8.Valid(data) || bytes.IndexByte(data, 0) >= 0 {
		return nil, &ParseError{Strategy: name, Err: errNotText}
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Strategy: name, Err: errNoHeader}
		}
		return nil, &ParseError{Strategy: name, Err: err}
	}
	if len(header) == 1 && hasOtherDelimiter(data, header[0], comma) {
		return nil, &ParseError{Strategy: name, Line: 1, Err: errDelimiterInField}
	}
	ncol := len(header)
	g := &grid{header: make([]string, ncol)}
	for i, h := range header {
		if h == "" {
			h = unnamed(i)
		}
		g.header[i] = h
	}
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &ParseError{Strategy: name, Err: err}
		}
		if len(rec) > ncol {
			line, _ := r.FieldPos(0)
			return nil, &ParseError{Strategy: name, Line: line, Err: fmt.Errorf("expected %d fields, saw %d", ncol, len(rec))}
		}
		if len(rec) < ncol {
			padded := make([]string, ncol)
			copy(padded, rec)
			rec = padded
		}
		g.rows = append(g.rows, rec)
	}
	return g, nil
}

// hasOtherDelimiter reports whether a single-field header is really a wider
// table under another candidate delimiter. The header alone is not enough:
// every data row must split to the same width too.
func hasOtherDelimiter(data []byte, field string, comma rune) bool {
	for _, d := range candidateDelimiters {
		if d != comma && strings.ContainsRune(field, d) && splitsEvenly(data, d) {
			return true
		}
	}
	return false
}

func splitsEvenly(data []byte, comma rune) bool {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	header, err := r.Read()
	if err != nil || len(header) < 2 {
		return false
	}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return true
		}
		if err != nil || len(rec) != len(header) {
			return false
		}
	}
}
