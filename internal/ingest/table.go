package ingest

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the inferred type of a column.
type Kind string

const (
	KindNumeric Kind = "numeric"
	KindText    Kind = "text"
)

// ValueKind tags a single cell.
type ValueKind int

const (
	Missing ValueKind = iota
	String
	Number
)

// Value is one cell of a cleaned table.
type Value struct {
	Kind ValueKind
	// Text is the cell as it appeared in the source. Empty for missing cells.
	Text   string
	Number float64
}

// IsMissing reports whether the cell holds no value.
func (v Value) IsMissing() bool { return v.Kind == Missing }

// String renders the cell for previews and prompts. Missing cells render as
// NaN and numbers in their shortest form, so "10.50" reads as 10.5.
func (v Value) String() string {
	switch v.Kind {
	case Missing:
		return "NaN"
	case Number:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	}
	return v.Text
}

// Row is positional: Row[i] belongs to Table.Columns[i].
type Row []Value

// Table is a cleaned, rectangular dataset. It is not modified after Clean returns.
type Table struct {
	Name    string
	Format  string
	Columns []string
	Kinds   []Kind
	Rows    []Row
}

// Metadata is the shape of a table without its rows.
type Metadata struct {
	Name     string   `json:"name"`
	Format   string   `json:"format"`
	RowCount int      `json:"row_count"`
	Columns  []string `json:"columns"`
	Kinds    []Kind   `json:"kinds"`
}

// NumRows returns the number of retained rows.
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Metadata summarizes the table shape.
func (t *Table) Metadata() Metadata {
	return Metadata{
		Name:     t.Name,
		Format:   t.Format,
		RowCount: len(t.Rows),
		Columns:  append([]string(nil), t.Columns...),
		Kinds:    append([]Kind(nil), t.Kinds...),
	}
}

// Head returns at most the first n rows.
func (t *Table) Head(n int) []Row {
	if n < 0 {
		n = 0
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return t.Rows[:n]
}

// Preview renders the header and the first n rows as aligned text columns.
// Numeric columns are right-aligned, text columns left-aligned.
func (t *Table) Preview(n int) string {
	rows := t.Head(n)
	if len(t.Columns) == 0 {
		return ""
	}
	cells := make([][]string, 0, len(rows)+1)
	cells = append(cells, append([]string(nil), t.Columns...))
	for _, r := range rows {
		line := make([]string, len(t.Columns))
		for i := range t.Columns {
			if i < len(r) {
				line[i] = oneLine(r[i].String())
			}
		}
		cells = append(cells, line)
	}
	widths := make([]int, len(t.Columns))
	for _, line := range cells {
		for i, s := range line {
			if w := len([]rune(s)); w > widths[i] {
				widths[i] = w
			}
		}
	}
	var b strings.Builder
	for li, line := range cells {
		if li > 0 {
			b.WriteString("\n")
		}
		var lb strings.Builder
		for i, s := range line {
			if i > 0 {
				lb.WriteString("  ")
			}
			if i < len(t.Kinds) && t.Kinds[i] == KindNumeric {
				fmt.Fprintf(&lb, "%*s", widths[i], s)
			} else {
				fmt.Fprintf(&lb, "%-*s", widths[i], s)
			}
		}
		b.WriteString(strings.TrimRight(lb.String(), " "))
	}
	return b.String()
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")

func oneLine(s string) string { return lineBreaks.Replace(s) }
