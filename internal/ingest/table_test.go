package ingest

import (
	"strings"
	"testing"
)

func TestPreviewAlignsColumns(t *testing.T) {
	tbl, err := cleanString(t, "people.csv", "Name,Age\nAlice,30\nBob,4\nCarol,\n")
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	got := tbl.Preview(2)
	want := "Name   Age\n" +
		"Alice   30\n" +
		"Bob      4"
	if got != want {
		t.Fatalf("Preview:\n%s\nwant:\n%s", got, want)
	}
	if !strings.Contains(tbl.Preview(5), "NaN") {
		t.Fatalf("expected missing cell rendered as NaN:\n%s", tbl.Preview(5))
	}
}

func TestHeadBounds(t *testing.T) {
	tbl := &Table{Columns: []string{"a"}, Kinds: []Kind{KindText}, Rows: []Row{{{Kind: String, Text: "x"}}}}
	if n := len(tbl.Head(3)); n != 1 {
		t.Fatalf("Head(3) = %d rows, want 1", n)
	}
	if n := len(tbl.Head(-1)); n != 0 {
		t.Fatalf("Head(-1) = %d rows, want 0", n)
	}
	md := tbl.Metadata()
	if md.RowCount != 1 || md.Columns[0] != "a" {
		t.Fatalf("unexpected metadata %+v", md)
	}
}

func TestPreviewFlattensMultilineCells(t *testing.T) {
	tbl, err := cleanString(t, "notes.csv", "id,note\n1,\"first\nsecond\"\n")
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if strings.Count(tbl.Preview(1), "\n") != 1 {
		t.Fatalf("expected one line per row:\n%s", tbl.Preview(1))
	}
}

func TestValueStringShortestNumber(t *testing.T) {
	tbl, err := cleanString(t, "prices.csv", "sku,price\nA,10.50\nB,1e3\nC,007\n")
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	want := []string{"10.5", "1000", "7"}
	for i, w := range want {
		if got := tbl.Rows[i][1].String(); got != w {
			t.Fatalf("row %d price = %q, want %q", i, got, w)
		}
	}
	if got := tbl.Rows[0][1].Text; got != "10.50" {
		t.Fatalf("source text = %q, want 10.50", got)
	}
}
