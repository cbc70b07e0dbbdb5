package ingest

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"
	"unicode/utf16"
)

const (
	cfbEndOfChain = 0xFFFFFFFE
	cfbFreeSect   = 0xFFFFFFFF
	cfbFATSect    = 0xFFFFFFFD
)

// legacyWorkbook builds a one-sheet BIFF8 workbook inside a minimal compound
// file: header, one FAT sector, one directory sector and the Workbook stream.
// Cells are ASCII strings or float64; rows may be empty.
func legacyWorkbook(t *testing.T, sheet string, rows [][]any) []byte {
	t.Helper()
	le := binary.LittleEndian
	record := func(buf *bytes.Buffer, id uint16, body []byte) {
		var h [4]byte
		le.PutUint16(h[0:], id)
		le.PutUint16(h[2:], uint16(len(body)))
		buf.Write(h[:])
		buf.Write(body)
	}
	bof := func(kind uint16) []byte {
		b := make([]byte, 16)
		le.PutUint16(b[0:], 0x0600)
		le.PutUint16(b[2:], kind)
		return b
	}

	var ws bytes.Buffer
	record(&ws, 0x0809, bof(0x0010))
	for r, cells := range rows {
		info := make([]byte, 16)
		le.PutUint16(info[0:], uint16(r))
		le.PutUint16(info[4:], uint16(len(cells)))
		le.PutUint16(info[6:], 0x00FF)
		le.PutUint32(info[12:], 0x0100)
		record(&ws, 0x0208, info)
		for c, v := range cells {
			switch v := v.(type) {
			case string:
				body := make([]byte, 9, 9+len(v))
				le.PutUint16(body[0:], uint16(r))
				le.PutUint16(body[2:], uint16(c))
				le.PutUint16(body[4:], 0x0F)
				le.PutUint16(body[6:], uint16(len(v)))
				record(&ws, 0x0204, append(body, v...))
			case float64:
				body := make([]byte, 14)
				le.PutUint16(body[0:], uint16(r))
				le.PutUint16(body[2:], uint16(c))
				le.PutUint16(body[4:], 0x0F)
				le.PutUint64(body[6:], math.Float64bits(v))
				record(&ws, 0x0203, body)
			case nil:
			default:
				t.Fatalf("unsupported cell %T", v)
			}
		}
	}
	record(&ws, 0x000A, nil)

	bound := make([]byte, 8, 8+len(sheet))
	bound[6] = byte(len(sheet))
	bound = append(bound, sheet...)
	le.PutUint32(bound[0:], uint32((4+16)+(4+len(bound))+4))

	var stream bytes.Buffer
	record(&stream, 0x0809, bof(0x0005))
	record(&stream, 0x0085, bound)
	record(&stream, 0x000A, nil)
	stream.Write(ws.Bytes())
	// Streams under 4096 bytes would live in the mini stream.
	for stream.Len() < 4096 || stream.Len()%512 != 0 {
		stream.WriteByte(0)
	}
	nsec := stream.Len() / 512

	header := make([]byte, 512)
	copy(header, oleMagic)
	le.PutUint16(header[24:], 0x003E)
	le.PutUint16(header[26:], 0x0003)
	le.PutUint16(header[28:], 0xFFFE)
	le.PutUint16(header[30:], 9)
	le.PutUint16(header[32:], 6)
	le.PutUint32(header[44:], 1)
	le.PutUint32(header[48:], 1)
	le.PutUint32(header[56:], 4096)
	le.PutUint32(header[60:], cfbEndOfChain)
	le.PutUint32(header[68:], cfbEndOfChain)
	le.PutUint32(header[76:], 0)
	for i := 1; i < 109; i++ {
		le.PutUint32(header[76+4*i:], cfbFreeSect)
	}

	fat := make([]byte, 512)
	for i := 0; i < 128; i++ {
		le.PutUint32(fat[4*i:], cfbFreeSect)
	}
	le.PutUint32(fat[0:], cfbFATSect)
	le.PutUint32(fat[4:], cfbEndOfChain)
	for i := 0; i < nsec; i++ {
		next := uint32(3 + i)
		if i == nsec-1 {
			next = cfbEndOfChain
		}
		le.PutUint32(fat[4*(2+i):], next)
	}

	entry := func(name string, kind byte, child, start, size uint32) []byte {
		e := make([]byte, 128)
		if name != "" {
			u := utf16.Encode([]rune(name))
			for i, c := range u {
				le.PutUint16(e[2*i:], c)
			}
			le.PutUint16(e[64:], uint16(2*(len(u)+1)))
		}
		e[66] = kind
		e[67] = 1
		le.PutUint32(e[68:], cfbFreeSect)
		le.PutUint32(e[72:], cfbFreeSect)
		le.PutUint32(e[76:], child)
		le.PutUint32(e[116:], start)
		le.PutUint32(e[120:], size)
		return e
	}
	var dir bytes.Buffer
	dir.Write(entry("Root Entry", 5, 1, cfbEndOfChain, 0))
	dir.Write(entry("Workbook", 2, cfbFreeSect, 2, uint32(stream.Len())))
	dir.Write(entry("", 0, cfbFreeSect, 0, 0))
	dir.Write(entry("", 0, cfbFreeSect, 0, 0))

	var out bytes.Buffer
	out.Write(header)
	out.Write(fat)
	out.Write(dir.Bytes())
	out.Write(stream.Bytes())
	return out.Bytes()
}

func TestCleanReadsLegacySpreadsheet(t *testing.T) {
	data := legacyWorkbook(t, "Orders", [][]any{
		{" Invoice ", "Customer", "Total"},
		{1001.0, "Acme", 250.5},
		{},
		{1002.0, "Globex", 99.0},
	})
	tbl, err := Clean(RawFile{Name: "invoices.xls", Reader: bytes.NewReader(data)}, DefaultOptions())
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if tbl.Format != "xls" {
		t.Fatalf("format = %q, want xls", tbl.Format)
	}
	if len(tbl.Columns) != 3 || tbl.Columns[0] != "Invoice" || tbl.Columns[2] != "Total" {
		t.Fatalf("columns = %q", tbl.Columns)
	}
	if tbl.NumRows() != 2 {
		t.Fatalf("rows = %d, want 2", tbl.NumRows())
	}
	if tbl.Kinds[0] != KindNumeric || tbl.Kinds[1] != KindText || tbl.Kinds[2] != KindNumeric {
		t.Fatalf("kinds = %v", tbl.Kinds)
	}
	if tbl.Rows[0][2].Number != 250.5 || tbl.Rows[1][1].Text != "Globex" || tbl.Rows[1][0].String() != "1002" {
		t.Fatalf("unexpected rows %+v", tbl.Rows)
	}
}

func TestCleanLegacySpreadsheetSheetSelection(t *testing.T) {
	data := legacyWorkbook(t, "Orders", [][]any{{"a"}, {1.0}})
	opt := DefaultOptions()
	opt.SheetName = "missing"
	_, err := Clean(RawFile{Name: "book.xls", Reader: bytes.NewReader(data)}, opt)
	if err == nil || !strings.Contains(err.Error(), "Orders") {
		t.Fatalf("expected sheet-not-found error listing Orders, got %v", err)
	}
	opt.SheetName = "orders"
	tbl, err := Clean(RawFile{Name: "book.xls", Reader: bytes.NewReader(data)}, opt)
	if err != nil {
		t.Fatalf("case-insensitive sheet lookup failed: %v", err)
	}
	if tbl.NumRows() != 1 || tbl.Columns[0] != "a" {
		t.Fatalf("unexpected table %+v", tbl)
	}
}

func TestParseLegacySpreadsheetRejectsOtherContent(t *testing.T) {
	if _, err := parseLegacySpreadsheet([]byte("a,b\n1,2\n"), DefaultOptions()); !errors.Is(err, errNotLegacyWorkbook) {
		t.Fatalf("text: err = %v, want errNotLegacyWorkbook", err)
	}
	xlsx := xlsxBytes(t, [][]any{{"a"}, {1}})
	if _, err := parseLegacySpreadsheet(xlsx, DefaultOptions()); !errors.Is(err, errNotLegacyWorkbook) {
		t.Fatalf("xlsx: err = %v, want errNotLegacyWorkbook", err)
	}
	data := legacyWorkbook(t, "Orders", [][]any{{"a"}, {1.0}})
	if _, err := parseLegacySpreadsheet(data[:600], DefaultOptions()); err == nil {
		t.Fatal("expected truncated compound file to fail")
	}
}
