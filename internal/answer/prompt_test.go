package answer

import (
	"strings"
	"testing"
)

func TestBuildPromptOrder(t *testing.T) {
	s := Summary{Columns: []string{"Name", "Age"}, RowCount: 2, SampleRows: 2, Sample: "Name   Age\nAlice   30\nBob      4"}
	p := BuildPrompt(Invoice, s, "  who is oldest?\n")
	parts := []string{
		"You are an AI assistant.",
		"Answer using ONLY the dataset summary below.",
		"Dataset Type: Invoice",
		`Columns: ["Name", "Age"]`,
		"Total rows: 2",
		"Sample rows:\nName   Age",
		"Question:\nwho is oldest?\n",
		"Give a short and clear answer.",
	}
	pos := 0
	for _, part := range parts {
		i := strings.Index(p[pos:], part)
		if i < 0 {
			t.Fatalf("prompt missing %q after offset %d:\n%s", part, pos, p)
		}
		pos += i + len(part)
	}
}

func TestBuildPromptDoesNotExpandPlaceholdersInQuestion(t *testing.T) {
	p := BuildPrompt(Sales, Summary{}, "what is {{type}}?")
	if !strings.Contains(p, "what is {{type}}?") {
		t.Fatalf("question was rewritten:\n%s", p)
	}
}

func TestParseDatasetType(t *testing.T) {
	for _, in := range []string{"sales", " Manufacturing ", "INVOICE", "purchase", "Inventory"} {
		dt, err := ParseDatasetType(in)
		if err != nil || !dt.Valid() {
			t.Fatalf("ParseDatasetType(%q) = %q, %v", in, dt, err)
		}
	}
	if _, err := ParseDatasetType("payroll"); err == nil || !strings.Contains(err.Error(), "Sales") {
		t.Fatalf("expected error listing valid types, got %v", err)
	}
	if len(DatasetTypes()) != 5 {
		t.Fatalf("expected 5 dataset types")
	}
}
