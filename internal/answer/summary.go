package answer

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/dataqa-cli/internal/ingest"
)

// DefaultSampleRows is how many leading rows a summary carries. It is fixed:
// the prompt size must not depend on configuration.
const DefaultSampleRows = 3

// Summary is the bounded digest of a table sent to the model. It never holds
// more than its sample rows, whatever the table size.
type Summary struct {
	Columns    []string `json:"columns"`
	RowCount   int      `json:"row_count"`
	SampleRows int      `json:"sample_rows"`
	// Sample is the header plus the sample rows rendered as aligned text.
	Sample string `json:"sample"`
}

// BuildSummary digests t using the first min(DefaultSampleRows, rows) rows.
func BuildSummary(t *ingest.Table) Summary {
	n := t.NumRows()
	if DefaultSampleRows < n {
		n = DefaultSampleRows
	}
	return Summary{
		Columns:    append([]string(nil), t.Columns...),
		RowCount:   t.NumRows(),
		SampleRows: n,
		Sample:     t.Preview(n),
	}
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Columns: %s\n", formatColumns(s.Columns))
	fmt.Fprintf(&b, "Total rows: %d\n", s.RowCount)
	b.WriteString("Sample rows:\n")
	b.WriteString(s.Sample)
	return b.String()
}

func formatColumns(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
