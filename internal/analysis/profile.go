package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/dataqa-cli/internal/ingest"
)

// Options controls how a table is profiled.
type Options struct {
	// TopValues is how many frequent values to keep per text column.
	TopValues int
	// CategoricalMaxUnique marks a text column categorical when it has at most
	// this many distinct values.
	CategoricalMaxUnique int
	// OutlierThreshold counts numeric values with robust |z| above it. 0 disables.
	OutlierThreshold float64
}

// DefaultOptions returns reasonable defaults for dataset profiling.
func DefaultOptions() Options {
	return Options{
		TopValues:            5,
		CategoricalMaxUnique: 50,
		OutlierThreshold:     3.5,
	}
}

// Report summarizes every column of a cleaned table.
type Report struct {
	Name     string          `json:"name"`
	Format   string          `json:"format"`
	Rows     int             `json:"rows"`
	Cols     []ColumnSummary `json:"columns"`
	Warnings []string        `json:"warnings,omitempty"`
}

// ColumnSummary captures statistics per column.
type ColumnSummary struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"` // numeric|categorical|text
	NonNull int    `json:"non_null"`
	Missing int    `json:"missing"`
	Unique  int    `json:"unique"`
	// Numeric stats
	Min    float64 `json:"min,omitempty"`
	Max    float64 `json:"max,omitempty"`
	Mean   float64 `json:"mean,omitempty"`
	Median float64 `json:"median,omitempty"`
	Std    float64 `json:"std,omitempty"`
	// Outliers (robust Z via MAD)
	OutliersCount int `json:"outliers,omitempty"`
	// Categorical top values
	TopValues []CategoryCount `json:"top_values,omitempty"`
}

type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Describe profiles t column by column. It only reads the table.
func Describe(t *ingest.Table, opt Options) *Report {
	if opt.TopValues <= 0 {
		opt.TopValues = DefaultOptions().TopValues
	}
	if opt.CategoricalMaxUnique <= 0 {
		opt.CategoricalMaxUnique = DefaultOptions().CategoricalMaxUnique
	}
	r := &Report{Name: t.Name, Format: t.Format, Rows: t.NumRows()}
	seen := map[string]int{}
	for i, name := range t.Columns {
		seen[name]++
		if seen[name] == 2 {
			r.Warnings = append(r.Warnings, fmt.Sprintf("column %q appears more than once", name))
		}
		kind := ingest.KindText
		if i < len(t.Kinds) {
			kind = t.Kinds[i]
		}
		r.Cols = append(r.Cols, describeColumn(t, i, name, kind, opt))
	}
	for _, c := range r.Cols {
		if c.NonNull == 0 && r.Rows > 0 {
			r.Warnings = append(r.Warnings, fmt.Sprintf("column %q is empty", c.Name))
		}
	}
	return r
}

func describeColumn(t *ingest.Table, idx int, name string, kind ingest.Kind, opt Options) ColumnSummary {
	cs := ColumnSummary{Name: name, Kind: string(kind)}
	counts := map[string]int{}
	var nums []float64
	for _, row := range t.Rows {
		if idx >= len(row) || row[idx].IsMissing() {
			cs.Missing++
			continue
		}
		v := row[idx]
		cs.NonNull++
		counts[v.Text]++
		if kind == ingest.KindNumeric && v.Kind == ingest.Number {
			nums = append(nums, v.Number)
		}
	}
	cs.Unique = len(counts)

	if kind == ingest.KindNumeric {
		fillNumeric(&cs, nums, opt.OutlierThreshold)
		return cs
	}
	if cs.Unique > 0 && cs.Unique <= opt.CategoricalMaxUnique {
		cs.Kind = "categorical"
	}
	cs.TopValues = topValues(counts, opt.TopValues)
	return cs
}

func fillNumeric(cs *ColumnSummary, nums []float64, threshold float64) {
	if len(nums) == 0 {
		return
	}
	cs.Min, cs.Max = nums[0], nums[0]
	var sum float64
	for _, x := range nums {
		sum += x
		cs.Min = math.Min(cs.Min, x)
		cs.Max = math.Max(cs.Max, x)
	}
	cs.Mean = sum / float64(len(nums))
	if len(nums) > 1 {
		var ss float64
		for _, x := range nums {
			d := x - cs.Mean
			ss += d * d
		}
		cs.Std = math.Sqrt(ss / float64(len(nums)-1))
	}
	median, mad := medianMAD(nums)
	cs.Median = median
	if threshold > 0 && mad > 0 {
		for _, x := range nums {
			// 0.6745 scales MAD to a standard deviation for normal data
			if z := 0.6745 * (x - median) / mad; math.Abs(z) > threshold {
				cs.OutliersCount++
			}
		}
	}
}

func topValues(counts map[string]int, limit int) []CategoryCount {
	out := make([]CategoryCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, CategoryCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Markdown renders a compact report for terminals and docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		fmt.Fprintf(&b, "File: %s (%s)\n", r.Name, r.Format)
	}
	fmt.Fprintf(&b, "Rows: %d\n", r.Rows)
	fmt.Fprintf(&b, "Columns: %d\n\n", len(r.Cols))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		fmt.Fprintf(&b, "- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.NonNull, missPct)
		switch c.Kind {
		case "numeric":
			if c.NonNull > 0 {
				fmt.Fprintf(&b, ": min %.4g, max %.4g, mean %.4g, median %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Median, c.Std)
			}
			if c.OutliersCount > 0 {
				fmt.Fprintf(&b, "; outliers: %d", c.OutliersCount)
			}
		case "categorical", "text":
			if len(c.TopValues) > 0 {
				b.WriteString(": top ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					fmt.Fprintf(&b, "%s(%d)", safeVal(kv.Value), kv.Count)
				}
				if c.Unique > len(c.TopValues) {
					fmt.Fprintf(&b, "; unique=%d", c.Unique)
				}
			}
		}
		b.WriteString("\n")
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string {
	s = strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/")
	if r := []rune(s); len(r) > 40 {
		s = string(r[:37]) + "..."
	}
	return s
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
