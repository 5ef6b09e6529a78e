package dataset

import (
	"fmt"
	"strings"
)

// Strength labels a Cramér's V value with the chi-square effect-size bands.
func Strength(v float64) string {
	switch {
	case v < 0.1:
		return "weak"
	case v < 0.3:
		return "moderate"
	case v < 0.5:
		return "strong"
	default:
		return "very strong"
	}
}

// Markdown renders a compact per-sample report of the prepared table.
func (t *Table) Markdown() string {
	var b strings.Builder
	b.WriteString("[CRAMER'S V SUMMARY]\n")
	if t.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", t.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d (kept %d)\n", t.Rows, t.Kept))
	subs := Subclusters(t.Records)
	b.WriteString(fmt.Sprintf("Subclusters: %d\n\n", len(subs)))

	groups := SampleOrder(t.Records)
	b.WriteString("[SAMPLES BY MEDIAN]\n")
	b.WriteString("| Sample | n | median | q1 | q3 | mean | std | strength | subclusters |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- | --- | --- | --- |\n")
	for _, g := range groups {
		b.WriteString(fmt.Sprintf("| %s | %d | %.4g | %.4g | %.4g | %.4g | %.4g | %s | %s |\n",
			safeVal(g.Sample), len(g.Values), g.Median, g.Q1, g.Q3, g.Mean, g.Std,
			Strength(g.Median), safeVal(strings.Join(g.Subclusters, ", "))))
	}
	if len(t.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range t.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
