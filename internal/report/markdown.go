package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/algorzen/insight-reporter/internal/dataset"
)

// Markdown renders a terminal-friendly summary of the Result.
func (r *Result) Markdown() string {
	var b strings.Builder
	b.WriteString("[ANALYSIS SUMMARY]\n")
	if r.Meta.Dataset != "" {
		fmt.Fprintf(&b, "Dataset: %s\n", r.Meta.Dataset)
	}
	fmt.Fprintf(&b, "Type: %s\n", r.Meta.DatasetType)
	fmt.Fprintf(&b, "Records: %d\n", r.Meta.RecordCount)
	fmt.Fprintf(&b, "Narrative: %s\n", r.Meta.GenerationMethod)
	if r.Degraded {
		b.WriteString("Degraded: yes\n")
	}
	b.WriteString("\n[SCHEMA]\n")
	for _, c := range r.Profile.Columns {
		fmt.Fprintf(&b, "- %s: %s (missing %.1f%%)", c.Name, c.Type, c.MissingPct)
		switch {
		case c.Type == dataset.Numeric && c.Numeric != nil:
			fmt.Fprintf(&b, " — min %.4g, max %.4g, mean %.4g, median %.4g, std %.4g",
				c.Numeric.Min, c.Numeric.Max, c.Numeric.Mean, c.Numeric.Median, c.Numeric.Std)
		case c.Type == dataset.Categorical && c.Categorical != nil:
			if len(c.Categorical.TopValues) > 0 {
				b.WriteString(" — top: ")
				for i, kv := range c.Categorical.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					fmt.Fprintf(&b, "%s(%d)", kv.Value, kv.Count)
				}
				if c.Categorical.Unique > len(c.Categorical.TopValues) {
					fmt.Fprintf(&b, "; unique=%d", c.Categorical.Unique)
				}
			}
		case c.Type == dataset.Datetime && c.Datetime != nil:
			fmt.Fprintf(&b, " — %s to %s (%d days)",
				c.Datetime.Min.Format("2006-01-02"), c.Datetime.Max.Format("2006-01-02"), c.Datetime.RangeDays)
		}
		b.WriteString("\n")
	}
	if r.Profile.Corr != nil {
		b.WriteString("\n[TOP CORRELATIONS]\n")
		for _, p := range topCorrelations(r.Profile.Corr.Columns, r.Profile.Corr.Values, 5) {
			fmt.Fprintf(&b, "- %s ~ %s: r=%.2f\n", p.a, p.b, p.r)
		}
	}
	b.WriteString("\n[KPI]\n")
	names := make([]string, 0, len(r.KPIs.Metrics))
	for name := range r.KPIs.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "- %s: %v\n", name, r.KPIs.Metrics[name])
	}
	b.WriteString("\n[EXECUTIVE SUMMARY]\n")
	b.WriteString(r.Narrative.Summary)
	b.WriteString("\n\n[KEY FINDINGS]\n")
	for _, f := range r.Narrative.Findings {
		fmt.Fprintf(&b, "- %s\n", f)
	}
	b.WriteString("\n[RECOMMENDATIONS]\n")
	for _, rec := range r.Narrative.Recommendations {
		fmt.Fprintf(&b, "- %s\n", rec)
	}
	b.WriteString("\n[RISKS & LIMITATIONS]\n")
	for _, risk := range r.Narrative.Risks {
		fmt.Fprintf(&b, "- %s\n", risk)
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[WARNINGS]\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return b.String()
}

type pairCorr struct {
	a, b string
	r    float64
}

func topCorrelations(cols []string, vals [][]float64, limit int) []pairCorr {
	var pairs []pairCorr
	for i := 1; i < len(cols); i++ {
		for j := 0; j < i; j++ {
			pairs = append(pairs, pairCorr{a: cols[j], b: cols[i], r: vals[i][j]})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		ai, aj := abs(pairs[i].r), abs(pairs[j].r)
		if ai == aj {
			return pairs[i].a+pairs[i].b < pairs[j].a+pairs[j].b
		}
		return ai > aj
	})
	if len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
