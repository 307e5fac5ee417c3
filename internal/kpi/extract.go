package kpi

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/algorzen/insight-reporter/internal/dataset"
	"github.com/algorzen/insight-reporter/internal/profile"
)

// Set is the extracted metric mapping for one analysis run. Values are
// either float64 (pure aggregates) or preformatted strings (compound
// metrics such as ranges), so the whole set serializes to plain JSON.
type Set struct {
	DatasetType string         `json:"dataset_type"`
	Metrics     map[string]any `json:"metrics"`
}

// Warning records a KPI category whose source column was not found.
// Non-fatal: the dependent metrics are simply absent from the Set.
type Warning struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (w Warning) String() string { return fmt.Sprintf("%s: %s", w.Field, w.Reason) }

// Catalog lists every metric a domain can produce. A Set's keys are
// always a subset of its domain's catalog.
var Catalog = map[string][]string{
	profile.TypeSales: {
		"Total Revenue", "Average Order Value", "Revenue Std Dev",
		"Total Units Sold", "Avg Units per Transaction",
		"Unique Products", "Top Product",
		"Average Margin", "Margin Range",
		"Data Period Days", "Avg Transactions per Day",
	},
	profile.TypeFinance: {
		"Total Balance", "Average Balance", "Median Balance",
		"Total Debits", "Average Debit",
		"Total Credits", "Average Credit",
		"Net Position", "Total Accounts",
		"Transaction Types", "Most Common Transaction",
	},
	profile.TypeCustomer: {
		"Total Customers", "Churn Rate", "Retention Rate",
		"Average Tenure", "Tenure Range",
		"Customer Segments", "Largest Segment",
		"Avg Customer Value", "Total Customer Value", "Median Customer Value",
	},
	profile.TypeGeneral: {
		"Total Records", "Total Columns", "Data Completeness",
		"Numeric Columns", "Categorical Columns",
		"Highest Average", "Most Diverse Column",
	},
}

// Extract dispatches on the dataset type and computes its metrics.
// It never fails: missing source columns surface as warnings with the
// dependent metrics absent. Each extractor is independent and assumes
// nothing about the others.
func Extract(ds *dataset.Dataset, datasetType string) (*Set, []Warning) {
	set := &Set{DatasetType: datasetType, Metrics: map[string]any{}}
	var warns []Warning
	switch datasetType {
	case profile.TypeSales:
		warns = extractSales(ds, set)
	case profile.TypeFinance:
		warns = extractFinance(ds, set)
	case profile.TypeCustomer:
		warns = extractCustomer(ds, set)
	default:
		extractGeneral(ds, set)
	}
	return set, warns
}

func extractSales(ds *dataset.Dataset, set *Set) []Warning {
	var warns []Warning

	if c := numericColumn(ds, salesRules[0].Synonyms); c != nil {
		vals := c.NumericValues()
		set.Metrics["Total Revenue"] = sum(vals)
		set.Metrics["Average Order Value"] = mean(vals)
		set.Metrics["Revenue Std Dev"] = std(vals)
	} else {
		warns = append(warns, Warning{Field: "revenue", Reason: "no revenue-like numeric column"})
	}

	if c := numericColumn(ds, salesRules[1].Synonyms); c != nil {
		vals := c.NumericValues()
		set.Metrics["Total Units Sold"] = sum(vals)
		set.Metrics["Avg Units per Transaction"] = mean(vals)
	} else {
		warns = append(warns, Warning{Field: "quantity", Reason: "no quantity-like numeric column"})
	}

	if c := resolve(ds, salesRules[2].Synonyms); c != nil && c.Type == dataset.Categorical {
		vals := c.StringValues()
		set.Metrics["Unique Products"] = float64(unique(vals))
		if top, n := topValue(vals); n > 0 {
			set.Metrics["Top Product"] = fmt.Sprintf("%s (%d sales)", top, n)
		}
	} else {
		warns = append(warns, Warning{Field: "product", Reason: "no product-like column"})
	}

	if c := numericColumn(ds, salesRules[3].Synonyms); c != nil {
		vals := c.NumericValues()
		if len(vals) > 0 {
			set.Metrics["Average Margin"] = mean(vals)
			set.Metrics["Margin Range"] = fmt.Sprintf("%.2f%% - %.2f%%", minOf(vals), maxOf(vals))
		}
	}

	if c := resolve(ds, salesRules[4].Synonyms); c != nil && c.Type == dataset.Datetime {
		if days, ok := rangeDays(c); ok {
			set.Metrics["Data Period Days"] = float64(days)
			if days > 0 {
				set.Metrics["Avg Transactions per Day"] = float64(ds.Rows()) / float64(days)
			}
		}
	}
	return warns
}

func extractFinance(ds *dataset.Dataset, set *Set) []Warning {
	var warns []Warning

	if c := numericColumn(ds, financeRules[0].Synonyms); c != nil {
		vals := c.NumericValues()
		set.Metrics["Total Balance"] = sum(vals)
		set.Metrics["Average Balance"] = mean(vals)
		set.Metrics["Median Balance"] = median(vals)
	} else {
		warns = append(warns, Warning{Field: "balance", Reason: "no balance-like numeric column"})
	}

	debit := numericColumn(ds, financeRules[1].Synonyms)
	if debit != nil {
		vals := debit.NumericValues()
		set.Metrics["Total Debits"] = sum(vals)
		set.Metrics["Average Debit"] = mean(vals)
	}
	credit := numericColumn(ds, financeRules[2].Synonyms)
	if credit != nil {
		vals := credit.NumericValues()
		set.Metrics["Total Credits"] = sum(vals)
		set.Metrics["Average Credit"] = mean(vals)
	}
	if debit != nil && credit != nil {
		set.Metrics["Net Position"] = sum(credit.NumericValues()) - sum(debit.NumericValues())
	}
	if debit == nil && credit == nil {
		warns = append(warns, Warning{Field: "transaction flows", Reason: "no debit- or credit-like numeric column"})
	}

	if c := resolve(ds, financeRules[3].Synonyms); c != nil {
		set.Metrics["Total Accounts"] = float64(uniqueAny(c))
	}

	if c := resolve(ds, financeRules[4].Synonyms); c != nil && c.Type == dataset.Categorical {
		vals := c.StringValues()
		set.Metrics["Transaction Types"] = float64(unique(vals))
		if top, n := topValue(vals); n > 0 {
			set.Metrics["Most Common Transaction"] = top
		}
	}
	return warns
}

func extractCustomer(ds *dataset.Dataset, set *Set) []Warning {
	var warns []Warning

	if c := resolve(ds, customerRules[0].Synonyms); c != nil {
		set.Metrics["Total Customers"] = float64(uniqueAny(c))
	}

	if c := resolve(ds, customerRules[1].Synonyms); c != nil && ds.Rows() > 0 {
		// Numeric churn columns are summed, so fractional churn scores
		// contribute proportionally; text columns count churn markers.
		var churned float64
		switch c.Type {
		case dataset.Numeric:
			churned = sum(c.NumericValues())
		default:
			for _, v := range c.StringValues() {
				switch strings.ToLower(v) {
				case "yes", "true", "1", "churned":
					churned++
				}
			}
		}
		rate := churned * 100 / float64(ds.Rows())
		set.Metrics["Churn Rate"] = rate
		set.Metrics["Retention Rate"] = 100 - rate
	} else {
		warns = append(warns, Warning{Field: "churn", Reason: "no churn-like column"})
	}

	if c := numericColumn(ds, customerRules[2].Synonyms); c != nil {
		vals := c.NumericValues()
		if len(vals) > 0 {
			set.Metrics["Average Tenure"] = mean(vals)
			set.Metrics["Tenure Range"] = fmt.Sprintf("%.0f - %.0f", minOf(vals), maxOf(vals))
		}
	}

	if c := resolve(ds, customerRules[3].Synonyms); c != nil && c.Type == dataset.Categorical && ds.Rows() > 0 {
		vals := c.StringValues()
		set.Metrics["Customer Segments"] = float64(unique(vals))
		if top, n := topValue(vals); n > 0 {
			pct := float64(n) * 100 / float64(ds.Rows())
			set.Metrics["Largest Segment"] = fmt.Sprintf("%s (%.1f%%)", top, pct)
		}
	}

	if c := numericColumn(ds, customerRules[4].Synonyms); c != nil {
		vals := c.NumericValues()
		set.Metrics["Avg Customer Value"] = mean(vals)
		set.Metrics["Total Customer Value"] = sum(vals)
		set.Metrics["Median Customer Value"] = median(vals)
	}
	return warns
}

// extractGeneral always succeeds: it depends only on table shape.
func extractGeneral(ds *dataset.Dataset, set *Set) {
	rows, cols := ds.Rows(), ds.Cols()
	set.Metrics["Total Records"] = float64(rows)
	set.Metrics["Total Columns"] = float64(cols)

	totalCells := rows * cols
	missing := 0
	for i := range ds.Columns {
		missing += ds.Columns[i].Missing()
	}
	completeness := 100.0
	if totalCells > 0 {
		completeness = float64(totalCells-missing) * 100 / float64(totalCells)
	}
	set.Metrics["Data Completeness"] = completeness

	var numeric, categorical int
	bestMean, bestMeanCol := 0.0, ""
	bestDiversity, bestDiverseCol, bestDiverseUnique := 0.0, "", 0
	for i := range ds.Columns {
		c := &ds.Columns[i]
		switch c.Type {
		case dataset.Numeric:
			numeric++
			if vals := c.NumericValues(); len(vals) > 0 {
				if m := mean(vals); bestMeanCol == "" || m > bestMean {
					bestMean, bestMeanCol = m, c.Name
				}
			}
		case dataset.Categorical:
			categorical++
			if rows > 0 {
				u := unique(c.StringValues())
				if d := float64(u) / float64(rows); bestDiverseCol == "" || d > bestDiversity {
					bestDiversity, bestDiverseCol, bestDiverseUnique = d, c.Name, u
				}
			}
		}
	}
	set.Metrics["Numeric Columns"] = float64(numeric)
	set.Metrics["Categorical Columns"] = float64(categorical)
	if bestMeanCol != "" {
		set.Metrics["Highest Average"] = fmt.Sprintf("%s (%.2f)", bestMeanCol, bestMean)
	}
	if bestDiverseCol != "" {
		set.Metrics["Most Diverse Column"] = fmt.Sprintf("%s (%d unique)", bestDiverseCol, bestDiverseUnique)
	}
}

// numericColumn resolves a field and keeps it only if it is numeric.
func numericColumn(ds *dataset.Dataset, synonyms []string) *dataset.Column {
	c := resolve(ds, synonyms)
	if c == nil || c.Type != dataset.Numeric {
		return nil
	}
	return c
}

func sum(vals []float64) float64 {
	var s float64
	for _, v := range vals {
		s += v
	}
	return s
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return sum(vals) / float64(len(vals))
}

func std(vals []float64) float64 {
	n := len(vals)
	if n < 2 {
		return 0
	}
	m := mean(vals)
	var m2 float64
	for _, v := range vals {
		m2 += (v - m) * (v - m)
	}
	return math.Sqrt(m2 / float64(n-1))
}

func median(vals []float64) float64 {
	n := len(vals)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func minOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func unique(vals []string) int {
	seen := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		seen[v] = struct{}{}
	}
	return len(seen)
}

// uniqueAny counts distinct non-missing values regardless of dtype.
func uniqueAny(c *dataset.Column) int {
	seen := make(map[string]struct{})
	for _, cell := range c.Cells {
		if !cell.Valid {
			continue
		}
		switch c.Type {
		case dataset.Numeric:
			seen[fmt.Sprintf("%v", cell.Num)] = struct{}{}
		case dataset.Datetime:
			seen[cell.Time.String()] = struct{}{}
		default:
			seen[cell.Str] = struct{}{}
		}
	}
	return len(seen)
}

// topValue returns the most frequent value; ties break lexicographically
// for determinism.
func topValue(vals []string) (string, int) {
	counts := make(map[string]int, len(vals))
	for _, v := range vals {
		counts[v]++
	}
	best, bestN := "", 0
	for v, n := range counts {
		if n > bestN || (n == bestN && v < best) {
			best, bestN = v, n
		}
	}
	return best, bestN
}

func rangeDays(c *dataset.Column) (int, bool) {
	first := true
	var min, max int64
	for _, cell := range c.Cells {
		if !cell.Valid {
			continue
		}
		u := cell.Time.Unix()
		if first {
			min, max = u, u
			first = false
			continue
		}
		if u < min {
			min = u
		}
		if u > max {
			max = u
		}
	}
	if first {
		return 0, false
	}
	return int((max - min) / 86400), true
}
