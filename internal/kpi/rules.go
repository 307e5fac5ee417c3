// Package kpi derives named business metrics from a dataset, scoped by
// the domain tag the profiler assigned. Column resolution is driven by
// a fixed, versioned rule table rather than inline conditionals so the
// matching policy stays inspectable and stable across releases.
package kpi

import (
	"strings"

	"github.com/algorzen/insight-reporter/internal/dataset"
)

// RulesVersion identifies the synonym table revision. Bump when a
// synonym list or its order changes; KPI semantics depend on both.
const RulesVersion = 1

// rule maps a logical field to its column-name synonyms, in match
// priority order.
type rule struct {
	Field    string
	Synonyms []string
}

// Per-domain rule tables. Order of rules and of synonyms is load-bearing.
// Read-only after init; safe for concurrent runs.
var (
	salesRules = []rule{
		{"revenue", []string{"revenue", "sales", "total", "amount"}},
		{"quantity", []string{"quantity", "qty", "units"}},
		{"product", []string{"product", "item", "sku"}},
		{"margin", []string{"margin", "profit"}},
		{"date", []string{"date", "time", "timestamp"}},
	}
	financeRules = []rule{
		{"balance", []string{"balance", "amount", "value"}},
		{"debit", []string{"debit", "expense", "withdrawal"}},
		{"credit", []string{"credit", "income", "deposit"}},
		{"account", []string{"account", "customer", "id"}},
		{"transaction", []string{"transaction", "type", "category"}},
	}
	customerRules = []rule{
		{"customer", []string{"customer", "user", "client", "id"}},
		{"churn", []string{"churn", "churned", "status"}},
		{"tenure", []string{"age", "tenure", "duration"}},
		{"segment", []string{"segment", "category", "tier", "group"}},
		{"value", []string{"value", "ltv", "lifetime", "revenue"}},
	}
)

// resolve finds the column for a logical field. For each synonym in
// order it first looks for an exact case-insensitive name match, then
// for the first column (in table order) whose name contains the synonym
// as a substring. The first hit wins; when several columns qualify the
// earliest in table order is chosen, silently. Returns nil when nothing
// matches.
func resolve(ds *dataset.Dataset, synonyms []string) *dataset.Column {
	for _, syn := range synonyms {
		for i := range ds.Columns {
			if strings.EqualFold(ds.Columns[i].Name, syn) {
				return &ds.Columns[i]
			}
		}
	}
	for _, syn := range synonyms {
		for i := range ds.Columns {
			if strings.Contains(strings.ToLower(ds.Columns[i].Name), syn) {
				return &ds.Columns[i]
			}
		}
	}
	return nil
}
