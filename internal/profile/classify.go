package profile

import "strings"

// domainKeywords is evaluated in order; the order doubles as the
// tie-break priority (sales beats finance beats customer on equal
// scores). Read-only after init.
var domainKeywords = []struct {
	tag      string
	keywords []string
}{
	{TypeSales, []string{"sales", "revenue", "price", "quantity", "product", "order"}},
	{TypeFinance, []string{"balance", "debit", "credit", "transaction", "account", "profit", "margin"}},
	{TypeCustomer, []string{"customer", "churn", "retention", "lifetime", "segment", "age"}},
}

// Classify labels a dataset by its column names alone. The score of a
// domain is the number of columns whose lowercased name contains at
// least one of the domain's keywords. The strictly highest score wins;
// on a tie the earlier domain in priority order keeps the label. All
// zero scores yield "general". Data values never participate, so the
// result is stable under row reordering.
func Classify(columnNames []string) string {
	lower := make([]string, len(columnNames))
	for i, n := range columnNames {
		lower[i] = strings.ToLower(n)
	}
	best := TypeGeneral
	bestScore := 0
	for _, d := range domainKeywords {
		score := 0
		for _, col := range lower {
			for _, kw := range d.keywords {
				if strings.Contains(col, kw) {
					score++
					break
				}
			}
		}
		if score > bestScore {
			best = d.tag
			bestScore = score
		}
	}
	return best
}
