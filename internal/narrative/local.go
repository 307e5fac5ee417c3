package narrative

import (
	"fmt"
	"strings"

	"github.com/algorzen/insight-reporter/internal/kpi"
	"github.com/algorzen/insight-reporter/internal/profile"
)

// completenessThreshold separates the positive data-quality sentence
// from the cautionary one in the LOCAL path.
const completenessThreshold = 95.0

// Per-domain recommendation blocks for the LOCAL path. Read-only after
// init; safe for concurrent runs.
var localRecommendations = map[string][]string{
	profile.TypeSales: {
		"Optimize revenue streams: focus on high-performing products and channels identified in the analysis",
		"Enhance customer targeting: leverage segmentation insights to improve conversion rates",
		"Align inventory with demand patterns observed in quantity metrics",
		"Review pricing elasticity based on revenue and margin correlations",
		"Implement predictive sales forecasting using historical trend patterns",
		"Establish dashboards for real-time KPI tracking",
	},
	profile.TypeFinance: {
		"Monitor debit/credit patterns to improve liquidity management",
		"Analyze transaction patterns for anomaly detection and fraud prevention",
		"Develop targeted strategies for high-value account retention",
		"Identify expense categories with optimization potential",
		"Use historical patterns for improved budget forecasting",
		"Ensure transaction data quality for regulatory reporting",
	},
	profile.TypeCustomer: {
		"Implement retention programs targeting at-risk customer segments",
		"Focus resources on high-value customer acquisition",
		"Develop tailored engagement approaches for each customer tier",
		"Address pain points identified in customer behavior patterns",
		"Design loyalty initiatives based on observed retention factors",
		"Build churn prediction models for proactive intervention",
	},
	profile.TypeGeneral: {
		"Address missing values and inconsistencies identified in the analysis",
		"Develop new metrics based on correlation insights",
		"Implement systematic tracking of key performance indicators",
		"Create executive dashboards for strategic decision support",
		"Leverage historical patterns for forecasting initiatives",
		"Use data insights to streamline operational workflows",
	},
}

// GenerateLocal is the terminal fallback path. It is total: for any
// valid profile and KPI set it returns a narrative with all four
// sections populated, deterministically.
func GenerateLocal(prof *profile.DatasetProfile, kpis *kpi.Set) *Narrative {
	n := &Narrative{Method: MethodLocal}
	n.Summary = localSummary(prof)
	n.Findings = localFindings(prof, kpis)
	n.Recommendations = localRecommendationsFor(prof.DatasetType)
	n.Risks = localRisks(prof)
	return n
}

func localSummary(p *profile.DatasetProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "This %s dataset comprises %d records across %d features, providing a view of operational metrics. ",
		p.DatasetType, p.Rows, p.Cols)
	if p.Completeness() >= completenessThreshold {
		fmt.Fprintf(&b, "Data quality is strong at %.2f%% completeness, supporting confident downstream analytics. ",
			p.Completeness())
	} else {
		fmt.Fprintf(&b, "Data quality requires attention: completeness is %.2f%% with %d missing values across %d columns. ",
			p.Completeness(), p.TotalMissing, p.ColumnsWithMissing)
	}
	fmt.Fprintf(&b, "The analysis covers %d numeric and %d categorical dimensions, enabling data-driven decision-making.",
		p.NumericColumns, p.CategoricalColumns)
	return b.String()
}

func localFindings(p *profile.DatasetProfile, kpis *kpi.Set) []string {
	var out []string
	names := sortedMetricNames(kpis)
	if len(names) > 6 {
		names = names[:6]
	}
	for _, name := range names {
		val := formatMetric(kpis.Metrics[name])
		lower := strings.ToLower(name)
		if strings.Contains(lower, "total") || strings.Contains(lower, "average") {
			out = append(out, fmt.Sprintf("%s: %s — a critical operational metric for performance tracking", name, val))
		} else {
			out = append(out, fmt.Sprintf("%s: %s", name, val))
		}
	}
	if p.Corr != nil {
		out = append(out, fmt.Sprintf("Correlation analysis across %d numeric metrics identifies interdependencies between business dimensions", len(p.Corr.Columns)))
	}
	out = append(out, "Statistical distributions and completeness metrics support the reliability of the reported figures")
	return out
}

func localRecommendationsFor(datasetType string) []string {
	recs, ok := localRecommendations[datasetType]
	if !ok {
		recs = localRecommendations[profile.TypeGeneral]
	}
	return append([]string(nil), recs...)
}

func localRisks(p *profile.DatasetProfile) []string {
	var out []string
	if p.Completeness() < completenessThreshold {
		out = append(out, fmt.Sprintf("Data quality: %d missing values may impact analytical reliability", p.TotalMissing))
	}
	out = append(out,
		fmt.Sprintf("Sample size: analysis is based on %d records; trends may shift with additional data", p.Rows),
		"Temporal scope: results reflect the current dataset timeframe; market conditions may evolve",
		"Correlation is not causation: observed patterns require validation before strategic changes",
	)
	return out
}
