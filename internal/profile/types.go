// Package profile computes the statistical profile of a dataset:
// per-column statistics, missing-value analysis, a Pearson correlation
// matrix across numeric columns, and the domain tag used to scope KPI
// extraction downstream.
package profile

import (
	"time"

	"github.com/algorzen/insight-reporter/internal/dataset"
)

// Domain tags. Classification is a pure function of column names.
const (
	TypeSales    = "sales"
	TypeFinance  = "finance"
	TypeCustomer = "customer"
	TypeGeneral  = "general"
)

// NumericStats holds type-appropriate statistics for a numeric column.
// A numeric column with zero observed values carries zeroed stats.
type NumericStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Q1     float64 `json:"q1"`
	Q3     float64 `json:"q3"`
}

// CategoryCount is one categorical value with its frequency.
type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CategoricalStats holds cardinality and top-value frequencies.
type CategoricalStats struct {
	Unique    int             `json:"unique"`
	TopValues []CategoryCount `json:"top_values,omitempty"`
}

// DatetimeStats holds the observed time range of a datetime column.
type DatetimeStats struct {
	Min       time.Time `json:"min"`
	Max       time.Time `json:"max"`
	RangeDays int       `json:"range_days"`
}

// ColumnProfile is the profile of a single column.
type ColumnProfile struct {
	Name        string            `json:"name"`
	Type        dataset.DType     `json:"type"`
	Missing     int               `json:"missing"`
	MissingPct  float64           `json:"missing_pct"`
	Numeric     *NumericStats     `json:"numeric,omitempty"`
	Categorical *CategoricalStats `json:"categorical,omitempty"`
	Datetime    *DatetimeStats    `json:"datetime,omitempty"`
}

// CorrMatrix is a symmetric Pearson correlation matrix across numeric
// columns. Values is row-major, Values[i][j] for Columns[i] x Columns[j].
type CorrMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// DatasetProfile is the ordered statistical summary of a table.
// Corr is present iff the dataset has at least two numeric columns.
type DatasetProfile struct {
	Name               string          `json:"name,omitempty"`
	Rows               int             `json:"rows"`
	Cols               int             `json:"cols"`
	DatasetType        string          `json:"dataset_type"`
	Columns            []ColumnProfile `json:"columns"`
	Corr               *CorrMatrix     `json:"corr,omitempty"`
	NumericColumns     int             `json:"numeric_columns"`
	CategoricalColumns int             `json:"categorical_columns"`
	DatetimeColumns    int             `json:"datetime_columns"`
	TotalMissing       int             `json:"total_missing"`
	ColumnsWithMissing int             `json:"columns_with_missing"`
}

// Completeness returns the percentage of non-missing cells, 100 for an
// empty table.
func (p *DatasetProfile) Completeness() float64 {
	total := p.Rows * p.Cols
	if total == 0 {
		return 100
	}
	return float64(total-p.TotalMissing) * 100 / float64(total)
}
