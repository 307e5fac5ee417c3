package profile

import (
	"math"
	"testing"
	"time"

	"github.com/algorzen/insight-reporter/internal/dataset"
)

func numCol(name string, vals ...float64) dataset.Column {
	cells := make([]dataset.Cell, len(vals))
	for i, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		cells[i] = dataset.Cell{Valid: true, Num: v}
	}
	return dataset.Column{Name: name, Type: dataset.Numeric, Cells: cells}
}

func catCol(name string, vals ...string) dataset.Column {
	cells := make([]dataset.Cell, len(vals))
	for i, v := range vals {
		if v == "" {
			continue
		}
		cells[i] = dataset.Cell{Valid: true, Str: v}
	}
	return dataset.Column{Name: name, Type: dataset.Categorical, Cells: cells}
}

func mustDataset(t *testing.T, name string, cols ...dataset.Column) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(name, cols)
	if err != nil {
		t.Fatalf("dataset.New: %v", err)
	}
	return ds
}

func TestProfileRejectsNil(t *testing.T) {
	if _, err := Profile(nil); err == nil {
		t.Fatalf("expected error for nil dataset")
	}
}

func TestProfileNumericStats(t *testing.T) {
	ds := mustDataset(t, "nums", numCol("x", 1, 2, 3, 4, 5))
	p, err := Profile(ds)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	s := p.Columns[0].Numeric
	if s == nil {
		t.Fatalf("missing numeric stats")
	}
	if s.Count != 5 || s.Mean != 3 || s.Median != 3 || s.Min != 1 || s.Max != 5 {
		t.Fatalf("unexpected stats: %+v", s)
	}
	if math.Abs(s.Std-math.Sqrt(2.5)) > 1e-9 {
		t.Fatalf("std = %v, want %v", s.Std, math.Sqrt(2.5))
	}
	if s.Q1 != 2 || s.Q3 != 4 {
		t.Fatalf("quartiles = %v/%v, want 2/4", s.Q1, s.Q3)
	}
}

func TestProfileMissingCounts(t *testing.T) {
	ds := mustDataset(t, "miss",
		numCol("x", 1, math.NaN(), 3, math.NaN()),
		catCol("c", "a", "b", "", "a"),
	)
	p, err := Profile(ds)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p.TotalMissing != 3 || p.ColumnsWithMissing != 2 {
		t.Fatalf("missing = %d in %d columns, want 3 in 2", p.TotalMissing, p.ColumnsWithMissing)
	}
	if p.Columns[0].MissingPct != 50 {
		t.Fatalf("missing pct = %v, want 50", p.Columns[0].MissingPct)
	}
	want := float64(8-3) * 100 / 8
	if math.Abs(p.Completeness()-want) > 1e-9 {
		t.Fatalf("completeness = %v, want %v", p.Completeness(), want)
	}
}

func TestProfileCorrelationMatrix(t *testing.T) {
	ds := mustDataset(t, "corr",
		numCol("a", 1, 2, 3, 4),
		numCol("b", 2, 4, 6, 8),
		numCol("c", 4, 3, 2, 1),
	)
	p, err := Profile(ds)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	m := p.Corr
	if m == nil {
		t.Fatalf("expected correlation matrix")
	}
	n := len(m.Columns)
	if n != 3 || len(m.Values) != n {
		t.Fatalf("matrix not square over 3 columns: %+v", m)
	}
	for i := 0; i < n; i++ {
		if len(m.Values[i]) != n {
			t.Fatalf("row %d has %d entries", i, len(m.Values[i]))
		}
		if math.Abs(m.Values[i][i]-1) > 1e-9 {
			t.Fatalf("diagonal [%d][%d] = %v", i, i, m.Values[i][i])
		}
		for j := 0; j < n; j++ {
			v := m.Values[i][j]
			if v < -1 || v > 1 {
				t.Fatalf("corr [%d][%d] = %v out of range", i, j, v)
			}
			if math.Abs(v-m.Values[j][i]) > 1e-9 {
				t.Fatalf("matrix not symmetric at [%d][%d]", i, j)
			}
		}
	}
	if math.Abs(m.Values[0][1]-1) > 1e-9 {
		t.Fatalf("corr(a,b) = %v, want 1", m.Values[0][1])
	}
	if math.Abs(m.Values[0][2]+1) > 1e-9 {
		t.Fatalf("corr(a,c) = %v, want -1", m.Values[0][2])
	}
}

func TestProfilePairwiseCompleteObservations(t *testing.T) {
	// Row 2 is missing in b; the (a,b) pair uses rows 0,1,3 only.
	ds := mustDataset(t, "pairwise",
		numCol("a", 1, 2, 3, 4),
		numCol("b", 1, 2, math.NaN(), 4),
	)
	p, err := Profile(ds)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p.Corr == nil {
		t.Fatalf("expected correlation matrix")
	}
	if math.Abs(p.Corr.Values[0][1]-1) > 1e-9 {
		t.Fatalf("corr = %v, want 1 over pairwise-complete rows", p.Corr.Values[0][1])
	}
}

func TestProfileConstantColumnCorrIsZero(t *testing.T) {
	ds := mustDataset(t, "const",
		numCol("a", 1, 2, 3),
		numCol("flat", 7, 7, 7),
	)
	p, err := Profile(ds)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if got := p.Corr.Values[0][1]; got != 0 {
		t.Fatalf("corr against constant column = %v, want 0", got)
	}
}

func TestProfileNoCorrWithoutTwoNumericColumns(t *testing.T) {
	ds := mustDataset(t, "one-numeric",
		numCol("x", 1, 2, 3),
		catCol("c", "a", "b", "c"),
	)
	p, err := Profile(ds)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p.Corr != nil {
		t.Fatalf("expected no correlation matrix with a single numeric column")
	}

	ds = mustDataset(t, "no-numeric", catCol("c", "a", "b"))
	p, err = Profile(ds)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p.Corr != nil {
		t.Fatalf("expected no correlation matrix with zero numeric columns")
	}
}

func TestProfileZeroRows(t *testing.T) {
	ds := mustDataset(t, "empty", dataset.Column{Name: "x", Type: dataset.Numeric})
	p, err := Profile(ds)
	if err != nil {
		t.Fatalf("zero rows should profile cleanly: %v", err)
	}
	if p.Rows != 0 || p.Columns[0].Numeric.Count != 0 {
		t.Fatalf("unexpected degenerate profile: %+v", p)
	}
	if p.Completeness() != 100 {
		t.Fatalf("completeness of empty table = %v, want 100", p.Completeness())
	}
}

func TestProfileCategoricalTopValues(t *testing.T) {
	ds := mustDataset(t, "cats", catCol("c", "b", "a", "b", "a", "c"))
	p, err := Profile(ds)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	s := p.Columns[0].Categorical
	if s.Unique != 3 {
		t.Fatalf("unique = %d, want 3", s.Unique)
	}
	// Counts tie at 2 for a and b; lexical order breaks the tie.
	if s.TopValues[0].Value != "a" || s.TopValues[1].Value != "b" || s.TopValues[2].Value != "c" {
		t.Fatalf("unexpected top values: %+v", s.TopValues)
	}
}

func TestProfileDatetimeRange(t *testing.T) {
	t0 := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC)
	col := dataset.Column{Name: "date", Type: dataset.Datetime, Cells: []dataset.Cell{
		{Valid: true, Time: t1},
		{Valid: true, Time: t0},
		{},
	}}
	p, err := Profile(mustDataset(t, "dates", col))
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	s := p.Columns[0].Datetime
	if !s.Min.Equal(t0) || !s.Max.Equal(t1) || s.RangeDays != 30 {
		t.Fatalf("unexpected datetime stats: %+v", s)
	}
}
