package profile

import (
	"math"
	"sort"

	"github.com/algorzen/insight-reporter/internal/dataset"
)

const maxTopValues = 8

// Profile computes the full DatasetProfile for a table. Zero rows is a
// valid degenerate case; a nil dataset is an InvalidInputError.
func Profile(ds *dataset.Dataset) (*DatasetProfile, error) {
	if ds == nil {
		return nil, &dataset.InvalidInputError{Reason: "nil dataset"}
	}
	if ds.Cols() == 0 {
		return nil, &dataset.InvalidInputError{Reason: "table has no columns"}
	}

	p := &DatasetProfile{
		Name:        ds.Name,
		Rows:        ds.Rows(),
		Cols:        ds.Cols(),
		DatasetType: Classify(ds.ColumnNames()),
		Columns:     make([]ColumnProfile, 0, ds.Cols()),
	}

	var numericIdx []int
	for i := range ds.Columns {
		c := &ds.Columns[i]
		cp := ColumnProfile{Name: c.Name, Type: c.Type, Missing: c.Missing()}
		if ds.Rows() > 0 {
			cp.MissingPct = float64(cp.Missing) * 100 / float64(ds.Rows())
		}
		p.TotalMissing += cp.Missing
		if cp.Missing > 0 {
			p.ColumnsWithMissing++
		}
		switch c.Type {
		case dataset.Numeric:
			p.NumericColumns++
			cp.Numeric = numericStats(c.NumericValues())
			numericIdx = append(numericIdx, i)
		case dataset.Categorical:
			p.CategoricalColumns++
			cp.Categorical = categoricalStats(c.StringValues())
		case dataset.Datetime:
			p.DatetimeColumns++
			cp.Datetime = datetimeStats(c)
		}
		p.Columns = append(p.Columns, cp)
	}

	if len(numericIdx) >= 2 {
		p.Corr = correlate(ds, numericIdx)
	}
	return p, nil
}

func numericStats(vals []float64) *NumericStats {
	s := &NumericStats{Count: len(vals)}
	if len(vals) == 0 {
		return s
	}
	var mean, m2 float64
	min, max := math.Inf(1), math.Inf(-1)
	for i, x := range vals {
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
		delta := x - mean
		mean += delta / float64(i+1)
		m2 += delta * (x - mean)
	}
	s.Mean = mean
	s.Min = min
	s.Max = max
	if len(vals) > 1 {
		s.Std = math.Sqrt(m2 / float64(len(vals)-1))
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	s.Median = quantile(sorted, 0.5)
	s.Q1 = quantile(sorted, 0.25)
	s.Q3 = quantile(sorted, 0.75)
	return s
}

// quantile interpolates linearly between closest ranks on a sorted slice.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func categoricalStats(vals []string) *CategoricalStats {
	counts := make(map[string]int, len(vals))
	for _, v := range vals {
		counts[v]++
	}
	s := &CategoricalStats{Unique: len(counts)}
	tops := make([]CategoryCount, 0, len(counts))
	for v, n := range counts {
		tops = append(tops, CategoryCount{Value: v, Count: n})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if len(tops) > maxTopValues {
		tops = tops[:maxTopValues]
	}
	s.TopValues = tops
	return s
}

func datetimeStats(c *dataset.Column) *DatetimeStats {
	s := &DatetimeStats{}
	first := true
	for _, cell := range c.Cells {
		if !cell.Valid {
			continue
		}
		t := cell.Time
		if first {
			s.Min, s.Max = t, t
			first = false
			continue
		}
		if t.Before(s.Min) {
			s.Min = t
		}
		if t.After(s.Max) {
			s.Max = t
		}
	}
	if !first {
		s.RangeDays = int(s.Max.Sub(s.Min).Hours() / 24)
	}
	return s
}

// correlate builds the Pearson matrix over numeric columns using
// pairwise complete observations: a row contributes to a pair only when
// both cells are present.
func correlate(ds *dataset.Dataset, numericIdx []int) *CorrMatrix {
	type pairAcc struct {
		n     float64
		sumX  float64
		sumY  float64
		sumXX float64
		sumYY float64
		sumXY float64
	}
	ncol := ds.Cols()
	pair := make(map[int]*pairAcc)

	for row := 0; row < ds.Rows(); row++ {
		for a := 1; a < len(numericIdx); a++ {
			j := numericIdx[a]
			cj := ds.Columns[j].Cells[row]
			if !cj.Valid {
				continue
			}
			for b := 0; b < a; b++ {
				k := numericIdx[b]
				ck := ds.Columns[k].Cells[row]
				if !ck.Valid {
					continue
				}
				key := j*ncol + k
				pa := pair[key]
				if pa == nil {
					pa = &pairAcc{}
					pair[key] = pa
				}
				x, y := cj.Num, ck.Num
				pa.n++
				pa.sumX += x
				pa.sumY += y
				pa.sumXX += x * x
				pa.sumYY += y * y
				pa.sumXY += x * y
			}
		}
	}

	n := len(numericIdx)
	names := make([]string, n)
	for i, idx := range numericIdx {
		names[i] = ds.Columns[idx].Name
	}
	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n)
	}
	for a := 0; a < n; a++ {
		ia := numericIdx[a]
		for b := 0; b < n; b++ {
			if a == b {
				mat[a][b] = 1
				continue
			}
			ib := numericIdx[b]
			hi, lo := ia, ib
			if hi < lo {
				hi, lo = lo, hi
			}
			pa := pair[hi*ncol+lo]
			if pa == nil || pa.n < 2 {
				mat[a][b] = 0
				continue
			}
			denom := math.Sqrt((pa.n*pa.sumXX - pa.sumX*pa.sumX) * (pa.n*pa.sumYY - pa.sumY*pa.sumY))
			var r float64
			if denom != 0 {
				r = (pa.n*pa.sumXY - pa.sumX*pa.sumY) / denom
			}
			if r > 1 {
				r = 1
			} else if r < -1 {
				r = -1
			}
			if math.IsNaN(r) || math.IsInf(r, 0) {
				r = 0
			}
			mat[a][b] = r
		}
	}
	return &CorrMatrix{Columns: names, Values: mat}
}
