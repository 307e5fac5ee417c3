package dataset

import (
	"fmt"
	"time"
)

// DType is the inferred type of a column.
type DType string

const (
	Numeric     DType = "numeric"
	Categorical DType = "categorical"
	Datetime    DType = "datetime"
)

// Cell holds a single value. Missing cells have Valid == false.
// Exactly one of Num, Str, Time carries the value, matching the
// column's DType.
type Cell struct {
	Valid bool
	Num   float64
	Str   string
	Time  time.Time
}

// Column is a named, typed column of cells.
type Column struct {
	Name  string
	Type  DType
	Cells []Cell
}

// Dataset is an immutable in-memory table. The pipeline never mutates
// it; loaders build one and hand it over.
type Dataset struct {
	Name    string
	Columns []Column
	rows    int
}

// InvalidInputError indicates a table the pipeline cannot analyze
// (zero columns, ragged rows). It aborts the run.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

// New validates columns and returns a Dataset. Zero rows is a valid
// degenerate table; zero columns is not.
func New(name string, cols []Column) (*Dataset, error) {
	if len(cols) == 0 {
		return nil, &InvalidInputError{Reason: "table has no columns"}
	}
	rows := len(cols[0].Cells)
	for _, c := range cols {
		if c.Name == "" {
			return nil, &InvalidInputError{Reason: "column with empty name"}
		}
		if len(c.Cells) != rows {
			return nil, &InvalidInputError{Reason: fmt.Sprintf("column %q has %d cells, expected %d", c.Name, len(c.Cells), rows)}
		}
	}
	return &Dataset{Name: name, Columns: cols, rows: rows}, nil
}

// Rows returns the row count.
func (d *Dataset) Rows() int { return d.rows }

// Cols returns the column count.
func (d *Dataset) Cols() int { return len(d.Columns) }

// ColumnNames returns column names in table order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the column with the given name, or nil.
func (d *Dataset) Column(name string) *Column {
	for i := range d.Columns {
		if d.Columns[i].Name == name {
			return &d.Columns[i]
		}
	}
	return nil
}

// NumericValues returns the non-missing values of a numeric column in
// row order. Returns nil for non-numeric columns.
func (c *Column) NumericValues() []float64 {
	if c == nil || c.Type != Numeric {
		return nil
	}
	out := make([]float64, 0, len(c.Cells))
	for _, cell := range c.Cells {
		if cell.Valid {
			out = append(out, cell.Num)
		}
	}
	return out
}

// StringValues returns the non-missing values of a categorical column
// in row order. Returns nil for non-categorical columns.
func (c *Column) StringValues() []string {
	if c == nil || c.Type != Categorical {
		return nil
	}
	out := make([]string, 0, len(c.Cells))
	for _, cell := range c.Cells {
		if cell.Valid {
			out = append(out, cell.Str)
		}
	}
	return out
}

// Missing counts missing cells in the column.
func (c *Column) Missing() int {
	n := 0
	for _, cell := range c.Cells {
		if !cell.Valid {
			n++
		}
	}
	return n
}
