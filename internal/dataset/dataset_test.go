package dataset_test

import (
	"errors"
	"testing"

	"github.com/algorzen/insight-reporter/internal/dataset"
)

func TestNewRejectsZeroColumns(t *testing.T) {
	_, err := dataset.New("empty", nil)
	if err == nil {
		t.Fatalf("expected error for zero columns")
	}
	var inv *dataset.InvalidInputError
	if !errors.As(err, &inv) {
		t.Fatalf("expected InvalidInputError, got %T: %v", err, err)
	}
}

func TestNewRejectsRaggedColumns(t *testing.T) {
	cols := []dataset.Column{
		{Name: "a", Type: dataset.Numeric, Cells: make([]dataset.Cell, 3)},
		{Name: "b", Type: dataset.Numeric, Cells: make([]dataset.Cell, 2)},
	}
	if _, err := dataset.New("ragged", cols); err == nil {
		t.Fatalf("expected error for ragged columns")
	}
}

func TestZeroRowsIsValid(t *testing.T) {
	cols := []dataset.Column{{Name: "a", Type: dataset.Numeric}}
	ds, err := dataset.New("empty-rows", cols)
	if err != nil {
		t.Fatalf("zero rows should be valid: %v", err)
	}
	if ds.Rows() != 0 || ds.Cols() != 1 {
		t.Fatalf("unexpected shape: rows=%d cols=%d", ds.Rows(), ds.Cols())
	}
}

func TestColumnAccessors(t *testing.T) {
	cols := []dataset.Column{
		{Name: "x", Type: dataset.Numeric, Cells: []dataset.Cell{
			{Valid: true, Num: 1}, {}, {Valid: true, Num: 3},
		}},
		{Name: "label", Type: dataset.Categorical, Cells: []dataset.Cell{
			{Valid: true, Str: "a"}, {Valid: true, Str: "b"}, {},
		}},
	}
	ds, err := dataset.New("t", cols)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	x := ds.Column("x")
	if x == nil {
		t.Fatalf("column x not found")
	}
	vals := x.NumericValues()
	if len(vals) != 2 || vals[0] != 1 || vals[1] != 3 {
		t.Fatalf("unexpected numeric values: %v", vals)
	}
	if x.Missing() != 1 {
		t.Fatalf("expected 1 missing, got %d", x.Missing())
	}
	if got := ds.Column("label").StringValues(); len(got) != 2 {
		t.Fatalf("unexpected string values: %v", got)
	}
	if ds.Column("nope") != nil {
		t.Fatalf("expected nil for unknown column")
	}
}
