// Package loader turns on-disk tabular files (CSV/TSV/XLSX) into an
// in-memory dataset.Dataset. It is the boundary shim for the external
// data-loading collaborator: everything past it operates on typed
// columns, never on file formats.
package loader

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/algorzen/insight-reporter/internal/dataset"
)

// Options controls parsing behavior.
type Options struct {
	// Delimiter for CSV. If 0, auto-detects from the file extension
	// (',' default, '\t' for .tsv).
	Delimiter rune
	// MaxRows limits rows loaded; 0 means unlimited.
	MaxRows int
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect
	// per value.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// XLSX sheet selection. SheetIndex is 1-based; if both are empty,
	// the first sheet is used.
	SheetName  string
	SheetIndex int
}

// DefaultOptions returns reasonable defaults for dataset loading.
func DefaultOptions() Options {
	return Options{MaxRows: 100000}
}

// Load dispatches on file extension.
func Load(path string, opt Options) (*dataset.Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		return LoadCSV(path, opt)
	case ".xlsx":
		return LoadXLSX(path, opt)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", filepath.Ext(path))
	}
}

// fromRecords builds a Dataset from a header and raw string records.
// Column types are inferred by value inspection: each non-empty cell is
// tried as numeric, then datetime; the predominant parse wins, with
// categorical as the fallback.
func fromRecords(name string, header []string, records [][]string, opt Options) (*dataset.Dataset, error) {
	ncol := len(header)
	if ncol == 0 {
		return nil, &dataset.InvalidInputError{Reason: "table has no columns"}
	}
	type colAcc struct {
		numCnt int
		dtCnt  int
		txtCnt int
	}
	accs := make([]colAcc, ncol)
	for _, rec := range records {
		for j := 0; j < ncol; j++ {
			if j >= len(rec) {
				continue
			}
			v := strings.TrimSpace(rec[j])
			if v == "" {
				continue
			}
			if _, ok := parseNumeric(v, opt); ok {
				accs[j].numCnt++
				continue
			}
			if _, ok := parseTimeMaybe(v); ok {
				accs[j].dtCnt++
				continue
			}
			accs[j].txtCnt++
		}
	}

	cols := make([]dataset.Column, ncol)
	for j := 0; j < ncol; j++ {
		a := accs[j]
		var dt dataset.DType
		switch {
		case a.numCnt >= a.dtCnt && a.numCnt >= a.txtCnt && a.numCnt > 0:
			dt = dataset.Numeric
		case a.dtCnt >= a.txtCnt && a.dtCnt > 0:
			dt = dataset.Datetime
		default:
			dt = dataset.Categorical
		}
		cells := make([]dataset.Cell, len(records))
		for i, rec := range records {
			var v string
			if j < len(rec) {
				v = strings.TrimSpace(rec[j])
			}
			if v == "" {
				continue // missing
			}
			switch dt {
			case dataset.Numeric:
				if x, ok := parseNumeric(v, opt); ok {
					cells[i] = dataset.Cell{Valid: true, Num: x}
				}
			case dataset.Datetime:
				if t, ok := parseTimeMaybe(v); ok {
					cells[i] = dataset.Cell{Valid: true, Time: t}
				}
			default:
				cells[i] = dataset.Cell{Valid: true, Str: v}
			}
		}
		cols[j] = dataset.Column{Name: strings.TrimSpace(header[j]), Type: dt, Cells: cells}
	}
	return dataset.New(name, cols)
}

func parseTimeMaybe(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
		"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(s)
	if strings.Contains(raw, "%") {
		raw = strings.ReplaceAll(raw, "%", "")
	}
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		// auto detect from the last separator position
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		if cpos >= 0 && dpos >= 0 {
			if cpos > dpos {
				dec = ','
				thou = '.'
			} else {
				dec = '.'
				thou = ','
			}
		} else if cpos >= 0 {
			dec = ','
		} else {
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
