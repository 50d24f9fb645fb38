package spc

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Table is a set of row records keyed by column name
type Table []map[string]any

// HasColumn reports whether any row carries the column
func (t Table) HasColumn(column string) bool {
	for _, row := range t {
		if _, ok := row[column]; ok {
			return true
		}
	}
	return false
}

// Columns returns the column names in order of first appearance
func (t Table) Columns() []string {
	seen := make(map[string]struct{})
	var cols []string
	for _, row := range t {
		for k := range row {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				cols = append(cols, k)
			}
		}
	}
	return cols
}

// NumericColumn extracts the numeric values of a column, dropping cells that
// are missing or cannot be read as a finite number. The boolean is false
// when no row has the column.
func NumericColumn(t Table, column string) ([]float64, bool) {
	if !t.HasColumn(column) {
		return nil, false
	}
	values := make([]float64, 0, len(t))
	for _, row := range t {
		if f, ok := ToFloat(row[column]); ok {
			values = append(values, f)
		}
	}
	return values, true
}

// ToFloat converts a cell to a finite float64
func ToFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// categoryKey identifies a cell value for counting. Values of different
// dynamic types never collide.
func categoryKey(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case float64:
		if math.IsNaN(x) {
			return "", false
		}
	case string:
		return "s:" + x, true
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return fmt.Sprintf("n:%v", f), true
		}
		return "s:" + x.String(), true
	}
	if f, ok := ToFloat(v); ok {
		return fmt.Sprintf("n:%v", f), true
	}
	return fmt.Sprintf("%T:%v", v, v), true
}
