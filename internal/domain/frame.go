package domain

import (
	"fmt"
	"slices"
	"time"
)

// RawTable is an untyped table read from a source file: a header row and the
// data rows below it. Cell values are kept as text.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// Cell returns the value at row i, column col, or "" when the row is short.
func (t RawTable) Cell(i, col int) string {
	if col < 0 || i < 0 || i >= len(t.Rows) || col >= len(t.Rows[i]) {
		return ""
	}
	return t.Rows[i][col]
}

// Frame is a table of numeric columns keyed by a time index. Columns keep
// their insertion order. Missing values are NaN.
type Frame struct {
	Index   []time.Time
	columns []string
	values  map[string][]float64
}

// NewFrame creates an empty frame over the given index.
func NewFrame(index []time.Time) *Frame {
	return &Frame{
		Index:  index,
		values: make(map[string][]float64),
	}
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.Index)
}

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	return slices.Clone(f.columns)
}

// Column returns the values of the named column.
func (f *Frame) Column(name string) ([]float64, bool) {
	v, ok := f.values[name]
	return v, ok
}

// MustColumn returns the values of the named column or a slice of missing
// values when the column does not exist.
func (f *Frame) MustColumn(name string) []float64 {
	if v, ok := f.values[name]; ok {
		return v
	}
	return missingSlice(f.Len())
}

// SetColumn adds or replaces a column. The slice is stored, not copied.
func (f *Frame) SetColumn(name string, values []float64) error {
	if len(values) != f.Len() {
		return fmt.Errorf("column %q has %d values, index has %d", name, len(values), f.Len())
	}
	if _, ok := f.values[name]; !ok {
		f.columns = append(f.columns, name)
	}
	f.values[name] = values
	return nil
}

// Value returns the value at row i of the named column.
func (f *Frame) Value(name string, i int) float64 {
	v, ok := f.values[name]
	if !ok || i < 0 || i >= len(v) {
		return Missing()
	}
	return v[i]
}

// RowComplete reports whether row i has a value in every column.
func (f *Frame) RowComplete(i int) bool {
	for _, name := range f.columns {
		if IsMissing(f.values[name][i]) {
			return false
		}
	}
	return true
}

// Filter returns a new frame with the rows for which keep returns true.
func (f *Frame) Filter(keep func(i int) bool) *Frame {
	var rows []int
	for i := range f.Index {
		if keep(i) {
			rows = append(rows, i)
		}
	}

	index := make([]time.Time, len(rows))
	for j, i := range rows {
		index[j] = f.Index[i]
	}
	out := NewFrame(index)
	for _, name := range f.columns {
		src := f.values[name]
		dst := make([]float64, len(rows))
		for j, i := range rows {
			dst[j] = src[i]
		}
		_ = out.SetColumn(name, dst)
	}
	return out
}

// Sorted reports whether the index is strictly increasing.
func (f *Frame) Sorted() bool {
	for i := 1; i < len(f.Index); i++ {
		if !f.Index[i].After(f.Index[i-1]) {
			return false
		}
	}
	return true
}

func missingSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = Missing()
	}
	return out
}
