// Package align resamples the normalized sources onto a common period index
// and composes them into one panel.
package align

import (
	"errors"
	"time"

	"github.com/couchcryptid/commodity-panel-etl/internal/domain"
)

// Aligner builds the period panel. The price series is the backbone: every
// period between its first and last observation is present, and the other
// sources are left-joined onto it.
type Aligner struct {
	period   domain.Period
	policies domain.FillPolicyTable
}

// New creates an Aligner for the given window and policy table.
func New(period domain.Period, policies domain.FillPolicyTable) *Aligner {
	return &Aligner{period: period, policies: policies}
}

// Period returns the aggregation window.
func (a *Aligner) Period() domain.Period {
	return a.period
}

// Align composes prices, daily weather and annual supply/demand into one
// frame keyed by period start. Columns are the two prices, then the weather
// columns, then stock_to_use.
func (a *Aligner) Align(prices domain.PriceSeries, weather *domain.Frame, supply domain.SupplyDemandSeries) (*domain.Frame, error) {
	if len(prices) == 0 {
		return nil, errors.New("price series is empty")
	}

	panel := a.Resample(prices.Frame())
	if weather != nil && weather.Len() > 0 {
		panel = LeftJoin(panel, a.Resample(weather))
	}
	if err := panel.SetColumn(domain.ColumnStockToUse, a.StockToUse(supply, panel.Index)); err != nil {
		return nil, err
	}
	return panel, nil
}

// Resample aggregates a frame into periods. Each column uses the period
// aggregation of its fill policy, or the mean when it has none. The result
// covers every period from the first to the last row; a period without
// observations for a column is missing.
func (a *Aligner) Resample(f *domain.Frame) *domain.Frame {
	if f.Len() == 0 {
		return domain.NewFrame(nil)
	}

	first, last := f.Index[0], f.Index[0]
	for _, t := range f.Index {
		if t.Before(first) {
			first = t
		}
		if t.After(last) {
			last = t
		}
	}
	index := a.period.Range(first, last)
	slot := make(map[time.Time]int, len(index))
	for i, t := range index {
		slot[t] = i
	}

	out := domain.NewFrame(index)
	for _, name := range f.Columns() {
		agg := domain.AggregateMean
		if p, ok := a.policies.Lookup(name); ok {
			agg = p.Period
		}

		buckets := make([][]float64, len(index))
		values := f.MustColumn(name)
		for i, t := range f.Index {
			j := slot[a.period.Start(t)]
			buckets[j] = append(buckets[j], values[i])
		}

		col := make([]float64, len(index))
		for j, b := range buckets {
			col[j] = agg.Reduce(b)
		}
		_ = out.SetColumn(name, col)
	}
	return out
}

// StockToUse spreads the annual ratio over the index. A period takes the ratio
// of its own year; under a carry-forward policy, years without a report use
// the latest earlier year. Periods before the first year are missing.
func (a *Aligner) StockToUse(supply domain.SupplyDemandSeries, index []time.Time) []float64 {
	carry := true
	if p, ok := a.policies.Lookup(domain.VariableStockToUse); ok {
		carry = p.Missing == domain.FillCarryForward
	}

	out := make([]float64, len(index))
	for i, t := range index {
		out[i] = domain.Missing()
		year := t.Year()
		for _, y := range supply {
			if y.Year > year {
				break
			}
			if y.Year == year || carry {
				out[i] = y.StockToUse()
			}
		}
	}
	return out
}

// LeftJoin adds the columns of right to a copy of left, matched on the index.
// Rows of left without a match in right get missing values.
func LeftJoin(left, right *domain.Frame) *domain.Frame {
	out := domain.NewFrame(left.Index)
	for _, name := range left.Columns() {
		_ = out.SetColumn(name, left.MustColumn(name))
	}

	pos := make(map[time.Time]int, right.Len())
	for i, t := range right.Index {
		pos[t] = i
	}
	for _, name := range right.Columns() {
		src := right.MustColumn(name)
		col := make([]float64, left.Len())
		for i, t := range left.Index {
			if j, ok := pos[t]; ok {
				col[i] = src[j]
			} else {
				col[i] = domain.Missing()
			}
		}
		_ = out.SetColumn(name, col)
	}
	return out
}
