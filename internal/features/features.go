// Package features derives the modelling features of the panel and applies
// the completeness gate.
package features

import (
	"github.com/couchcryptid/commodity-panel-etl/internal/domain"
)

// ExchangeRate divides local by foreign prices element-wise. A missing or
// zero foreign price yields a missing rate.
func ExchangeRate(local, foreign []float64) []float64 {
	out := make([]float64, len(local))
	for i := range local {
		if i >= len(foreign) || domain.IsMissing(local[i]) || domain.IsMissing(foreign[i]) || foreign[i] == 0 {
			out[i] = domain.Missing()
			continue
		}
		out[i] = local[i] / foreign[i]
	}
	return out
}

// Lag shifts values down by n rows. The first n rows are missing.
func Lag(values []float64, n int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		if i < n {
			out[i] = domain.Missing()
			continue
		}
		out[i] = values[i-n]
	}
	return out
}

// Derive adds exchange_rate and price_local_lag1 to a copy of the aligned
// frame. The lag is taken on the contiguous period index, so a gap month
// leaves the following month without a lag.
func Derive(aligned *domain.Frame) *domain.Frame {
	out := domain.NewFrame(aligned.Index)
	for _, name := range aligned.Columns() {
		_ = out.SetColumn(name, aligned.MustColumn(name))
	}

	local := aligned.MustColumn(domain.ColumnPriceLocal)
	_ = out.SetColumn(domain.ColumnExchangeRate, ExchangeRate(local, aligned.MustColumn(domain.ColumnPriceForeign)))
	_ = out.SetColumn(domain.ColumnPriceLocalLag1, Lag(local, 1))
	return out
}

// Complete drops every row with at least one missing value and reports how
// many rows were removed. Usually only the first row goes, for lack of a lag;
// coverage gaps in any source remove more.
func Complete(f *domain.Frame) (*domain.Frame, int) {
	kept := f.Filter(f.RowComplete)
	return kept, f.Len() - kept.Len()
}

// Build runs Derive and Complete and returns the finished panel.
func Build(aligned *domain.Frame, period domain.Period) domain.MasterPanel {
	frame, dropped := Complete(Derive(aligned))
	return domain.MasterPanel{Frame: frame, Period: period, Dropped: dropped}
}
