package domain

import (
	"slices"
	"strings"
	"time"
)

// Panel column names besides the per-station weather columns.
const (
	ColumnDate           = "date"
	ColumnPriceLocal     = VariablePriceLocal
	ColumnPriceForeign   = VariablePriceForeign
	ColumnStockToUse     = VariableStockToUse
	ColumnExchangeRate   = "exchange_rate"
	ColumnPriceLocalLag1 = "price_local_lag1"
)

// StationColumn names the column of a station-qualified variable.
func StationColumn(variable, station string) string {
	return variable + "_" + station
}

// MasterPanel is the consolidated, complete panel keyed by period start.
type MasterPanel struct {
	Frame  *Frame
	Period Period
	// Dropped counts rows removed by the completeness gate.
	Dropped int

	RunID   string
	BuiltAt time.Time
}

// PanelColumnOrder sorts panel columns into their published order: prices,
// precipitation and temperature per station (stations sorted), stock-to-use,
// exchange rate, lagged price, then anything else by name.
func PanelColumnOrder(columns []string) []string {
	rank := func(c string) int {
		switch {
		case c == ColumnPriceLocal:
			return 0
		case c == ColumnPriceForeign:
			return 1
		case strings.HasPrefix(c, VariablePrecipitation+"_"):
			return 2
		case strings.HasPrefix(c, VariableTemperature+"_"):
			return 3
		case c == ColumnStockToUse:
			return 4
		case c == ColumnExchangeRate:
			return 5
		case c == ColumnPriceLocalLag1:
			return 6
		default:
			return 7
		}
	}
	out := slices.Clone(columns)
	slices.SortStableFunc(out, func(a, b string) int {
		if ra, rb := rank(a), rank(b); ra != rb {
			return ra - rb
		}
		return strings.Compare(a, b)
	})
	return out
}
