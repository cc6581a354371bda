package domain

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// PricePoint is one trading day of the price series.
type PricePoint struct {
	Date    time.Time
	Local   float64
	Foreign float64
}

// PriceSeries is a daily price series sorted by date with unique dates.
type PriceSeries []PricePoint

// Frame converts the series to a frame with price_local and price_foreign columns.
func (s PriceSeries) Frame() *Frame {
	index := make([]time.Time, len(s))
	local := make([]float64, len(s))
	foreign := make([]float64, len(s))
	for i, p := range s {
		index[i] = p.Date
		local[i] = p.Local
		foreign[i] = p.Foreign
	}
	f := NewFrame(index)
	_ = f.SetColumn(VariablePriceLocal, local)
	_ = f.SetColumn(VariablePriceForeign, foreign)
	return f
}

// ParsePriceTable builds a price series from a raw table. Rows with an
// unparsable date or a missing price are dropped; for duplicate dates the
// first row wins.
func ParsePriceTable(t RawTable) (PriceSeries, LoadStats, error) {
	cols, err := PriceColumnSet.Resolve(t.Header)
	if err != nil {
		return nil, LoadStats{}, err
	}

	stats := LoadStats{Rows: len(t.Rows)}
	seen := make(map[time.Time]struct{}, len(t.Rows))
	series := make(PriceSeries, 0, len(t.Rows))
	for i := range t.Rows {
		date, ok := ParseDayMonthYear(t.Cell(i, cols[colDate]))
		if !ok {
			stats.Invalid++
			continue
		}
		local := parseDecimalOrMissing(t.Cell(i, cols[colLocalPrice]))
		foreign := parseDecimalOrMissing(t.Cell(i, cols[colForeignPrice]))
		if IsMissing(local) || IsMissing(foreign) {
			stats.Incomplete++
			continue
		}
		if _, dup := seen[date]; dup {
			stats.Duplicates++
			continue
		}
		seen[date] = struct{}{}
		series = append(series, PricePoint{Date: date, Local: local, Foreign: foreign})
	}

	slices.SortStableFunc(series, func(a, b PricePoint) int { return a.Date.Compare(b.Date) })
	stats.Kept = len(series)
	return series, stats, nil
}

var dayFirstLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02/01/2006 15:04:05",
	"02-01-2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseDayMonthYear parses a date cell written day first. Spreadsheet serial
// numbers and ISO dates are accepted as well. The result is a UTC calendar day.
func ParseDayMonthYear(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial <= 0 {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return Day(t), true
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), true
		}
	}
	return time.Time{}, false
}
