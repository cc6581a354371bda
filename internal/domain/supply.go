package domain

import (
	"regexp"
	"slices"
	"strconv"
)

// SupplyDemandYear is one marketing year of the supply/demand report.
// Offer and Demand are missing when the cell could not be coerced.
type SupplyDemandYear struct {
	Year   int
	Offer  float64
	Demand float64
}

// StockToUse returns (offer - demand) / demand, or missing when either value
// is missing or demand is zero.
func (y SupplyDemandYear) StockToUse() float64 {
	if IsMissing(y.Offer) || IsMissing(y.Demand) || y.Demand == 0 {
		return Missing()
	}
	return (y.Offer - y.Demand) / y.Demand
}

// SupplyDemandSeries is sorted by year with unique years.
type SupplyDemandSeries []SupplyDemandYear

// ParseSupplyDemandTable builds the annual series. Rows without a year are
// skipped. A year seen twice keeps its first row; later rows are rejected.
func ParseSupplyDemandTable(t RawTable) (SupplyDemandSeries, LoadStats, error) {
	cols, err := SupplyDemandColumnSet.Resolve(t.Header)
	if err != nil {
		return nil, LoadStats{}, err
	}

	stats := LoadStats{Rows: len(t.Rows)}
	seen := make(map[int]struct{}, len(t.Rows))
	series := make(SupplyDemandSeries, 0, len(t.Rows))
	for i := range t.Rows {
		year, ok := MarketingYear(t.Cell(i, cols[colMarketingYear]))
		if !ok {
			stats.Invalid++
			continue
		}
		if _, dup := seen[year]; dup {
			stats.Duplicates++
			continue
		}
		seen[year] = struct{}{}
		series = append(series, SupplyDemandYear{
			Year:   year,
			Offer:  parseDecimalOrMissing(t.Cell(i, cols[colOffer])),
			Demand: parseDecimalOrMissing(t.Cell(i, cols[colDemand])),
		})
	}

	slices.SortFunc(series, func(a, b SupplyDemandYear) int { return a.Year - b.Year })
	stats.Kept = len(series)
	return series, stats, nil
}

var leadingYear = regexp.MustCompile(`^\s*(\d{4})(?:\D|$)`)

// MarketingYear extracts the starting year of a label such as "2015/16".
func MarketingYear(label string) (int, bool) {
	m := leadingYear.FindStringSubmatch(label)
	if m == nil {
		return 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return year, true
}
