package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// RegionalMinimumPrice is the guaranteed minimum price of one region for
// the year its validity starts.
type RegionalMinimumPrice struct {
	Year   int
	Region string
	Price  float64
}

var validityYear = regexp.MustCompile(`(\d{4})`)

// ValidityYear extracts the year of a validity label such as "JAN-2015".
func ValidityYear(label string) (int, bool) {
	m := validityYear.FindStringSubmatch(label)
	if m == nil {
		return 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return year, true
}

// ParseRegionalTable reads the minimum-price table. Rows without a year or
// region are invalid; a non-numeric price is kept as missing.
func ParseRegionalTable(t RawTable) ([]RegionalMinimumPrice, LoadStats, error) {
	cols, err := RegionalPriceColumnSet.Resolve(t.Header)
	if err != nil {
		return nil, LoadStats{}, err
	}

	stats := LoadStats{Rows: len(t.Rows)}
	out := make([]RegionalMinimumPrice, 0, len(t.Rows))
	for i := range t.Rows {
		year, ok := ValidityYear(t.Cell(i, cols[colValidity]))
		region := strings.TrimSpace(t.Cell(i, cols[colRegion]))
		if !ok || region == "" {
			stats.Invalid++
			continue
		}
		out = append(out, RegionalMinimumPrice{
			Year:   year,
			Region: region,
			Price:  parseDecimalOrMissing(t.Cell(i, cols[colMinimumPrice])),
		})
	}
	stats.Kept = len(out)
	return out, stats, nil
}
