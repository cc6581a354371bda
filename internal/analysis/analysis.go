// Package analysis computes the exploratory reports over the panel and its
// sources: the correlation matrix, the regional minimum-price ranking and the
// annual price against the stock-to-use ratio.
package analysis

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/couchcryptid/commodity-panel-etl/internal/domain"
)

// Matrix is a symmetric correlation matrix over named columns.
type Matrix struct {
	Columns []string
	Values  [][]float64
}

// At returns the correlation of two columns, or missing when either is unknown.
func (m Matrix) At(a, b string) float64 {
	i, j := slices.Index(m.Columns, a), slices.Index(m.Columns, b)
	if i < 0 || j < 0 {
		return domain.Missing()
	}
	return m.Values[i][j]
}

// CorrelationMatrix computes the Pearson correlation of every column pair
// over the rows where both values are present. Pairs with fewer than two
// such rows, or a constant column, are missing.
func CorrelationMatrix(f *domain.Frame) Matrix {
	columns := f.Columns()
	m := Matrix{Columns: columns, Values: make([][]float64, len(columns))}
	for i := range columns {
		m.Values[i] = make([]float64, len(columns))
	}

	for i, a := range columns {
		for j := i; j < len(columns); j++ {
			r := pairwise(f.MustColumn(a), f.MustColumn(columns[j]))
			m.Values[i][j], m.Values[j][i] = r, r
		}
	}
	return m
}

func pairwise(a, b []float64) float64 {
	x := make([]float64, 0, len(a))
	y := make([]float64, 0, len(a))
	for i := range a {
		if domain.IsMissing(a[i]) || domain.IsMissing(b[i]) {
			continue
		}
		x = append(x, a[i])
		y = append(y, b[i])
	}
	if len(x) < 2 {
		return domain.Missing()
	}
	return stat.Correlation(x, y, nil)
}

// WriteCSV writes the matrix with a leading column of row names.
func (m Matrix) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{""}, m.Columns...)); err != nil {
		return err
	}
	for i, name := range m.Columns {
		rec := make([]string, 0, len(m.Columns)+1)
		rec = append(rec, name)
		for _, v := range m.Values[i] {
			rec = append(rec, formatFloat(v))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	if domain.IsMissing(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// RegionalRanking lists the regions of one year by minimum price, highest
// first. Year zero selects the latest year present. Rows with a missing price
// are left out. The chosen year is returned with the ranking.
func RegionalRanking(prices []domain.RegionalMinimumPrice, year int) ([]domain.RegionalMinimumPrice, int, error) {
	if year == 0 {
		for _, p := range prices {
			year = max(year, p.Year)
		}
		if year == 0 {
			return nil, 0, fmt.Errorf("no regional prices")
		}
	}

	var out []domain.RegionalMinimumPrice
	for _, p := range prices {
		if p.Year == year && !domain.IsMissing(p.Price) {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, year, fmt.Errorf("no regional prices for %d", year)
	}
	slices.SortFunc(out, func(a, b domain.RegionalMinimumPrice) int {
		if c := cmp.Compare(b.Price, a.Price); c != 0 {
			return c
		}
		return cmp.Compare(a.Region, b.Region)
	})
	return out, year, nil
}

// AnnualPoint pairs the mean local price of a calendar year with that year's
// stock-to-use ratio.
type AnnualPoint struct {
	Year       int
	PriceLocal float64
	StockToUse float64
}

// AnnualPriceVsStockToUse joins the yearly mean local price with the
// supply/demand series. Only years present in both with both values known
// are returned, in year order.
func AnnualPriceVsStockToUse(prices domain.PriceSeries, supply domain.SupplyDemandSeries) []AnnualPoint {
	byYear := make(map[int][]float64)
	for _, p := range prices {
		byYear[p.Date.Year()] = append(byYear[p.Date.Year()], p.Local)
	}

	var out []AnnualPoint
	for _, y := range supply {
		values, ok := byYear[y.Year]
		if !ok {
			continue
		}
		pt := AnnualPoint{
			Year:       y.Year,
			PriceLocal: domain.AggregateMean.Reduce(values),
			StockToUse: y.StockToUse(),
		}
		if domain.IsMissing(pt.PriceLocal) || domain.IsMissing(pt.StockToUse) {
			continue
		}
		out = append(out, pt)
	}
	return out
}

// AnnualCorrelation is the Pearson correlation between price and stock-to-use
// across the annual points.
func AnnualCorrelation(points []AnnualPoint) float64 {
	x := make([]float64, len(points))
	y := make([]float64, len(points))
	for i, p := range points {
		x[i], y[i] = p.StockToUse, p.PriceLocal
	}
	return pairwise(x, y)
}
