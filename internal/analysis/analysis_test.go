package analysis_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/commodity-panel-etl/internal/analysis"
	"github.com/couchcryptid/commodity-panel-etl/internal/domain"
)

func frame(t *testing.T, cols map[string][]float64, order ...string) *domain.Frame {
	t.Helper()
	n := len(cols[order[0]])
	index := make([]time.Time, n)
	for i := range index {
		index[i] = time.Date(2020, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC)
	}
	f := domain.NewFrame(index)
	for _, name := range order {
		require.NoError(t, f.SetColumn(name, cols[name]))
	}
	return f
}

func TestCorrelationMatrix(t *testing.T) {
	nan := domain.Missing()
	f := frame(t, map[string][]float64{
		"a":     {1, 2, 3, 4},
		"twice": {2, 4, 6, 8},
		"neg":   {4, 3, 2, 1},
		"flat":  {5, 5, 5, 5},
		"gappy": {1, nan, 3, nan},
	}, "a", "twice", "neg", "flat", "gappy")

	m := analysis.CorrelationMatrix(f)
	assert.Equal(t, []string{"a", "twice", "neg", "flat", "gappy"}, m.Columns)
	assert.InDelta(t, 1, m.At("a", "a"), 1e-12)
	assert.InDelta(t, 1, m.At("a", "twice"), 1e-12)
	assert.InDelta(t, -1, m.At("a", "neg"), 1e-12)
	assert.Equal(t, m.At("neg", "a"), m.At("a", "neg"))
	assert.True(t, domain.IsMissing(m.At("a", "flat")), "constant column")
	assert.InDelta(t, 1, m.At("a", "gappy"), 1e-12, "pairwise complete rows")
	assert.True(t, domain.IsMissing(m.At("a", "unknown")))
}

func TestMatrix_WriteCSV(t *testing.T) {
	f := frame(t, map[string][]float64{"a": {1, 2, 3}, "b": {3, 2, 1}}, "a", "b")
	var buf bytes.Buffer
	require.NoError(t, analysis.CorrelationMatrix(f).WriteCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{",a,b", "a,1.0000,-1.0000", "b,-1.0000,1.0000"}, lines)
}

func TestRegionalRanking(t *testing.T) {
	prices := []domain.RegionalMinimumPrice{
		{Year: 2022, Region: "MT", Price: 20},
		{Year: 2023, Region: "PR", Price: 25},
		{Year: 2023, Region: "MT", Price: 21},
		{Year: 2023, Region: "RS", Price: 25},
		{Year: 2023, Region: "GO", Price: domain.Missing()},
	}

	ranked, year, err := analysis.RegionalRanking(prices, 0)
	require.NoError(t, err)
	assert.Equal(t, 2023, year)
	require.Len(t, ranked, 3)
	assert.Equal(t, []string{"PR", "RS", "MT"}, []string{ranked[0].Region, ranked[1].Region, ranked[2].Region})

	ranked, _, err = analysis.RegionalRanking(prices, 2022)
	require.NoError(t, err)
	assert.Len(t, ranked, 1)

	_, _, err = analysis.RegionalRanking(prices, 1999)
	assert.ErrorContains(t, err, "1999")

	_, _, err = analysis.RegionalRanking(nil, 0)
	assert.Error(t, err)
}

func TestAnnualPriceVsStockToUse(t *testing.T) {
	day := func(y, m int) time.Time { return time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC) }
	prices := domain.PriceSeries{
		{Date: day(2019, 1), Local: 40},
		{Date: day(2019, 6), Local: 50},
		{Date: day(2020, 1), Local: 60},
		{Date: day(2021, 1), Local: 70},
	}
	supply := domain.SupplyDemandSeries{
		{Year: 2018, Offer: 110, Demand: 100},
		{Year: 2019, Offer: 120, Demand: 100},
		{Year: 2020, Offer: 130, Demand: 0},
		{Year: 2021, Offer: 150, Demand: 100},
	}

	got := analysis.AnnualPriceVsStockToUse(prices, supply)
	require.Len(t, got, 2)
	assert.Equal(t, 2019, got[0].Year)
	assert.InDelta(t, 45, got[0].PriceLocal, 1e-9)
	assert.InDelta(t, 0.2, got[0].StockToUse, 1e-9)
	assert.Equal(t, 2021, got[1].Year)

	assert.InDelta(t, 1, analysis.AnnualCorrelation(got), 1e-9)
}
