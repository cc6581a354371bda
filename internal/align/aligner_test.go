package align

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/commodity-panel-etl/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func monthly() *Aligner {
	return New(domain.Monthly, domain.DefaultFillPolicies(-9999))
}

func TestAlign_TwoJanuaryRows(t *testing.T) {
	prices := domain.PriceSeries{
		{Date: date(2020, 1, 2), Local: 5.00, Foreign: 1.00},
		{Date: date(2020, 1, 3), Local: 5.20, Foreign: 1.02},
	}

	panel, err := monthly().Align(prices, nil, nil)
	require.NoError(t, err)
	require.Equal(t, []time.Time{date(2020, 1, 1)}, panel.Index)
	assert.InDelta(t, 5.10, panel.Value(domain.ColumnPriceLocal, 0), 1e-9)
	assert.InDelta(t, 1.01, panel.Value(domain.ColumnPriceForeign, 0), 1e-9)
	assert.True(t, domain.IsMissing(panel.Value(domain.ColumnStockToUse, 0)))
}

func TestResample_Idempotent(t *testing.T) {
	a := monthly()
	daily := domain.NewFrame([]time.Time{date(2020, 1, 5), date(2020, 1, 20), date(2020, 3, 2), date(2020, 3, 3)})
	require.NoError(t, daily.SetColumn("price_local", []float64{5, 6, 7, 8}))
	require.NoError(t, daily.SetColumn("precipitation_sinop", []float64{10, 2.5, 0, 4}))
	require.NoError(t, daily.SetColumn("temperature_sinop", []float64{24, 26, 25, 27}))

	once := a.Resample(daily)
	twice := a.Resample(once)

	opt := cmp.Options{cmp.AllowUnexported(domain.Frame{}), cmpopts.EquateNaNs()}
	if diff := cmp.Diff(once, twice, opt); diff != "" {
		t.Errorf("re-aggregation changed the series (-once +twice):\n%s", diff)
	}

	assert.Equal(t, []time.Time{date(2020, 1, 1), date(2020, 2, 1), date(2020, 3, 1)}, once.Index, "contiguous index")
	assert.Equal(t, 5.5, once.Value("price_local", 0))
	assert.Equal(t, 12.5, once.Value("precipitation_sinop", 0))
	assert.Equal(t, 25.0, once.Value("temperature_sinop", 0))
	assert.True(t, domain.IsMissing(once.Value("precipitation_sinop", 1)), "no observation is missing, not zero")
}

func TestResample_PrecipitationAdditive(t *testing.T) {
	a := monthly()
	var index []time.Time
	var sinop, sorriso []float64
	for d := 1; d <= 31; d++ {
		index = append(index, date(2020, 1, d))
		sinop = append(sinop, float64(d%4)*1.5)
		sorriso = append(sorriso, float64(d%3))
	}
	daily := domain.NewFrame(index)
	require.NoError(t, daily.SetColumn("precipitation_sinop", sinop))
	require.NoError(t, daily.SetColumn("precipitation_sorriso", sorriso))

	sum := func(v []float64) float64 {
		total := 0.0
		for _, x := range v {
			total += x
		}
		return total
	}

	out := a.Resample(daily)
	assert.InDelta(t, sum(sinop), out.Value("precipitation_sinop", 0), 1e-9)
	assert.InDelta(t, sum(sorriso), out.Value("precipitation_sorriso", 0), 1e-9)
}

func TestStockToUse(t *testing.T) {
	supply := domain.SupplyDemandSeries{
		{Year: 2018, Offer: 110, Demand: 100},
		{Year: 2019, Offer: 120, Demand: 100},
	}
	index := domain.Monthly.Range(date(2017, 11, 1), date(2021, 2, 1))

	values := monthly().StockToUse(supply, index)

	for i, ts := range index {
		switch {
		case ts.Year() < 2018:
			assert.True(t, domain.IsMissing(values[i]), "before the first year: %s", ts)
		case ts.Year() == 2018:
			assert.InDelta(t, 0.1, values[i], 1e-12)
		default:
			assert.InDelta(t, 0.2, values[i], 1e-12, "2019 carried forward: %s", ts)
		}
		if i > 0 && ts.Year() == index[i-1].Year() && !domain.IsMissing(values[i]) {
			assert.Equal(t, values[i-1], values[i], "constant within a year")
		}
	}
}

func TestStockToUse_NoCarryPolicy(t *testing.T) {
	policies := domain.DefaultFillPolicies(-9999)
	p := policies[domain.VariableStockToUse]
	p.Missing = domain.FillNone
	policies[domain.VariableStockToUse] = p

	supply := domain.SupplyDemandSeries{{Year: 2018, Offer: 110, Demand: 100}}
	values := New(domain.Monthly, policies).StockToUse(supply, []time.Time{date(2018, 6, 1), date(2019, 1, 1)})
	assert.InDelta(t, 0.1, values[0], 1e-12)
	assert.True(t, domain.IsMissing(values[1]))
}

func TestAlign_PriceIsBackbone(t *testing.T) {
	prices := domain.PriceSeries{
		{Date: date(2020, 1, 2), Local: 5, Foreign: 1},
		{Date: date(2020, 3, 2), Local: 6, Foreign: 1.2},
	}
	weather := domain.NewFrame([]time.Time{date(2019, 12, 31), date(2020, 1, 10), date(2020, 4, 1)})
	require.NoError(t, weather.SetColumn("precipitation_sinop", []float64{3, 4, 5}))
	require.NoError(t, weather.SetColumn("temperature_sinop", []float64{20, 22, 24}))
	supply := domain.SupplyDemandSeries{{Year: 2019, Offer: 125, Demand: 100}}

	panel, err := monthly().Align(prices, weather, supply)
	require.NoError(t, err)

	assert.Equal(t, []time.Time{date(2020, 1, 1), date(2020, 2, 1), date(2020, 3, 1)}, panel.Index)
	assert.Equal(t, []string{"price_local", "price_foreign", "precipitation_sinop", "temperature_sinop", "stock_to_use"}, panel.Columns())
	assert.Equal(t, 4.0, panel.Value("precipitation_sinop", 0), "December weather not joined")
	assert.True(t, domain.IsMissing(panel.Value("price_local", 1)), "gap month kept with missing price")
	assert.True(t, domain.IsMissing(panel.Value("precipitation_sinop", 2)))
	assert.InDelta(t, 0.25, panel.Value("stock_to_use", 2), 1e-12)

	_, err = monthly().Align(nil, weather, supply)
	require.Error(t, err)
}

func TestResample_Quarterly(t *testing.T) {
	daily := domain.NewFrame([]time.Time{date(2020, 1, 15), date(2020, 2, 15), date(2020, 4, 1)})
	require.NoError(t, daily.SetColumn("precipitation_sinop", []float64{1, 2, 3}))
	require.NoError(t, daily.SetColumn("price_local", []float64{4, 6, 8}))

	out := New(domain.Quarterly, domain.DefaultFillPolicies(-9999)).Resample(daily)
	assert.Equal(t, []time.Time{date(2020, 1, 1), date(2020, 4, 1)}, out.Index)
	assert.Equal(t, 3.0, out.Value("precipitation_sinop", 0))
	assert.Equal(t, 5.0, out.Value("price_local", 0))
}

func TestLeftJoin(t *testing.T) {
	left := domain.NewFrame([]time.Time{date(2020, 1, 1), date(2020, 2, 1)})
	require.NoError(t, left.SetColumn("a", []float64{1, 2}))
	right := domain.NewFrame([]time.Time{date(2020, 2, 1), date(2020, 3, 1)})
	require.NoError(t, right.SetColumn("b", []float64{20, 30}))

	out := LeftJoin(left, right)
	assert.Equal(t, left.Index, out.Index)
	assert.Equal(t, []string{"a", "b"}, out.Columns())
	assert.True(t, domain.IsMissing(out.Value("b", 0)))
	assert.Equal(t, 20.0, out.Value("b", 1))
}
