package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod(" Monthly ")
	require.NoError(t, err)
	assert.Equal(t, Monthly, p)

	_, err = ParsePeriod("weekly")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weekly")
}

func TestPeriod_Start(t *testing.T) {
	ts := time.Date(2020, 8, 17, 13, 45, 0, 0, time.UTC)
	assert.Equal(t, date(2020, 8, 1), Monthly.Start(ts))
	assert.Equal(t, date(2020, 7, 1), Quarterly.Start(ts))
	assert.Equal(t, date(2020, 1, 1), Annual.Start(ts))
}

func TestPeriod_Range(t *testing.T) {
	t.Run("monthly across a year boundary", func(t *testing.T) {
		got := Monthly.Range(date(2019, 11, 20), date(2020, 2, 3))
		assert.Equal(t, []time.Time{date(2019, 11, 1), date(2019, 12, 1), date(2020, 1, 1), date(2020, 2, 1)}, got)
	})

	t.Run("quarterly", func(t *testing.T) {
		got := Quarterly.Range(date(2020, 2, 1), date(2020, 8, 1))
		assert.Equal(t, []time.Time{date(2020, 1, 1), date(2020, 4, 1), date(2020, 7, 1)}, got)
	})

	t.Run("single period", func(t *testing.T) {
		assert.Equal(t, []time.Time{date(2020, 1, 1)}, Monthly.Range(date(2020, 1, 2), date(2020, 1, 31)))
	})
}

func TestDay(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	assert.Equal(t, date(2020, 1, 2), Day(time.Date(2020, 1, 1, 22, 0, 0, 0, loc)))
}
