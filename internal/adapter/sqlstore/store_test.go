package sqlstore_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/commodity-panel-etl/internal/adapter/sqlstore"
	"github.com/couchcryptid/commodity-panel-etl/internal/domain"
)

func openStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	s, err := sqlstore.Open(context.Background(), filepath.Join(t.TempDir(), "panel.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDriverFor(t *testing.T) {
	tests := []struct {
		dsn, driver, source string
	}{
		{"postgres://u:p@localhost/db", "postgres", "postgres://u:p@localhost/db"},
		{"postgresql://localhost/db", "postgres", "postgresql://localhost/db"},
		{"sqlite://data/panel.db", "sqlite", "data/panel.db"},
		{"panel.db", "sqlite", "panel.db"},
	}
	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			driver, source := sqlstore.DriverFor(tt.dsn)
			assert.Equal(t, tt.driver, driver)
			assert.Equal(t, tt.source, source)
		})
	}
}

func TestOpen_RequiresDSN(t *testing.T) {
	_, err := sqlstore.Open(context.Background(), "")
	assert.Error(t, err)
}

func TestReplacePrices(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	first := domain.PriceSeries{
		{Date: date(2020, 1, 2), Local: 50.5, Foreign: 12.1},
		{Date: date(2020, 1, 3), Local: 51, Foreign: domain.Missing()},
	}
	n, err := s.ReplacePrices(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := s.Prices(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, date(2020, 1, 2), got[0].Date)
	assert.InDelta(t, 50.5, got[0].Local, 0)
	assert.True(t, domain.IsMissing(got[1].Foreign))

	second := domain.PriceSeries{{Date: date(2021, 5, 1), Local: 80, Foreign: 15}}
	_, err = s.ReplacePrices(ctx, second)
	require.NoError(t, err)

	got, err = s.Prices(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1, "table is replaced, not appended")
	assert.Equal(t, date(2021, 5, 1), got[0].Date)
}

func TestSaveArticles_SkipsDuplicates(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	require.NoError(t, s.EnsureArticleSchema(ctx))
	require.NoError(t, s.EnsureArticleSchema(ctx), "idempotent")

	collected := time.Date(2025, 9, 16, 10, 0, 0, 0, time.FixedZone("BRT", -3*3600))
	articles := []domain.Article{
		{PublishedOn: date(2025, 9, 1), Title: "Milho sobe", Content: "a", Source: "Agro", URL: "https://example.com/1", CollectedAt: collected},
		{PublishedOn: date(2025, 9, 2), Title: "Milho cai", Content: "b", Source: "Agro", URL: "https://example.com/2", CollectedAt: collected},
	}
	saved, err := s.SaveArticles(ctx, articles)
	require.NoError(t, err)
	assert.Equal(t, 2, saved)

	again := append(articles, domain.Article{PublishedOn: date(2025, 9, 2), Title: "Milho sobe", Content: "c", Source: "Agro", CollectedAt: collected})
	saved, err = s.SaveArticles(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, 1, saved, "same title on another day is new")

	got, err := s.ListArticles(ctx, date(2025, 9, 1), date(2025, 9, 1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Milho sobe", got[0].Title)
	assert.True(t, collected.Equal(got[0].CollectedAt))

	got, err = s.ListArticles(ctx, date(2025, 9, 1), date(2025, 9, 30))
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, date(2025, 9, 2), got[0].PublishedOn)
}

func TestSaveArticles_Empty(t *testing.T) {
	s := openStore(t)
	saved, err := s.SaveArticles(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, saved)
}
