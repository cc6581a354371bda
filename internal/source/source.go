// Package source loads the tabular inputs of the panel into typed series.
//
// Loaders never return partial results. A file that is absent, unreadable,
// has an unrecognised header or yields no usable rows is reported as a
// *domain.SourceUnavailableError after the cause has been logged.
package source

import (
	"context"
	"errors"
	"log/slog"

	"github.com/couchcryptid/commodity-panel-etl/internal/adapter/sheet"
	"github.com/couchcryptid/commodity-panel-etl/internal/domain"
	"github.com/couchcryptid/commodity-panel-etl/internal/observability"
)

// Source names used in errors, logs and metric labels.
const (
	NamePrice         = "price"
	NameSupplyDemand  = "supply_demand"
	NameRegionalPrice = "regional_price"
	NameWeather       = "weather"
)

var errNoRows = errors.New("no usable rows")

// TableReader reads a tabular file into a raw table.
type TableReader func(path string) (domain.RawTable, error)

type base struct {
	path    string
	read    TableReader
	logger  *slog.Logger
	metrics *observability.Metrics
}

func newBase(path string, logger *slog.Logger, metrics *observability.Metrics) base {
	return base{path: path, read: sheet.Read, logger: logger, metrics: metrics}
}

func (b base) unavailable(name string, err error) error {
	b.logger.Error("source unavailable", "source", name, "path", b.path, "error", err)
	return &domain.SourceUnavailableError{Source: name, Path: b.path, Err: err}
}

func (b base) record(name string, stats domain.LoadStats) {
	b.metrics.SourceRowsLoaded.WithLabelValues(name).Add(float64(stats.Kept))
	b.metrics.SourceRowsRejected.WithLabelValues(name, "invalid").Add(float64(stats.Invalid))
	b.metrics.SourceRowsRejected.WithLabelValues(name, "incomplete").Add(float64(stats.Incomplete))
	b.metrics.SourceRowsRejected.WithLabelValues(name, "duplicate").Add(float64(stats.Duplicates))

	if stats.Invalid > 0 || stats.Duplicates > 0 {
		b.logger.Warn("source rows rejected",
			"source", name,
			"invalid", stats.Invalid,
			"duplicates", stats.Duplicates,
		)
	}
	b.logger.Info("source loaded",
		"source", name,
		"path", b.path,
		"rows", stats.Rows,
		"kept", stats.Kept,
		"incomplete", stats.Incomplete,
	)
}

// PriceLoader loads the daily price workbook.
type PriceLoader struct{ base }

// NewPriceLoader creates a loader for the workbook at path.
func NewPriceLoader(path string, logger *slog.Logger, metrics *observability.Metrics) *PriceLoader {
	return &PriceLoader{newBase(path, logger, metrics)}
}

// LoadPrices returns the daily series sorted by date.
func (l *PriceLoader) LoadPrices(ctx context.Context) (domain.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	table, err := l.read(l.path)
	if err != nil {
		return nil, l.unavailable(NamePrice, err)
	}
	series, stats, err := domain.ParsePriceTable(table)
	if err != nil {
		return nil, l.unavailable(NamePrice, err)
	}
	if len(series) == 0 {
		return nil, l.unavailable(NamePrice, errNoRows)
	}
	l.record(NamePrice, stats)
	return series, nil
}

// SupplyDemandLoader loads the annual supply/demand workbook.
type SupplyDemandLoader struct{ base }

// NewSupplyDemandLoader creates a loader for the workbook at path.
func NewSupplyDemandLoader(path string, logger *slog.Logger, metrics *observability.Metrics) *SupplyDemandLoader {
	return &SupplyDemandLoader{newBase(path, logger, metrics)}
}

// LoadSupplyDemand returns one row per marketing year sorted by year.
func (l *SupplyDemandLoader) LoadSupplyDemand(ctx context.Context) (domain.SupplyDemandSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	table, err := l.read(l.path)
	if err != nil {
		return nil, l.unavailable(NameSupplyDemand, err)
	}
	series, stats, err := domain.ParseSupplyDemandTable(table)
	if err != nil {
		return nil, l.unavailable(NameSupplyDemand, err)
	}
	if len(series) == 0 {
		return nil, l.unavailable(NameSupplyDemand, errNoRows)
	}
	l.record(NameSupplyDemand, stats)
	return series, nil
}

// RegionalPriceLoader loads the regional minimum-price table.
type RegionalPriceLoader struct{ base }

// NewRegionalPriceLoader creates a loader for the table at path.
func NewRegionalPriceLoader(path string, logger *slog.Logger, metrics *observability.Metrics) *RegionalPriceLoader {
	return &RegionalPriceLoader{newBase(path, logger, metrics)}
}

// LoadRegionalPrices returns the table rows in file order.
func (l *RegionalPriceLoader) LoadRegionalPrices(ctx context.Context) ([]domain.RegionalMinimumPrice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	table, err := l.read(l.path)
	if err != nil {
		return nil, l.unavailable(NameRegionalPrice, err)
	}
	prices, stats, err := domain.ParseRegionalTable(table)
	if err != nil {
		return nil, l.unavailable(NameRegionalPrice, err)
	}
	if len(prices) == 0 {
		return nil, l.unavailable(NameRegionalPrice, errNoRows)
	}
	l.record(NameRegionalPrice, stats)
	return prices, nil
}
