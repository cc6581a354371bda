// Package weather unifies hourly station files into one daily,
// multi-station frame.
package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/commodity-panel-etl/internal/adapter/inmet"
	"github.com/couchcryptid/commodity-panel-etl/internal/domain"
	"github.com/couchcryptid/commodity-panel-etl/internal/observability"
)

const sourceName = "weather"

// Config selects the station files and how they are cleaned.
type Config struct {
	Dir      string
	Pattern  string
	Stations domain.StationTable
	Policies domain.FillPolicyTable
	Workers  int
}

// Unifier reads every station file in a directory. Files that cannot be
// attributed to a station or lack a required column are skipped.
type Unifier struct {
	cfg     Config
	read    func(path string) (domain.RawTable, error)
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Unifier. Workers below one process files sequentially.
func New(cfg Config, logger *slog.Logger, metrics *observability.Metrics) *Unifier {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Unifier{cfg: cfg, read: inmet.ReadFile, logger: logger, metrics: metrics}
}

type fileResult struct {
	station string
	records []domain.StationDailyRecord
	stats   domain.LoadStats
	reason  string
	err     error
}

// Unify returns the daily frame with precipitation_<station> and
// temperature_<station> columns. It fails with a *domain.SourceUnavailableError
// when the directory cannot be listed or no file could be processed.
func (u *Unifier) Unify(ctx context.Context) (*domain.Frame, error) {
	files, err := inmet.Discover(u.cfg.Dir, u.cfg.Pattern)
	if err != nil {
		return nil, u.unavailable(err)
	}
	if len(files) == 0 {
		return nil, u.unavailable(fmt.Errorf("no files match %q", u.cfg.Pattern))
	}

	results := make([]fileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.cfg.Workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			results[i] = u.processFile(path)
			u.metrics.WeatherFileDuration.Observe(time.Since(start).Seconds())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var records []domain.StationDailyRecord
	processed := 0
	for i, r := range results {
		name := filepath.Base(files[i])
		if r.err != nil {
			u.logger.Warn("weather file skipped", "file", name, "reason", r.reason, "error", r.err)
			u.metrics.WeatherFilesSkipped.WithLabelValues(r.reason).Inc()
			continue
		}
		if r.stats.Invalid > 0 {
			u.logger.Warn("weather rows with unparsable timestamp dropped", "file", name, "rows", r.stats.Invalid)
		}
		u.logger.Debug("weather file processed", "file", name, "station", r.station, "days", len(r.records))
		u.metrics.WeatherFilesProcessed.Inc()
		records = append(records, r.records...)
		processed++
	}

	if processed == 0 {
		return nil, u.unavailable(errors.New("no weather file could be processed"))
	}

	frame := domain.PivotStations(records)
	u.logger.Info("weather unified", "files", len(files), "processed", processed, "days", frame.Len())
	return frame, nil
}

func (u *Unifier) processFile(path string) fileResult {
	station, err := u.cfg.Stations.Resolve(path)
	if err != nil {
		return fileResult{reason: observability.SkipStation, err: err}
	}

	table, err := u.read(path)
	if err != nil {
		return fileResult{station: station.Key(), reason: observability.SkipRead, err: err}
	}

	cols, err := domain.ResolveWeatherColumns(table.Header)
	if err != nil {
		return fileResult{station: station.Key(), reason: observability.SkipSchema, err: err}
	}

	readings, stats := domain.CleanHourly(table, cols, u.cfg.Policies)
	if len(readings) == 0 {
		return fileResult{station: station.Key(), stats: stats, reason: observability.SkipEmpty, err: errors.New("no readable rows")}
	}

	return fileResult{
		station: station.Key(),
		records: domain.AggregateDaily(station.Key(), readings, u.cfg.Policies),
		stats:   stats,
	}
}

func (u *Unifier) unavailable(err error) error {
	u.logger.Error("source unavailable", "source", sourceName, "path", u.cfg.Dir, "error", err)
	return &domain.SourceUnavailableError{Source: sourceName, Path: u.cfg.Dir, Err: err}
}
