// Command etl builds the master panel once from the configured sources and
// writes it to OUTPUT_PATH. With HTTP_ADDR set it then keeps serving health,
// metrics and the panel until interrupted.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/commodity-panel-etl/internal/adapter/http"
	"github.com/couchcryptid/commodity-panel-etl/internal/adapter/csvsink"
	kafkaadapter "github.com/couchcryptid/commodity-panel-etl/internal/adapter/kafka"
	"github.com/couchcryptid/commodity-panel-etl/internal/align"
	"github.com/couchcryptid/commodity-panel-etl/internal/config"
	"github.com/couchcryptid/commodity-panel-etl/internal/domain"
	"github.com/couchcryptid/commodity-panel-etl/internal/observability"
	"github.com/couchcryptid/commodity-panel-etl/internal/pipeline"
	"github.com/couchcryptid/commodity-panel-etl/internal/source"
	"github.com/couchcryptid/commodity-panel-etl/internal/weather"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	policies := domain.DefaultFillPolicies(cfg.WeatherSentinel)

	extractors := pipeline.Extractors{
		Prices:       source.NewPriceLoader(cfg.PricePath, logger, metrics),
		SupplyDemand: source.NewSupplyDemandLoader(cfg.SupplyDemandPath, logger, metrics),
		Weather: weather.New(weather.Config{
			Dir:      cfg.WeatherDir,
			Pattern:  cfg.WeatherPattern,
			Stations: cfg.Stations,
			Policies: policies,
			Workers:  cfg.WeatherWorkers,
		}, logger, metrics),
	}
	transformer := pipeline.NewTransformer(align.New(cfg.AggregationWindow, policies), logger)
	sink := csvsink.NewWriter(cfg.OutputPath)

	var publishers []pipeline.PanelLoader
	if cfg.PublishEnabled() {
		writer := kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		publishers = append(publishers, writer)
		logger.Info("panel publishing enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	p := pipeline.New(extractors, transformer, sink, logger, metrics, publishers...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, runErr := p.Run(ctx)
	if cfg.MetricsTextfile != "" {
		if err := observability.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Error("write metrics textfile", "path", cfg.MetricsTextfile, "error", err)
		}
	}
	if runErr != nil {
		logger.Error("panel run failed", "run_id", summary.RunID, "error", runErr)
		if summary.Rows == 0 {
			return 1
		}
	} else {
		logger.Info("panel written", "path", sink.Path(), "rows", summary.Rows, "run_id", summary.RunID)
	}

	if cfg.HTTPAddr == "" {
		if runErr != nil {
			return 1
		}
		return 0
	}
	return serve(ctx, cfg, p, logger)
}

// serve exposes the run until SIGINT or SIGTERM.
func serve(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline, logger *slog.Logger) int {
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, cfg.OutputPath, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	code := 0
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err, ok := <-errCh:
		if ok {
			logger.Error("http server error", "error", err)
			code = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
	return code
}
