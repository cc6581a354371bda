package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/commodity-panel-etl/internal/domain"
	"github.com/couchcryptid/commodity-panel-etl/internal/observability"
)

// PriceExtractor loads the daily price series.
type PriceExtractor interface {
	LoadPrices(ctx context.Context) (domain.PriceSeries, error)
}

// SupplyDemandExtractor loads the annual supply/demand series.
type SupplyDemandExtractor interface {
	LoadSupplyDemand(ctx context.Context) (domain.SupplyDemandSeries, error)
}

// WeatherExtractor unifies the station files into a daily frame.
type WeatherExtractor interface {
	Unify(ctx context.Context) (*domain.Frame, error)
}

// Sources holds the normalized inputs of one run.
type Sources struct {
	Prices       domain.PriceSeries
	SupplyDemand domain.SupplyDemandSeries
	Weather      *domain.Frame
}

// Transformer turns the sources into the master panel.
type Transformer interface {
	Transform(ctx context.Context, src Sources) (domain.MasterPanel, error)
}

// PanelLoader persists or publishes a finished panel.
type PanelLoader interface {
	LoadPanel(ctx context.Context, panel domain.MasterPanel) error
}

// Extractors groups the three source stages.
type Extractors struct {
	Prices       PriceExtractor
	SupplyDemand SupplyDemandExtractor
	Weather      WeatherExtractor
}

// Summary describes a completed run.
type Summary struct {
	RunID     string
	Rows      int
	Dropped   int
	Published int
	Duration  time.Duration
}

// Pipeline runs one batch extract-transform-load pass. The sink receives the
// panel first; publishers only run once the sink has succeeded.
type Pipeline struct {
	extract     Extractors
	transformer Transformer
	sink        PanelLoader
	publishers  []PanelLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
}

// New creates a Pipeline with the given stages and observability.
func New(e Extractors, t Transformer, sink PanelLoader, logger *slog.Logger, metrics *observability.Metrics, publishers ...PanelLoader) *Pipeline {
	return &Pipeline{
		extract:     e,
		transformer: t,
		sink:        sink,
		publishers:  publishers,
		logger:      logger,
		metrics:     metrics,
	}
}

// CheckReadiness returns nil once a run has persisted a panel.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no panel has been built yet")
	}
	return nil
}

// Run executes one pass. Any unavailable source aborts the run before
// anything is written.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)

	logger.Info("run started")
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	src, err := p.extractAll(ctx)
	if err != nil {
		p.metrics.RunFailures.WithLabelValues("extract").Inc()
		logger.Error("extract failed", "error", err)
		return Summary{RunID: runID}, err
	}

	panel, err := p.transformer.Transform(ctx, src)
	if err == nil && (panel.Frame == nil || panel.Frame.Len() == 0) {
		err = errors.New("panel has no complete rows")
	}
	if err != nil {
		p.metrics.RunFailures.WithLabelValues("transform").Inc()
		logger.Error("transform failed", "error", err)
		return Summary{RunID: runID}, fmt.Errorf("transform: %w", err)
	}
	panel.RunID = runID
	panel.BuiltAt = domain.Now()
	p.metrics.PanelRowsDropped.Add(float64(panel.Dropped))

	if err := p.sink.LoadPanel(ctx, panel); err != nil {
		p.metrics.RunFailures.WithLabelValues("load").Inc()
		logger.Error("load failed", "error", err)
		return Summary{RunID: runID}, fmt.Errorf("load: %w", err)
	}
	p.metrics.PanelRowsWritten.Add(float64(panel.Frame.Len()))
	p.metrics.LastSuccess.Set(float64(panel.BuiltAt.Unix()))
	p.ready.Store(true)

	summary := Summary{
		RunID:   runID,
		Rows:    panel.Frame.Len(),
		Dropped: panel.Dropped,
	}

	for _, pub := range p.publishers {
		if err := pub.LoadPanel(ctx, panel); err != nil {
			p.metrics.RunFailures.WithLabelValues("publish").Inc()
			logger.Error("publish failed", "error", err)
			summary.Duration = time.Since(start)
			return summary, fmt.Errorf("publish: %w", err)
		}
		p.metrics.PanelRowsPublished.Add(float64(panel.Frame.Len()))
		summary.Published++
	}

	summary.Duration = time.Since(start)
	p.metrics.RunDuration.Observe(summary.Duration.Seconds())
	logger.Info("run finished",
		"rows", summary.Rows,
		"dropped", summary.Dropped,
		"published", summary.Published,
		"duration", summary.Duration,
	)
	return summary, nil
}

// extractAll loads every source, reporting all failures together.
func (p *Pipeline) extractAll(ctx context.Context) (Sources, error) {
	var src Sources
	var errs []error

	prices, err := p.extract.Prices.LoadPrices(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	supply, err := p.extract.SupplyDemand.LoadSupplyDemand(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	weather, err := p.extract.Weather.Unify(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return src, errors.Join(errs...)
	}

	src.Prices, src.SupplyDemand, src.Weather = prices, supply, weather
	return src, nil
}
