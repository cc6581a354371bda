package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "panel_etl"

// Skip reasons for weather files.
const (
	SkipStation = "station_unresolved"
	SkipSchema  = "schema_resolution"
	SkipRead    = "read_error"
	SkipEmpty   = "no_readings"
)

// Metrics holds the Prometheus collectors of a panel run.
type Metrics struct {
	PipelineRunning prometheus.Gauge
	RunDuration     prometheus.Histogram
	RunFailures     *prometheus.CounterVec // labels: stage={extract,transform,load}
	LastSuccess     prometheus.Gauge

	// Source metrics.
	SourceRowsLoaded   *prometheus.CounterVec // labels: source
	SourceRowsRejected *prometheus.CounterVec // labels: source, reason={invalid,incomplete,duplicate}

	// Weather unification metrics.
	WeatherFilesProcessed prometheus.Counter
	WeatherFilesSkipped   *prometheus.CounterVec // labels: reason
	WeatherFileDuration   prometheus.Histogram

	// Panel metrics.
	PanelRowsDropped   prometheus.Counter
	PanelRowsWritten   prometheus.Counter
	PanelRowsPublished prometheus.Counter

	NewsArticles *prometheus.CounterVec // labels: outcome={collected,saved}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered metrics so tests can build as
// many pipelines as they need.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

// Register adds the collectors to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// WriteTextfile exports the default registry in the node-exporter textfile
// format, for batch runs that exit before anything can scrape them.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

func newMetrics() *Metrics {
	return &Metrics{
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while a panel run is in progress.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete extract-transform-load run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		RunFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "run_failures_total",
			Help:      "Runs aborted, by stage.",
		}, []string{"stage"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that persisted a panel.",
		}),
		SourceRowsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_rows_loaded_total",
			Help:      "Rows kept by each source loader.",
		}, []string{"source"}),
		SourceRowsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_rows_rejected_total",
			Help:      "Rows dropped by each source loader, by reason.",
		}, []string{"source", "reason"}),
		WeatherFilesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_files_processed_total",
			Help:      "Weather station files unified into the daily panel.",
		}),
		WeatherFilesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_files_skipped_total",
			Help:      "Weather station files skipped, by reason.",
		}, []string{"reason"}),
		WeatherFileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "weather_file_duration_seconds",
			Help:      "Time to read, clean and aggregate one station file.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		PanelRowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "panel_rows_dropped_total",
			Help:      "Panel rows removed by the completeness gate.",
		}),
		PanelRowsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "panel_rows_written_total",
			Help:      "Panel rows persisted to the master artifact.",
		}),
		PanelRowsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "panel_rows_published_total",
			Help:      "Panel rows published to Kafka.",
		}),
		NewsArticles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "news_articles_total",
			Help:      "News articles by outcome.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.PipelineRunning,
		m.RunDuration,
		m.RunFailures,
		m.LastSuccess,
		m.SourceRowsLoaded,
		m.SourceRowsRejected,
		m.WeatherFilesProcessed,
		m.WeatherFilesSkipped,
		m.WeatherFileDuration,
		m.PanelRowsDropped,
		m.PanelRowsWritten,
		m.PanelRowsPublished,
		m.NewsArticles,
	}
}
