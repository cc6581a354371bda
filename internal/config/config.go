package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/commodity-panel-etl/internal/domain"
)

// Config holds the settings of a panel run, populated from an optional YAML
// file and environment variables. Environment variables win.
type Config struct {
	PricePath         string
	SupplyDemandPath  string
	RegionalPricePath string

	WeatherDir      string
	WeatherPattern  string
	WeatherSentinel float64
	WeatherWorkers  int
	Stations        domain.StationTable

	AggregationWindow domain.Period
	OutputPath        string
	MetricsTextfile   string

	// Optional panel publication.
	KafkaBrokers []string
	KafkaTopic   string

	// Optional relational store used by panelctl.
	DatabaseURL string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// fileConfig is the layout of CONFIG_FILE.
type fileConfig struct {
	Sources struct {
		Price          string `yaml:"price"`
		SupplyDemand   string `yaml:"supply_demand"`
		RegionalPrice  string `yaml:"regional_price"`
		WeatherDir     string `yaml:"weather_dir"`
		WeatherPattern string `yaml:"weather_pattern"`
	} `yaml:"sources"`
	Weather struct {
		Sentinel *float64         `yaml:"sentinel"`
		Workers  int              `yaml:"workers"`
		Stations []domain.Station `yaml:"stations"`
	} `yaml:"weather"`
	AggregationWindow string `yaml:"aggregation_window"`
	OutputPath        string `yaml:"output_path"`
}

const maxWeatherWorkers = 64

// Load reads configuration, applying defaults where unset.
func Load() (*Config, error) {
	var fc fileConfig
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read CONFIG_FILE: %w", err)
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse CONFIG_FILE: %w", err)
		}
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	sentinelDefault := "-9999"
	if fc.Weather.Sentinel != nil {
		sentinelDefault = strconv.FormatFloat(*fc.Weather.Sentinel, 'f', -1, 64)
	}
	sentinel, err := strconv.ParseFloat(strings.TrimSpace(sharedcfg.EnvOrDefault("WEATHER_SENTINEL", sentinelDefault)), 64)
	if err != nil {
		return nil, errors.New("invalid WEATHER_SENTINEL")
	}

	workersDefault := "4"
	if fc.Weather.Workers > 0 {
		workersDefault = strconv.Itoa(fc.Weather.Workers)
	}
	workers, err := strconv.Atoi(sharedcfg.EnvOrDefault("WEATHER_WORKERS", workersDefault))
	if err != nil || workers < 1 || workers > maxWeatherWorkers {
		return nil, fmt.Errorf("WEATHER_WORKERS must be between 1 and %d", maxWeatherWorkers)
	}

	window, err := domain.ParsePeriod(sharedcfg.EnvOrDefault("AGGREGATION_WINDOW", or(fc.AggregationWindow, string(domain.Monthly))))
	if err != nil {
		return nil, fmt.Errorf("invalid AGGREGATION_WINDOW: %w", err)
	}

	stations := domain.StationTable(fc.Weather.Stations)
	if v := os.Getenv("STATIONS"); v != "" || len(stations) == 0 {
		stations = domain.ParseStationTable(sharedcfg.EnvOrDefault("STATIONS", "Sinop,Sorriso"))
	}

	var brokers []string
	if v := os.Getenv("PANEL_KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		PricePath:         sharedcfg.EnvOrDefault("PRICE_PATH", or(fc.Sources.Price, "data/price/real_price_and_us.xlsx")),
		SupplyDemandPath:  sharedcfg.EnvOrDefault("SUPPLY_DEMAND_PATH", or(fc.Sources.SupplyDemand, "data/oferta-e-demanda-milho.xlsx")),
		RegionalPricePath: sharedcfg.EnvOrDefault("REGIONAL_PRICE_PATH", fc.Sources.RegionalPrice),
		WeatherDir:        sharedcfg.EnvOrDefault("WEATHER_DIR", or(fc.Sources.WeatherDir, "data_tempo")),
		WeatherPattern:    sharedcfg.EnvOrDefault("WEATHER_PATTERN", or(fc.Sources.WeatherPattern, "INMET_*.CSV")),
		WeatherSentinel:   sentinel,
		WeatherWorkers:    workers,
		Stations:          stations,
		AggregationWindow: window,
		OutputPath:        sharedcfg.EnvOrDefault("OUTPUT_PATH", or(fc.OutputPath, "master_dataframe_mensal.csv")),
		MetricsTextfile:   os.Getenv("METRICS_TEXTFILE"),
		KafkaBrokers:      brokers,
		KafkaTopic:        os.Getenv("PANEL_KAFKA_TOPIC"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		HTTPAddr:          os.Getenv("HTTP_ADDR"),
		LogLevel:          sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:         sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:   shutdownTimeout,
	}

	if cfg.PricePath == "" {
		return nil, errors.New("PRICE_PATH is required")
	}
	if cfg.SupplyDemandPath == "" {
		return nil, errors.New("SUPPLY_DEMAND_PATH is required")
	}
	if cfg.WeatherDir == "" {
		return nil, errors.New("WEATHER_DIR is required")
	}
	if cfg.OutputPath == "" {
		return nil, errors.New("OUTPUT_PATH is required")
	}
	if len(cfg.Stations) == 0 {
		return nil, errors.New("STATIONS must name at least one station")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("PANEL_KAFKA_TOPIC is required when PANEL_KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// PublishEnabled reports whether panel rows should be published to Kafka.
func (c *Config) PublishEnabled() bool {
	return len(c.KafkaBrokers) > 0 && c.KafkaTopic != ""
}

func or(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
