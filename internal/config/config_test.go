package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/commodity-panel-etl/internal/domain"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/price/real_price_and_us.xlsx", cfg.PricePath)
	assert.Equal(t, "data/oferta-e-demanda-milho.xlsx", cfg.SupplyDemandPath)
	assert.Empty(t, cfg.RegionalPricePath)
	assert.Equal(t, "data_tempo", cfg.WeatherDir)
	assert.Equal(t, "INMET_*.CSV", cfg.WeatherPattern)
	assert.Equal(t, -9999.0, cfg.WeatherSentinel)
	assert.Equal(t, 4, cfg.WeatherWorkers)
	assert.Equal(t, domain.StationTable{{Label: "Sinop"}, {Label: "Sorriso"}}, cfg.Stations)
	assert.Equal(t, domain.Monthly, cfg.AggregationWindow)
	assert.Equal(t, "master_dataframe_mensal.csv", cfg.OutputPath)
	assert.Empty(t, cfg.MetricsTextfile)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.PublishEnabled())
	assert.Empty(t, cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("PRICE_PATH", "/in/price.xlsx")
	t.Setenv("SUPPLY_DEMAND_PATH", "/in/supply.xlsx")
	t.Setenv("REGIONAL_PRICE_PATH", "/in/regional.xlsx")
	t.Setenv("WEATHER_DIR", "/in/weather")
	t.Setenv("WEATHER_PATTERN", "*.csv")
	t.Setenv("WEATHER_SENTINEL", "-999")
	t.Setenv("WEATHER_WORKERS", "8")
	t.Setenv("STATIONS", "Sinop,Lucas=LUCAS_DO_RIO_VERDE")
	t.Setenv("AGGREGATION_WINDOW", "quarterly")
	t.Setenv("OUTPUT_PATH", "/out/panel.csv")
	t.Setenv("METRICS_TEXTFILE", "/out/panel.prom")
	t.Setenv("PANEL_KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("PANEL_KAFKA_TOPIC", "commodity-panel")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/in/price.xlsx", cfg.PricePath)
	assert.Equal(t, "/in/supply.xlsx", cfg.SupplyDemandPath)
	assert.Equal(t, "/in/regional.xlsx", cfg.RegionalPricePath)
	assert.Equal(t, "/in/weather", cfg.WeatherDir)
	assert.Equal(t, "*.csv", cfg.WeatherPattern)
	assert.Equal(t, -999.0, cfg.WeatherSentinel)
	assert.Equal(t, 8, cfg.WeatherWorkers)
	assert.Equal(t, domain.StationTable{{Label: "Sinop"}, {Label: "Lucas", Match: "LUCAS_DO_RIO_VERDE"}}, cfg.Stations)
	assert.Equal(t, domain.Quarterly, cfg.AggregationWindow)
	assert.Equal(t, "/out/panel.csv", cfg.OutputPath)
	assert.Equal(t, "/out/panel.prom", cfg.MetricsTextfile)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "commodity-panel", cfg.KafkaTopic)
	assert.True(t, cfg.PublishEnabled())
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sources:
  price: fixtures/price.xlsx
  weather_dir: fixtures/weather
weather:
  sentinel: -8888
  workers: 2
  stations:
    - label: Sinop
    - label: Sorriso
      match: A904
aggregation_window: annual
`), 0o644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("WEATHER_DIR", "/override/weather")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "fixtures/price.xlsx", cfg.PricePath)
	assert.Equal(t, "/override/weather", cfg.WeatherDir, "env wins over file")
	assert.Equal(t, "data/oferta-e-demanda-milho.xlsx", cfg.SupplyDemandPath)
	assert.Equal(t, -8888.0, cfg.WeatherSentinel)
	assert.Equal(t, 2, cfg.WeatherWorkers)
	assert.Equal(t, domain.StationTable{{Label: "Sinop"}, {Label: "Sorriso", Match: "A904"}}, cfg.Stations)
	assert.Equal(t, domain.Annual, cfg.AggregationWindow)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"invalid shutdown timeout", map[string]string{"SHUTDOWN_TIMEOUT": "not-a-duration"}, "SHUTDOWN_TIMEOUT"},
		{"negative shutdown timeout", map[string]string{"SHUTDOWN_TIMEOUT": "-1s"}, "SHUTDOWN_TIMEOUT"},
		{"invalid sentinel", map[string]string{"WEATHER_SENTINEL": "none"}, "WEATHER_SENTINEL"},
		{"zero workers", map[string]string{"WEATHER_WORKERS": "0"}, "WEATHER_WORKERS"},
		{"too many workers", map[string]string{"WEATHER_WORKERS": "65"}, "WEATHER_WORKERS"},
		{"unknown window", map[string]string{"AGGREGATION_WINDOW": "weekly"}, "AGGREGATION_WINDOW"},
		{"empty stations", map[string]string{"STATIONS": " , "}, "STATIONS"},
		{"brokers without topic", map[string]string{"PANEL_KAFKA_BROKERS": "localhost:9092"}, "PANEL_KAFKA_TOPIC"},
		{"missing config file", map[string]string{"CONFIG_FILE": "/does/not/exist.yaml"}, "CONFIG_FILE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
