//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/commodity-panel-etl/internal/adapter/csvsink"
	"github.com/couchcryptid/commodity-panel-etl/internal/adapter/kafka"
	"github.com/couchcryptid/commodity-panel-etl/internal/align"
	"github.com/couchcryptid/commodity-panel-etl/internal/domain"
	"github.com/couchcryptid/commodity-panel-etl/internal/mockdata"
	"github.com/couchcryptid/commodity-panel-etl/internal/observability"
	"github.com/couchcryptid/commodity-panel-etl/internal/pipeline"
	"github.com/couchcryptid/commodity-panel-etl/internal/source"
	"github.com/couchcryptid/commodity-panel-etl/internal/weather"
)

const testPanelTopic = "test-panel"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("panel-test"),
	)
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestPanelPublishedToKafka runs the batch pipeline on generated sources with
// the CSV sink and the Kafka publisher, then reads every row back.
func TestPanelPublishedToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testPanelTopic)

	fx, err := mockdata.Generate(t.TempDir(), mockdata.Options{
		Start: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2019, 12, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	logger := discardLogger()
	metrics := observability.NewMetricsForTesting()
	policies := domain.DefaultFillPolicies(-9999)

	ext := pipeline.Extractors{
		Prices:       source.NewPriceLoader(fx.PricePath, logger, metrics),
		SupplyDemand: source.NewSupplyDemandLoader(fx.SupplyDemandPath, logger, metrics),
		Weather: weather.New(weather.Config{
			Dir:      fx.WeatherDir,
			Pattern:  "INMET_*.CSV",
			Stations: domain.ParseStationTable("Sinop,Sorriso"),
			Policies: policies,
			Workers:  2,
		}, logger, metrics),
	}
	out := filepath.Join(t.TempDir(), "master_table.csv")
	writer := kafka.NewWriter([]string{broker}, testPanelTopic, logger)
	t.Cleanup(func() { _ = writer.Close() })

	p := pipeline.New(ext,
		pipeline.NewTransformer(align.New(domain.Monthly, policies), logger),
		csvsink.NewWriter(out),
		logger, metrics, writer,
	)
	summary, err := p.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 11, summary.Rows)
	require.Equal(t, 1, summary.Published)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testPanelTopic,
		GroupID:     fmt.Sprintf("test-panel-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	var keys []string
	for len(keys) < summary.Rows {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read from panel topic")

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, summary.RunID, headers["run_id"])
		_, err = time.Parse(time.RFC3339, headers["built_at"])
		assert.NoError(t, err, "built_at should be RFC3339")

		var row kafka.PanelRow
		require.NoError(t, json.Unmarshal(msg.Value, &row))
		assert.Equal(t, string(msg.Key), row.Date)
		assert.Equal(t, "monthly", row.Period)
		assert.Contains(t, row.Values, domain.ColumnExchangeRate)
		assert.Contains(t, row.Values, domain.StationColumn(domain.VariableTemperature, "sorriso"))
		keys = append(keys, row.Date)
	}

	assert.Equal(t, "2019-02-01", keys[0])
	assert.Equal(t, "2019-12-01", keys[len(keys)-1])
}
