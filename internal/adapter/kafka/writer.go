package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/commodity-panel-etl/internal/adapter/csvsink"
	"github.com/couchcryptid/commodity-panel-etl/internal/domain"
)

// PanelRow is the message published for each panel row.
type PanelRow struct {
	Date   string             `json:"date"`
	Period string             `json:"period"`
	RunID  string             `json:"run_id"`
	Values map[string]float64 `json:"values"`
}

// Writer publishes panel rows to a Kafka topic, keyed by period date.
// It implements pipeline.PanelLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the panel topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadPanel publishes every panel row in a single WriteMessages call.
func (w *Writer) LoadPanel(ctx context.Context, panel domain.MasterPanel) error {
	if panel.Frame == nil || panel.Frame.Len() == 0 {
		return nil
	}
	msgs, err := serializePanel(panel)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish panel: %w", err)
	}
	w.logger.Info("panel published", "topic", w.writer.Topic, "rows", len(msgs), "run_id", panel.RunID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializePanel turns each row into a keyed message.
func serializePanel(panel domain.MasterPanel) ([]kafkago.Message, error) {
	columns := panel.Frame.Columns()
	msgs := make([]kafkago.Message, panel.Frame.Len())
	for i, ts := range panel.Frame.Index {
		row := PanelRow{
			Date:   ts.Format(csvsink.DateLayout),
			Period: string(panel.Period),
			RunID:  panel.RunID,
			Values: make(map[string]float64, len(columns)),
		}
		for _, c := range columns {
			row.Values[c] = panel.Frame.Value(c, i)
		}
		data, err := json.Marshal(row)
		if err != nil {
			return nil, fmt.Errorf("serialize panel row %s: %w", row.Date, err)
		}
		msgs[i] = kafkago.Message{
			Key:   []byte(row.Date),
			Value: data,
			Headers: []kafkago.Header{
				{Key: "run_id", Value: []byte(panel.RunID)},
				{Key: "built_at", Value: []byte(panel.BuiltAt.Format(time.RFC3339))},
			},
		}
	}
	return msgs, nil
}
