package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/VictoriaMetrics/metrics"
	"github.com/segmentio/kafka-go"

	"github.com/fitstack/reepay-payments/internal/core/domain"
)

var (
	readErrorCounter      = metrics.GetOrCreateCounter(`kafka_reader_total{result="read_error",type="payment_callback"}`)
	unmarshalErrorCounter = metrics.GetOrCreateCounter(`kafka_reader_total{result="unmarshal_error",type="payment_callback"}`)
	processErrorCounter   = metrics.GetOrCreateCounter(`kafka_reader_total{result="process_error",type="payment_callback"}`)
	successCounter        = metrics.GetOrCreateCounter(`kafka_reader_total{result="success",type="payment_callback"}`)
)

// messageReader is the part of *kafka.Reader ReadCallbacks uses.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// CallbackProcessor handles one callback item.
type CallbackProcessor interface {
	Process(ctx context.Context, item domain.CallbackItem) error
}

func NewReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   topic,
	})
}

// ReadCallbacks feeds callback items to processor until ctx is done. Each
// message is processed to completion before the next is read. Failed items
// are logged and counted, not retried.
func ReadCallbacks(ctx context.Context, reader messageReader, processor CallbackProcessor, logger *slog.Logger) {
	for {
		m, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				logger.InfoContext(ctx, "Callback reader stopped")
				return
			}
			logger.ErrorContext(ctx, "Error reading callback message", "error", err)
			readErrorCounter.Inc()
			continue
		}

		var item domain.CallbackItem
		if err := json.Unmarshal(m.Value, &item); err != nil {
			logger.ErrorContext(ctx, "Error unmarshalling callback message", "error", err, "offset", m.Offset)
			unmarshalErrorCounter.Inc()
			continue
		}

		if err := processor.Process(ctx, item); err != nil {
			processErrorCounter.Inc()
			continue
		}
		successCounter.Inc()
	}
}
