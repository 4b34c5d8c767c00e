// Package kafka publishes payment events and carries the callback queue.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"github.com/fitstack/reepay-payments/internal/core/domain"
)

const (
	DefaultBatchSize    = 100
	DefaultBatchTimeout = 100 * time.Millisecond
)

// messageWriter is the part of *kafka.Writer the publishers use.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.ReferenceHash{},
		BatchSize:              DefaultBatchSize,
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           DefaultBatchTimeout,
		Async:                  false,
		AllowAutoTopicCreation: false,
	}
}

// PaymentNotifier publishes payment events keyed by order id, so events of
// one order stay ordered. It implements ports.PaymentNotifier.
type PaymentNotifier struct {
	writer messageWriter
}

func NewPaymentNotifier(writer messageWriter) *PaymentNotifier {
	return &PaymentNotifier{writer: writer}
}

func (n *PaymentNotifier) NotifyPayment(ctx context.Context, event domain.PaymentEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "encode payment event")
	}
	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(event.Event)},
		},
	}
	return errors.Wrap(n.writer.WriteMessages(ctx, msg), "publish payment event")
}

// CallbackQueue puts callback items on the callbacks topic. It implements
// ports.CallbackQueue.
type CallbackQueue struct {
	writer messageWriter
}

func NewCallbackQueue(writer messageWriter) *CallbackQueue {
	return &CallbackQueue{writer: writer}
}

func (q *CallbackQueue) Enqueue(ctx context.Context, item domain.CallbackItem) error {
	if item.OrderID == "" || item.InvoiceHandle == "" {
		return errors.Wrap(domain.ErrInvalidRequest, "callback item needs order id and invoice handle")
	}
	value, err := json.Marshal(item)
	if err != nil {
		return errors.Wrap(err, "encode callback item")
	}
	msg := kafka.Message{Key: []byte(item.OrderID), Value: value}
	return errors.Wrap(q.writer.WriteMessages(ctx, msg), "enqueue callback item")
}
