package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
)

type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaForwarder copies bus events onto a Kafka topic keyed by event type.
type KafkaForwarder struct {
	writer     KafkaWriter
	logger     *slog.Logger
	maxRetries uint64
	timeout    time.Duration
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
		Topic:    topic,
	}
}

func NewKafkaForwarder(writer KafkaWriter, logger *slog.Logger, maxRetries uint64, timeout time.Duration) *KafkaForwarder {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &KafkaForwarder{
		writer:     writer,
		logger:     logger.With("component", "kafka_forwarder"),
		maxRetries: maxRetries,
		timeout:    timeout,
	}
}

// Register subscribes the forwarder to every certificate event type.
func (f *KafkaForwarder) Register(bus *EventBus) {
	bus.SubscribeMany(CertificateEventTypes, f.Handle)
}

func (f *KafkaForwarder) Handle(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.EventID(), err)
	}
	msg := kafka.Message{
		Key:   []byte(event.EventType()),
		Value: value,
		Time:  event.OccurredAt(),
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	attempt := 0
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), f.maxRetries), ctx)
	err = backoff.Retry(func() error {
		attempt++
		if werr := f.writer.WriteMessages(ctx, msg); werr != nil {
			f.logger.Warn("kafka write failed", "event_id", event.EventID(), "attempt", attempt, "error", werr)
			return werr
		}
		return nil
	}, policy)
	if err != nil {
		return fmt.Errorf("forward event %s: %w", event.EventID(), err)
	}

	f.logger.Debug("event forwarded", "event_type", event.EventType(), "event_id", event.EventID())
	return nil
}

func (f *KafkaForwarder) Close() error {
	return f.writer.Close()
}
