package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/segmentio/kafka-go"

	"github.com/Azizo-B/microservices/pkg/logger"
)

// ProducerConfig holds Kafka producer configuration.
type ProducerConfig struct {
	Brokers      []string
	BatchSize    int
	BatchTimeout time.Duration
	MaxRetries   uint
}

// DefaultProducerConfig returns sensible defaults for the Kafka producer.
func DefaultProducerConfig(brokers []string) ProducerConfig {
	return ProducerConfig{
		Brokers:      brokers,
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		MaxRetries:   3,
	}
}

// Producer wraps the kafka-go writer for publishing events.
type Producer struct {
	writer     *kafka.Writer
	brokers    []string
	maxRetries uint
	logger     *slog.Logger
	wg         sync.WaitGroup
}

// NewProducer creates a new Kafka producer.
func NewProducer(cfg ProducerConfig, logger *slog.Logger) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequireAll,
	}

	return &Producer{
		writer:     w,
		brokers:    cfg.Brokers,
		maxRetries: cfg.MaxRetries,
		logger:     logger,
	}
}

// Publish sends an event to the specified Kafka topic and waits for the broker
// acknowledgement.
func (p *Producer) Publish(ctx context.Context, topic string, event *Event) error {
	msg, err := buildMessage(topic, event)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.ErrorContext(ctx, "failed to publish event",
			slog.String("topic", topic),
			slog.String("event_type", event.EventType),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("publish event to %s: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "event published",
		slog.String("topic", topic),
		slog.String("event_type", event.EventType),
		slog.String("aggregate_id", event.AggregateID),
	)

	return nil
}

// PublishAsync sends an event in a background goroutine with bounded
// exponential-backoff retries. Failures are logged and dropped; the caller's
// request is never failed by a broker outage. The caller's context is only
// read for the correlation ID, so request cancellation does not abort delivery.
func (p *Producer) PublishAsync(ctx context.Context, topic string, event *Event) {
	if event.CorrelationID == "" {
		if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
			event.CorrelationID = cid
		}
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		pubCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		op := func() (struct{}, error) {
			return struct{}{}, p.Publish(pubCtx, topic, event)
		}

		_, err := backoff.Retry(pubCtx, op,
			backoff.WithBackOff(backoff.NewExponentialBackOff()),
			backoff.WithMaxTries(p.maxRetries),
		)
		if err != nil {
			p.logger.Error("event dropped after retries",
				slog.String("topic", topic),
				slog.String("event_type", event.EventType),
				slog.String("aggregate_id", event.AggregateID),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// Ping checks Kafka broker connectivity by dialing the first reachable broker.
func (p *Producer) Ping(ctx context.Context) error {
	return PingBrokers(ctx, p.brokers)
}

// PingBrokers dials the given Kafka brokers and returns nil if at least one
// broker is reachable. This is useful as a standalone health check when only
// consumers (no producer) are used.
func PingBrokers(ctx context.Context, brokers []string) error {
	if len(brokers) == 0 {
		return fmt.Errorf("kafka: no brokers configured")
	}

	var lastErr error
	for _, addr := range brokers {
		conn, err := kafka.DialContext(ctx, "tcp", addr)
		if err != nil {
			lastErr = err
			continue
		}
		_, err = conn.Brokers()
		_ = conn.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("kafka ping: all brokers unreachable: %w", lastErr)
}

// Close waits for in-flight async publishes and closes the underlying writer.
func (p *Producer) Close() error {
	p.wg.Wait()
	return p.writer.Close()
}

func buildMessage(topic string, event *Event) (kafka.Message, error) {
	data, err := event.Marshal()
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal event: %w", err)
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(event.AggregateID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "source", Value: []byte(event.Source)},
		},
	}

	if event.CorrelationID != "" {
		msg.Headers = append(msg.Headers, kafka.Header{
			Key: "correlation_id", Value: []byte(event.CorrelationID),
		})
	}

	return msg, nil
}
