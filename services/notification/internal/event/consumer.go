package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	pkgkafka "github.com/Azizo-B/microservices/pkg/kafka"
)

// SourceUserService is the service segment of the consumed topic names.
const SourceUserService = "user-service"

// ConsumerSet runs one consumer per subscribed user-service topic, all sharing
// a handler and a consumer group.
type ConsumerSet struct {
	consumers []*pkgkafka.Consumer
	logger    *slog.Logger
}

// NewConsumerSet creates consumers for the user-service event topics. The
// handler is wrapped with idempotency so redeliveries and group rebalances do
// not produce duplicate notifications.
func NewConsumerSet(
	brokers []string,
	environment string,
	store pkgkafka.IdempotencyStore,
	handler *Handler,
	logger *slog.Logger,
) *ConsumerSet {
	groupID := fmt.Sprintf("%s-notification-service-group", environment)
	wrapped := pkgkafka.IdempotentHandler(store, handler.Handle, logger)

	events := []string{
		EventUserCreated,
		EventVerificationTokenCreated,
		EventResetTokenCreated,
	}

	consumers := make([]*pkgkafka.Consumer, 0, len(events))
	for _, name := range events {
		consumers = append(consumers, pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
			Brokers: brokers,
			GroupID: groupID,
			Topic:   pkgkafka.Topic(environment, SourceUserService, name),
		}, wrapped, logger))
	}

	return &ConsumerSet{consumers: consumers, logger: logger}
}

// Start runs all consumers until the context is canceled, then waits for them
// to drain.
func (s *ConsumerSet) Start(ctx context.Context) {
	var wg sync.WaitGroup
	for _, c := range s.consumers {
		wg.Add(1)
		go func(c *pkgkafka.Consumer) {
			defer wg.Done()
			if err := c.Start(ctx); err != nil {
				s.logger.Error("consumer stopped with error", slog.String("error", err.Error()))
			}
		}(c)
	}
	wg.Wait()
}

// Close closes all consumers. Safe to call after Start has returned.
func (s *ConsumerSet) Close() error {
	var errs []error
	for _, c := range s.consumers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
