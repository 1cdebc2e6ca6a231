package event

import (
	"context"
	"log/slog"

	pkgkafka "github.com/Azizo-B/microservices/pkg/kafka"
)

// Event name suffixes. Full topic names are environment-prefixed:
// "<env>.user-service.<event>".
const (
	EventUserCreated              = "user.created"
	EventVerificationTokenCreated = "verification-token.created"
	EventResetTokenCreated        = "reset-token.created"
)

// Aggregate type constants.
const (
	AggregateTypeUser  = "user"
	AggregateTypeToken = "token"
)

// Source identifier for events originating from the user service.
const SourceUserService = "user-service"

// UserCreatedData is the payload for a user.created event.
type UserCreatedData struct {
	UserID string `json:"userId"`
}

// TokenCreatedData is the payload for verification-token.created and
// reset-token.created events.
type TokenCreatedData struct {
	UserID  string `json:"userId"`
	TokenID string `json:"tokenId"`
}

// Producer publishes user domain events. All publishes are fire-and-forget:
// delivery failures are retried with backoff in the background and then
// logged and dropped, never surfaced to the request that triggered them.
type Producer struct {
	kafka       *pkgkafka.Producer
	environment string
	logger      *slog.Logger
}

// NewProducer creates a new event producer for the user service.
func NewProducer(kafka *pkgkafka.Producer, environment string, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:       kafka,
		environment: environment,
		logger:      logger,
	}
}

func (p *Producer) topic(name string) string {
	return pkgkafka.Topic(p.environment, SourceUserService, name)
}

// PublishUserCreated publishes a user.created event.
func (p *Producer) PublishUserCreated(ctx context.Context, userID string) {
	p.publish(ctx, EventUserCreated, AggregateTypeUser, userID, UserCreatedData{UserID: userID})
}

// PublishVerificationTokenCreated publishes a verification-token.created event.
func (p *Producer) PublishVerificationTokenCreated(ctx context.Context, userID, tokenID string) {
	p.publish(ctx, EventVerificationTokenCreated, AggregateTypeToken, tokenID,
		TokenCreatedData{UserID: userID, TokenID: tokenID})
}

// PublishResetTokenCreated publishes a reset-token.created event.
func (p *Producer) PublishResetTokenCreated(ctx context.Context, userID, tokenID string) {
	p.publish(ctx, EventResetTokenCreated, AggregateTypeToken, tokenID,
		TokenCreatedData{UserID: userID, TokenID: tokenID})
}

func (p *Producer) publish(ctx context.Context, name, aggregateType, aggregateID string, data any) {
	ev, err := pkgkafka.NewEvent(name, aggregateID, aggregateType, SourceUserService, data)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to build event",
			slog.String("event", name),
			slog.String("aggregate_id", aggregateID),
			slog.String("error", err.Error()),
		)
		return
	}

	p.kafka.PublishAsync(ctx, p.topic(name), ev)

	p.logger.DebugContext(ctx, "event queued",
		slog.String("event", name),
		slog.String("aggregate_id", aggregateID),
	)
}
