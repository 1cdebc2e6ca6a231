// Package sender dispatches notifications over their delivery channel.
package sender

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Azizo-B/microservices/services/notification/internal/domain"
)

// Dispatcher delivers a single notification using the given credentials.
type Dispatcher interface {
	Send(ctx context.Context, n *domain.Notification, creds domain.EmailCredentials) error
}

// Registry maps notification types to their dispatcher.
type Registry struct {
	dispatchers map[domain.NotificationType]Dispatcher
}

// NewRegistry creates an empty dispatcher registry.
func NewRegistry() *Registry {
	return &Registry{dispatchers: map[domain.NotificationType]Dispatcher{}}
}

// Register binds a dispatcher to a notification type.
func (r *Registry) Register(t domain.NotificationType, d Dispatcher) {
	r.dispatchers[t] = d
}

// For returns the dispatcher for the given type.
func (r *Registry) For(t domain.NotificationType) (Dispatcher, error) {
	d, ok := r.dispatchers[t]
	if !ok {
		return nil, fmt.Errorf("no dispatcher registered for type %q", t)
	}
	return d, nil
}

// LogDispatcher records deliveries instead of sending them. It stands in for
// a real SMTP integration in development and tests.
type LogDispatcher struct {
	logger *slog.Logger
}

// NewLogDispatcher creates a dispatcher that logs deliveries.
func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

// Send logs the delivery and succeeds.
func (d *LogDispatcher) Send(ctx context.Context, n *domain.Notification, creds domain.EmailCredentials) error {
	d.logger.InfoContext(ctx, "dispatching notification",
		slog.String("notification_id", n.ID),
		slog.String("type", string(n.Type)),
		slog.String("recipient", n.Recipient),
		slog.String("from", creds.Email),
	)
	return nil
}
