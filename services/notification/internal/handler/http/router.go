package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Azizo-B/microservices/pkg/authclient"
	"github.com/Azizo-B/microservices/pkg/health"
	"github.com/Azizo-B/microservices/pkg/middleware"
	"github.com/Azizo-B/microservices/services/notification/internal/service"
)

// RouterDeps bundles everything the router wires together.
type RouterDeps struct {
	Notifications *service.NotificationService
	Senders       *service.SenderService
	Auth          *authclient.Client
	HealthHandler *health.Handler
	Logger        *slog.Logger
	CORS          middleware.CORSConfig
}

// NewRouter creates a chi router with all notification service routes registered.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(deps.CORS))
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Tracing("notification"))
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.PrometheusMetrics("notification"))

	r.Get("/health/live", deps.HealthHandler.LivenessHandler())
	r.Get("/health/ready", deps.HealthHandler.ReadinessHandler())
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	notificationHandler := NewNotificationHandler(deps.Notifications, deps.Logger)
	senderHandler := NewSenderHandler(deps.Senders, deps.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(authclient.RequireAuth(deps.Auth, deps.Logger))

		r.Route("/notifications", func(r chi.Router) {
			r.Post("/", notificationHandler.Create)
			r.Get("/", notificationHandler.List)
			r.Get("/{id}", notificationHandler.Get)
			r.Delete("/{id}", notificationHandler.Delete)
		})

		r.Route("/senders", func(r chi.Router) {
			r.Post("/", senderHandler.Create)
			r.Get("/", senderHandler.List)
			r.Get("/{id}", senderHandler.Get)
			r.Patch("/{id}", senderHandler.Update)
			r.Delete("/{id}", senderHandler.Delete)
		})
	})

	return r
}
