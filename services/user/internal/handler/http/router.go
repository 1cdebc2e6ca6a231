package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Azizo-B/microservices/pkg/health"
	"github.com/Azizo-B/microservices/pkg/middleware"
	"github.com/Azizo-B/microservices/services/user/internal/service"
)

// RouterDeps bundles everything the router wires together.
type RouterDeps struct {
	Tokens        *service.TokenService
	Users         *service.UserService
	Roles         *service.RoleService
	Permissions   *service.PermissionService
	Applications  *service.ApplicationService
	Devices       *service.DeviceService
	HealthHandler *health.Handler
	Logger        *slog.Logger
	CORS          middleware.CORSConfig
	AuthDelayMax  time.Duration

	// Per-IP budget for the credential endpoints (login, signup, reset).
	AuthRateRPS   int
	AuthRateBurst int
}

// NewRouter creates a chi router with all user service routes registered.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(deps.CORS))
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Tracing("user"))
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.PrometheusMetrics("user"))

	r.Get("/health/live", deps.HealthHandler.LivenessHandler())
	r.Get("/health/ready", deps.HealthHandler.ReadinessHandler())
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	tokenHandler := NewTokenHandler(deps.Tokens, deps.Logger)
	userHandler := NewUserHandler(deps.Users, deps.Logger)
	roleHandler := NewRoleHandler(deps.Roles, deps.Logger)
	permissionHandler := NewPermissionHandler(deps.Permissions, deps.Logger)
	applicationHandler := NewApplicationHandler(deps.Applications, deps.Logger)
	deviceHandler := NewDeviceHandler(deps.Devices, deps.Logger)

	requireAuth := RequireAuth(deps.Tokens, deps.Logger)
	requirePerm := func(p string) func(http.Handler) http.Handler {
		return RequirePermission(deps.Permissions, p, deps.Logger)
	}
	authDelay := AuthDelay(deps.AuthDelayMax)
	authRate := middleware.RateLimit(deps.AuthRateRPS, deps.AuthRateBurst, deps.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/tokens", func(r chi.Router) {
			r.With(authRate, authDelay).Post("/sessions", tokenHandler.Login)
			r.Get("/introspect", tokenHandler.Introspect)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", tokenHandler.Create)
				r.Get("/", tokenHandler.List)
				r.Get("/{id}", tokenHandler.Get)
				r.Delete("/{id}", tokenHandler.Delete)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.With(authRate, authDelay).Post("/", userHandler.Signup)
			r.Post("/verify-email", userHandler.VerifyEmail)
			r.With(authRate, authDelay).Post("/reset-password", userHandler.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.With(requirePerm(service.PermListAnyUser)).Get("/", userHandler.List)
				r.Get("/{id}", userHandler.Get)
				r.With(requirePerm(service.PermUpdateAnyUser)).Patch("/{id}", userHandler.Update)
				r.Get("/{id}/profile", userHandler.GetProfile)
				r.Patch("/{id}/profile", userHandler.UpdateProfile)
				r.With(requirePerm(service.PermAssignAnyRole)).Post("/{userId}/roles/{roleId}", roleHandler.AssignToUser)
				r.With(requirePerm(service.PermRemoveAnyRole)).Delete("/{userId}/roles/{roleId}", roleHandler.RemoveFromUser)
			})
		})

		r.Route("/roles", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", roleHandler.List)
			r.Get("/{id}", roleHandler.Get)
			r.With(requirePerm(service.PermCreateAnyRole)).Post("/", roleHandler.Create)
			r.With(requirePerm(service.PermUpdateAnyRole)).Patch("/{id}", roleHandler.Update)
			r.With(requirePerm(service.PermDeleteAnyRole)).Delete("/{id}", roleHandler.Delete)
			r.With(requirePerm(service.PermAssignAnyPermission)).Post("/{roleId}/permissions/{permissionId}", roleHandler.AssignPermission)
			r.With(requirePerm(service.PermRemoveAnyPermission)).Delete("/{roleId}/permissions/{permissionId}", roleHandler.RemovePermission)
		})

		r.Route("/permissions", func(r chi.Router) {
			// The query endpoint is public: peer services call it with only
			// a service credential of their own, before any user context.
			r.Get("/", permissionHandler.Query)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/{id}", permissionHandler.Get)
				r.With(requirePerm(service.PermCreateAnyPermission)).Post("/", permissionHandler.Create)
				r.With(requirePerm(service.PermUpdateAnyPermission)).Patch("/{id}", permissionHandler.Update)
				r.With(requirePerm(service.PermDeleteAnyPermission)).Delete("/{id}", permissionHandler.Delete)
			})
		})

		r.Route("/applications", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", applicationHandler.List)
			r.Get("/{id}", applicationHandler.Get)
			r.With(requirePerm(service.PermCreateAnyApplication)).Post("/", applicationHandler.Create)
			r.With(requirePerm(service.PermUpdateAnyApplication)).Patch("/{id}", applicationHandler.Update)
			r.With(requirePerm(service.PermDeleteAnyApplication)).Delete("/{id}", applicationHandler.Delete)
		})

		r.Route("/devices", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", deviceHandler.List)
			r.Get("/{id}", deviceHandler.Get)
		})
	})

	return r
}
