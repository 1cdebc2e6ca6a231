package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Azizo-B/microservices/pkg/authclient"
	"github.com/Azizo-B/microservices/pkg/health"
	"github.com/Azizo-B/microservices/pkg/middleware"
	"github.com/Azizo-B/microservices/services/company/internal/service"
)

// RouterDeps bundles everything the router wires together.
type RouterDeps struct {
	Companies     *service.CompanyService
	Employees     *service.EmployeeService
	Clients       *service.ClientService
	Auth          *authclient.Client
	HealthHandler *health.Handler
	Logger        *slog.Logger
	CORS          middleware.CORSConfig
}

// NewRouter creates a chi router with all company service routes registered.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(deps.CORS))
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Tracing("company"))
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.PrometheusMetrics("company"))

	r.Get("/health/live", deps.HealthHandler.LivenessHandler())
	r.Get("/health/ready", deps.HealthHandler.ReadinessHandler())
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	companyHandler := NewCompanyHandler(deps.Companies, deps.Logger)
	employeeHandler := NewEmployeeHandler(deps.Employees, deps.Logger)
	clientHandler := NewClientHandler(deps.Clients, deps.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(authclient.RequireAuth(deps.Auth, deps.Logger))

		r.Route("/companies", func(r chi.Router) {
			r.Post("/", companyHandler.Create)
			r.Get("/", companyHandler.List)
			r.Get("/{id}", companyHandler.Get)
			r.Patch("/{id}", companyHandler.Update)
			r.Delete("/{id}", companyHandler.Delete)
		})

		r.Route("/employees", func(r chi.Router) {
			r.Post("/", employeeHandler.Create)
			r.Get("/", employeeHandler.List)
			r.Get("/{id}", employeeHandler.Get)
			r.Patch("/{id}", employeeHandler.Update)
			r.Delete("/{id}", employeeHandler.Delete)
		})

		r.Route("/clients", func(r chi.Router) {
			r.Post("/", clientHandler.Create)
			r.Get("/", clientHandler.List)
			r.Get("/{id}", clientHandler.Get)
			r.Patch("/{id}", clientHandler.Update)
			r.Delete("/{id}", clientHandler.Delete)
		})
	})

	return r
}
