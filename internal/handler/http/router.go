package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/FileIngestGo/pkg/health"
	"github.com/utafrali/FileIngestGo/pkg/middleware"
)

// RouterConfig collects the collaborators the router mounts.
type RouterConfig struct {
	ServiceName string
	Logger      *slog.Logger
	Files       *FileHandler
	Health      *health.Handler
}

// NewRouter builds the service router with the shared middleware chain,
// the health and metrics endpoints and the file API.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	r.Get("/healthz", cfg.Health.LivenessHandler())
	r.Get("/readyz", cfg.Health.ReadinessHandler())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/files", func(r chi.Router) {
		r.Post("/", cfg.Files.Upload)
		r.Get("/", cfg.Files.List)
		r.Get("/*", cfg.Files.Download)
	})

	return r
}
