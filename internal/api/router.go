package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	apiMiddleware "github.com/phrazzld/comix-bridge/internal/api/middleware"
	"github.com/phrazzld/comix-bridge/internal/bridge"
	"github.com/phrazzld/comix-bridge/internal/metrics"
	"github.com/phrazzld/comix-bridge/internal/task"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps holds what the router needs to build its handlers.
type RouterDeps struct {
	Bridge    *bridge.Bridge
	Registry  *task.Registry
	Library   *Library
	Collector *metrics.Collector
	Gatherer  prometheus.Gatherer
	Logger    *slog.Logger
}

// NewRouter creates the HTTP handler with all routes and middleware.
// Metrics are only recorded and served when Collector and Gatherer are set.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(deps.Logger))
	if deps.Collector != nil {
		r.Use(apiMiddleware.NewMetricsMiddleware(deps.Collector))
	}

	comicHandler := NewComicHandler(deps.Bridge, deps.Library, deps.Logger)
	taskHandler := NewTaskHandler(deps.Bridge, deps.Registry, deps.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/comics/metadata", comicHandler.GetMetadata)
		r.Get("/comics/hash", comicHandler.GetHash)
		r.Get("/comics/pages/{position}", comicHandler.GetPage)

		r.Get("/tasks", taskHandler.ListTasks)
		r.Delete("/tasks/{handle}", taskHandler.CancelTask)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			deps.Logger.Error("Failed to write health check response", "error", err)
		}
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	return r
}
