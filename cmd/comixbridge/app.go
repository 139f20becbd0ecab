package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/comix-bridge/internal/api"
	"github.com/phrazzld/comix-bridge/internal/archive"
	"github.com/phrazzld/comix-bridge/internal/bridge"
	"github.com/phrazzld/comix-bridge/internal/config"
	"github.com/phrazzld/comix-bridge/internal/metrics"
	"github.com/phrazzld/comix-bridge/internal/task"
	"github.com/prometheus/client_golang/prometheus"
)

// runtimeFactory creates the task runtime. The command uses task.Init so the
// runtime exists once per process; tests pass task.NewRuntime.
type runtimeFactory func(cfg config.RuntimeConfig, logger *slog.Logger, opts ...task.Option) (*task.Runtime, error)

// application holds the wired dependencies shared by all subcommands.
type application struct {
	config    *config.Config
	logger    *slog.Logger
	runtime   *task.Runtime
	bridge    *bridge.Bridge
	registry  *prometheus.Registry
	collector *metrics.Collector
}

func newApplication(cfg *config.Config, logger *slog.Logger, newRuntime runtimeFactory) (*application, error) {
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	rt, err := newRuntime(cfg.Runtime, logger, task.WithObserver(collector))
	if err != nil {
		return nil, fmt.Errorf("failed to start task runtime: %w", err)
	}

	engine, err := archive.NewEngine(cfg.Engine)
	if err != nil {
		rt.Stop()
		return nil, fmt.Errorf("failed to create archive engine: %w", err)
	}

	return &application{
		config:    cfg,
		logger:    logger,
		runtime:   rt,
		bridge:    bridge.New(rt, engine, logger),
		registry:  registry,
		collector: collector,
	}, nil
}

// router builds the HTTP handler over the configured library.
func (app *application) router() (http.Handler, error) {
	library, err := api.NewLibrary(app.config.Server.LibraryRoot)
	if err != nil {
		return nil, err
	}
	return api.NewRouter(api.RouterDeps{
		Bridge:    app.bridge,
		Registry:  app.runtime.Registry(),
		Library:   library,
		Collector: app.collector,
		Gatherer:  app.registry,
		Logger:    app.logger,
	}), nil
}

// cleanup stops the runtime. Queued work that has not started is reported
// as failed to its callers.
func (app *application) cleanup() {
	app.runtime.Stop()
}
