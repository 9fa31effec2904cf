// Package app assembles a paiflow process from its configuration: the
// infrastructure components, the workflow runtime and, when serving, the
// HTTP API.
package app

import (
	"context"
	"fmt"

	"github.com/kbukum/paiflow/bootstrap"
	"github.com/kbukum/paiflow/component"
	"github.com/kbukum/paiflow/engine"
	"github.com/kbukum/paiflow/event"
	"github.com/kbukum/paiflow/kafka"
	"github.com/kbukum/paiflow/redis"
	"github.com/kbukum/paiflow/server"
	"github.com/kbukum/paiflow/server/endpoint"
	"github.com/kbukum/paiflow/sse"
	"github.com/kbukum/paiflow/storage"
	"github.com/kbukum/paiflow/store"
	"github.com/kbukum/paiflow/workflow"

	// Backends register themselves with their factories.
	_ "github.com/kbukum/paiflow/storage/local"
	_ "github.com/kbukum/paiflow/storage/memory"
	_ "github.com/kbukum/paiflow/storage/s3"
	_ "github.com/kbukum/paiflow/store/memory"
	_ "github.com/kbukum/paiflow/store/postgres"
	_ "github.com/kbukum/paiflow/store/sqlite"
)

// App is a configured paiflow process.
type App struct {
	*bootstrap.App[*Config]

	telemetry *telemetry
	store     *store.Component
	files     *storage.Component
	hub       *sse.Component
	relay     *redis.Component // nil unless redis is enabled
	records   *kafka.Component // nil unless kafka is enabled

	runtime *Runtime
	server  *server.Server
}

// New registers the infrastructure components. The runtime is built in the
// configure phase, once they have started.
func New(cfg *Config, opts ...bootstrap.Option) (*App, error) {
	base, err := bootstrap.NewApp(cfg, opts...)
	if err != nil {
		return nil, err
	}
	log := base.Logger

	a := &App{
		App: base,
		telemetry: &telemetry{
			cfg:     cfg.Observability,
			service: cfg.Name,
			version: cfg.Version,
			env:     cfg.Environment,
		},
		store: store.NewComponent(cfg.Store, log),
		files: storage.NewComponent(cfg.Storage, log),
		hub:   sse.NewComponent("/api/workflows/:id/events", log.WithComponent("sse")),
	}
	comps := []component.Component{a.telemetry, a.store, a.files, a.hub}
	if cfg.Redis.Enabled {
		a.relay = redis.NewComponent(cfg.Redis, func() redis.FramePublisher { return a.hub.Hub() }, log)
		comps = append(comps, a.relay)
	}
	if cfg.Kafka.Enabled {
		a.records = kafka.NewComponent(cfg.Kafka, log)
		comps = append(comps, a.records)
	}
	for _, c := range comps {
		if err := base.RegisterComponent(c); err != nil {
			return nil, err
		}
	}

	base.OnConfigure(func(_ context.Context, b *bootstrap.App[*Config]) error {
		var records engine.RecordStore = a.Store()
		if a.records != nil {
			records = kafka.Wrap(records, a.records.Publisher(), b.Logger.WithComponent("kafka"))
		}
		rt, err := NewRuntime(b.Cfg, RuntimeDeps{
			Records: records,
			Files:   a.files.Storage(),
			Metrics: a.telemetry.metrics,
			Logger:  b.Logger,
		})
		if err != nil {
			return err
		}
		a.runtime = rt
		b.Summary.TrackEngines(rt.Selector.Engines()...)
		b.Summary.TrackNodeTypes(rt.Executors.Types()...)
		return nil
	})
	return a, nil
}

// Store returns the started store, or nil before startup.
func (a *App) Store() store.Store { return a.store.Store() }

// Runtime returns the workflow runtime, or nil before the configure phase.
func (a *App) Runtime() *Runtime { return a.runtime }

// Server returns the HTTP server, or nil unless serving.
func (a *App) Server() *server.Server { return a.server }

// Serve runs the HTTP API until a shutdown signal or ctx cancellation.
func (a *App) Serve(ctx context.Context) error {
	a.OnConfigure(func(ctx context.Context, b *bootstrap.App[*Config]) error {
		return a.launchServer(ctx, b)
	})
	return a.Run(ctx)
}

func (a *App) launchServer(ctx context.Context, b *bootstrap.App[*Config]) error {
	cfg := b.Cfg
	srv := server.New(cfg.Server, b.Logger)

	deps := server.APIDeps{
		Store:     a.Store(),
		Runner:    a.runtime.Selector,
		NodeTypes: a.runtime.Executors,
		Hub:       a.hub.Hub(),
		Storage:   a.files.Storage(),
		Slots:     a.runtime.Slots,
		Logger:    b.Logger,
	}
	if a.relay != nil {
		deps.Events = a.relay.Relay()
	}
	api := server.NewAPI(deps, server.APIConfig{
		EventBuffer:  cfg.Engine.EventBuffer,
		EventTimeout: cfg.Engine.EventTimeout,
		KeepAlive:    cfg.Server.KeepAlive,
		RateLimit:    cfg.Server.RateLimit,
		FilesPrefix:  cfg.Server.FilesPrefix,
	})
	srv.Mount(api)
	srv.RegisterDefaultEndpoints(cfg.Name,
		func(ctx context.Context) []component.Health { return b.Components.HealthAll(ctx) },
		endpoint.InfoSource{
			Components: b.Components.Describe,
			Engines:    a.runtime.Selector.Engines,
			NodeTypes:  a.runtime.Executors.Types,
		},
		a.runtime.Slots,
	)

	if err := b.LaunchComponent(ctx, server.NewComponent(srv)); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	a.server = srv
	for _, r := range srv.Routes() {
		b.Summary.TrackRoute(r.Method, r.Path, r.Handler)
	}
	return nil
}

// Execute runs wf once against input with the full lifecycle and returns
// the record. Events go to sink when it is non-nil.
func (a *App) Execute(ctx context.Context, wf *workflow.Workflow, input string, sink event.Sink) (*workflow.ExecutionRecord, error) {
	var rec *workflow.ExecutionRecord
	err := a.RunTask(ctx, func(ctx context.Context) error {
		// Records reference their workflow, so the file is stored first.
		if wf.ID == "" {
			if err := a.Store().CreateWorkflow(ctx, wf); err != nil {
				return err
			}
		}
		var runErr error
		rec, runErr = a.runtime.Selector.Run(ctx, wf, input, sink)
		if rec == nil {
			return runErr
		}
		if runErr != nil {
			a.Logger.WithError(runErr).Warn("execution not persisted")
		}
		return nil
	})
	return rec, err
}
