package server

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/paiflow/event"
	"github.com/kbukum/paiflow/logger"
	"github.com/kbukum/paiflow/resilience"
	"github.com/kbukum/paiflow/server/middleware"
	"github.com/kbukum/paiflow/sse"
	"github.com/kbukum/paiflow/storage"
	"github.com/kbukum/paiflow/store"
	"github.com/kbukum/paiflow/workflow"
)

// Runner executes a workflow against a raw input. *engine.Selector
// implements it.
type Runner interface {
	Run(ctx context.Context, wf *workflow.Workflow, raw string, sink event.Sink) (*workflow.ExecutionRecord, error)
}

// NodeTypes lists the registered node handler types. *executor.Registry
// implements it.
type NodeTypes interface {
	Types() []string
}

// RunEvents supplies the sink for runs of one workflow. *redis.Relay
// implements it.
type RunEvents interface {
	Sink(workflowID string) event.Sink
}

// APIDeps are the collaborators of the workflow API. Hub, Events, Storage
// and Slots are optional.
type APIDeps struct {
	Store     store.Store
	Runner    Runner
	NodeTypes NodeTypes
	// Hub fans run events out to /events subscribers.
	Hub *sse.Hub
	// Events replaces the local hub sink, e.g. to relay events to the
	// subscribers of every instance.
	Events RunEvents
	// Storage backs the files route.
	Storage storage.Storage
	// Slots caps concurrent runs; a full bulkhead answers 503.
	Slots  *resilience.Bulkhead
	Logger *logger.Logger
}

// APIConfig tunes the streaming routes.
type APIConfig struct {
	// EventBuffer and EventTimeout size the per-stream event channel.
	EventBuffer  int
	EventTimeout time.Duration
	KeepAlive    time.Duration
	// RateLimit is the per-client budget of execution requests per minute;
	// zero disables it.
	RateLimit   int
	FilesPrefix string
}

// API serves the workflow routes.
type API struct {
	store   store.Store
	runner  Runner
	types   NodeTypes
	hub     *sse.Hub
	events  RunEvents
	files   storage.Storage
	slots   *resilience.Bulkhead
	cfg     APIConfig
	limiter middleware.Middleware
	log     *logger.Logger
}

// NewAPI creates the workflow API.
func NewAPI(deps APIDeps, cfg APIConfig) *API {
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = event.DefaultBuffer
	}
	if cfg.EventTimeout <= 0 {
		cfg.EventTimeout = event.DefaultTimeout
	}
	if cfg.KeepAlive <= 0 {
		cfg.KeepAlive = sse.DefaultKeepAlive
	}
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	a := &API{
		store:  deps.Store,
		runner: deps.Runner,
		types:  deps.NodeTypes,
		hub:    deps.Hub,
		events: deps.Events,
		files:  deps.Storage,
		slots:  deps.Slots,
		cfg:    cfg,
		log:    log.WithComponent("api"),
	}
	if cfg.RateLimit > 0 {
		a.limiter = middleware.RateLimit(middleware.RateLimitConfig{RequestsPerMinute: cfg.RateLimit})
	}
	return a
}

// RegisterRoutes implements RouteRegistrar.
func (a *API) RegisterRoutes(r gin.IRouter) {
	api := r.Group("/api")

	wf := api.Group("/workflows")
	wf.GET("", a.listWorkflows)
	wf.POST("", a.createWorkflow)
	wf.GET("/:id", a.getWorkflow)
	wf.PUT("/:id", a.updateWorkflow)
	wf.DELETE("/:id", a.deleteWorkflow)
	wf.GET("/:id/executions", a.listExecutions)
	wf.GET("/:id/events", a.subscribe)

	run := wf.Group("/:id/execute")
	if a.limiter != nil {
		run.Use(middleware.GinWrap(a.limiter))
	}
	run.POST("", a.execute)
	run.GET("/stream", a.executeStream)

	api.GET("/executions/:id", a.getExecution)
	api.GET("/node-types", a.nodeTypes)

	if a.files != nil && a.cfg.FilesPrefix != "" {
		r.GET(a.cfg.FilesPrefix+"/*path", a.serveFile)
	}
}

// runSink returns the sink for one run of workflowID. Delivery happens on
// a separate goroutine, so a slow hub or relay costs the run at most
// EventTimeout per event. The returned func drains the queue and must be
// called after the run.
func (a *API) runSink(workflowID string) (event.Sink, func()) {
	next := a.sink(workflowID)
	if next == nil {
		return nil, func() {}
	}
	async := event.NewAsync(next, a.cfg.EventBuffer, a.cfg.EventTimeout)
	return async, async.Close
}

// sink returns the event sink for runs of workflowID, or nil without a
// hub or relay.
func (a *API) sink(workflowID string) event.Sink {
	if a.events != nil {
		return a.events.Sink(workflowID)
	}
	if a.hub == nil {
		return nil
	}
	return sse.NewHubSink(a.hub, workflowID)
}

// acquire takes a run slot. The release func is never nil.
func (a *API) acquire(ctx context.Context) (func(), error) {
	if a.slots == nil {
		return func() {}, nil
	}
	return a.slots.Acquire(ctx)
}
