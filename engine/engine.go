package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/kbukum/paiflow/event"
	"github.com/kbukum/paiflow/executor"
	"github.com/kbukum/paiflow/logger"
	"github.com/kbukum/paiflow/observability"
	"github.com/kbukum/paiflow/workflow"
)

// Orchestrator runs a workflow against one raw input. Node and graph
// failures are reported in the returned record, which is always non-nil
// and has been handed to the record store. The error is non-nil only when
// the record could not be stored.
type Orchestrator interface {
	Name() string
	Run(ctx context.Context, wf *workflow.Workflow, raw string, sink event.Sink) (*workflow.ExecutionRecord, error)
}

// Resolver looks up the executor of a node type.
type Resolver interface {
	Resolve(nodeType string) (executor.NodeExecutor, error)
}

// RecordStore persists execution records.
type RecordStore interface {
	Insert(ctx context.Context, rec *workflow.ExecutionRecord) (string, error)
}

// Option configures an orchestrator.
type Option func(*recorder)

// WithStore sets where records are persisted. Without a store records are
// only returned.
func WithStore(s RecordStore) Option {
	return func(r *recorder) { r.store = s }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(r *recorder) { r.log = l }
}

// WithMetrics enables execution metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(r *recorder) { r.metrics = m }
}

// WithIDGenerator replaces the execution id source.
func WithIDGenerator(fn func() string) Option {
	return func(r *recorder) { r.newID = fn }
}

func newRecorder(engine string, opts []Option) *recorder {
	r := &recorder{
		engine: engine,
		log:    logger.WithComponent("engine"),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.WithFields(map[string]interface{}{logger.FieldEngine: engine})
	return r
}
