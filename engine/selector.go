package engine

import (
	"context"
	"sort"
	"time"

	"github.com/kbukum/paiflow/event"
	"github.com/kbukum/paiflow/logger"
	"github.com/kbukum/paiflow/workflow"
)

// Selector dispatches a workflow to the orchestrator named by its engine
// type. Unknown types run on the fallback engine.
type Selector struct {
	engines  map[string]Orchestrator
	fallback string
	timeout  time.Duration
	log      *logger.Logger
}

// NewSelector registers engines by Name. cfg.DefaultType names the
// fallback for unrecognized types.
func NewSelector(cfg Config, engines ...Orchestrator) *Selector {
	cfg.ApplyDefaults()
	s := &Selector{
		engines:  make(map[string]Orchestrator, len(engines)),
		fallback: cfg.DefaultType,
		timeout:  cfg.RunTimeout,
		log:      logger.WithComponent("engine"),
	}
	for _, e := range engines {
		s.engines[e.Name()] = e
	}
	return s
}

// Select returns the orchestrator for engineType. It never fails: unknown
// types fall back to the configured default and then to "dag".
func (s *Selector) Select(engineType string) Orchestrator {
	t := workflow.NormalizeEngineType(engineType)
	if o, ok := s.engines[t]; ok {
		return o
	}
	s.log.Warn("unknown engine type, using fallback", map[string]interface{}{
		logger.FieldEngine: engineType,
		"fallback":         s.fallback,
	})
	if o, ok := s.engines[s.fallback]; ok {
		return o
	}
	return s.engines[workflow.EngineDAG]
}

// Run executes wf on the engine its EngineType selects.
func (s *Selector) Run(ctx context.Context, wf *workflow.Workflow, raw string, sink event.Sink) (*workflow.ExecutionRecord, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.Select(wf.EngineType).Run(ctx, wf, raw, sink)
}

// Engines returns the registered engine type keys, sorted.
func (s *Selector) Engines() []string {
	names := make([]string, 0, len(s.engines))
	for name := range s.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
