package app

import (
	"fmt"

	"github.com/kbukum/paiflow/engine"
	"github.com/kbukum/paiflow/executor"
	"github.com/kbukum/paiflow/llm"
	"github.com/kbukum/paiflow/logger"
	"github.com/kbukum/paiflow/nodes"
	"github.com/kbukum/paiflow/observability"
	"github.com/kbukum/paiflow/resilience"
	"github.com/kbukum/paiflow/speech"
	"github.com/kbukum/paiflow/storage"
)

// Runtime is the workflow machinery: node executors, both orchestrators
// behind a selector, and the run slots.
type Runtime struct {
	Executors *executor.Registry
	Selector  *engine.Selector
	Slots     *resilience.Bulkhead
}

// RuntimeDeps are the started infrastructure a Runtime runs on. Every
// field is optional.
type RuntimeDeps struct {
	Records engine.RecordStore
	Files   storage.Storage
	Metrics *observability.Metrics
	Logger  *logger.Logger
}

// NewRuntime builds the executor registry with every node type and the
// engine selector.
func NewRuntime(cfg *Config, deps RuntimeDeps) (*Runtime, error) {
	log := deps.Logger
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	client, err := llm.New(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("llm client: %w", err)
	}
	synth, err := speech.NewDashScope(cfg.TTS)
	if err != nil {
		return nil, fmt.Errorf("tts client: %w", err)
	}

	mw := []executor.Middleware{executor.WithTracing(), executor.WithLogging(log.WithComponent("node"))}
	if deps.Metrics != nil {
		mw = append(mw, executor.WithMetrics(deps.Metrics))
	}
	reg := executor.NewRegistry(mw...)
	if err := nodes.Register(reg, nodes.Deps{
		LLM:       client,
		LLMConfig: cfg.LLM,
		Speech:    synth,
		Storage:   deps.Files,
		Logger:    log,
	}); err != nil {
		return nil, fmt.Errorf("register nodes: %w", err)
	}

	opts := []engine.Option{engine.WithLogger(log.WithComponent("engine"))}
	if deps.Records != nil {
		opts = append(opts, engine.WithStore(deps.Records))
	}
	if deps.Metrics != nil {
		opts = append(opts, engine.WithMetrics(deps.Metrics))
	}

	return &Runtime{
		Executors: reg,
		Selector: engine.NewSelector(cfg.Engine,
			engine.NewSequential(reg, opts...),
			engine.NewStateGraph(reg, opts...),
		),
		Slots: resilience.NewBulkhead(resilience.BulkheadConfig{
			Name:          "executions",
			MaxConcurrent: cfg.Engine.MaxConcurrent,
		}),
	}, nil
}
