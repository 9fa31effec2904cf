package engine

import (
	"context"

	"github.com/kbukum/paiflow/dag"
	"github.com/kbukum/paiflow/errors"
	"github.com/kbukum/paiflow/event"
	"github.com/kbukum/paiflow/workflow"
)

// Sequential walks the topological order of a workflow, feeding each
// node's output to the next node.
type Sequential struct {
	resolver Resolver
	rec      *recorder
}

// NewSequential creates the "dag" orchestrator.
func NewSequential(resolver Resolver, opts ...Option) *Sequential {
	return &Sequential{resolver: resolver, rec: newRecorder(workflow.EngineDAG, opts)}
}

// Name returns the engine type key.
func (s *Sequential) Name() string { return workflow.EngineDAG }

// Run executes wf against raw.
func (s *Sequential) Run(ctx context.Context, wf *workflow.Workflow, raw string, sink event.Sink) (*workflow.ExecutionRecord, error) {
	ctx, x := s.rec.begin(ctx, wf, raw, sink)

	plan, err := dag.Schedule(&wf.Graph)
	if err != nil {
		return x.finish(ctx, nil, errors.Message(err))
	}

	input := workflow.InitialInput(raw)
	var output map[string]any
	for _, node := range plan.Nodes() {
		if err := ctx.Err(); err != nil {
			return x.finish(ctx, output, canceled(err))
		}
		out, err := x.execute(ctx, s.resolver, node, input)
		if err != nil {
			return x.finish(ctx, output, errors.NodeFailed(node.ID, err).Message)
		}
		output, input = out, out
	}
	return x.finish(ctx, output, "")
}
