package engine

import (
	"context"
	"maps"

	"github.com/kbukum/paiflow/dag"
	"github.com/kbukum/paiflow/errors"
	"github.com/kbukum/paiflow/event"
	"github.com/kbukum/paiflow/stategraph"
	"github.com/kbukum/paiflow/template"
	"github.com/kbukum/paiflow/workflow"
)

// outputNodeType receives every node output under template.NodeOutputsKey.
const outputNodeType = "output"

// StateGraph compiles a workflow into state-transforming steps over a
// shared state record.
type StateGraph struct {
	resolver Resolver
	rec      *recorder
}

// NewStateGraph creates the "graph" orchestrator.
func NewStateGraph(resolver Resolver, opts ...Option) *StateGraph {
	return &StateGraph{resolver: resolver, rec: newRecorder(workflow.EngineGraph, opts)}
}

// Name returns the engine type key.
func (g *StateGraph) Name() string { return workflow.EngineGraph }

// Run executes wf against raw.
func (g *StateGraph) Run(ctx context.Context, wf *workflow.Workflow, raw string, sink event.Sink) (*workflow.ExecutionRecord, error) {
	ctx, x := g.rec.begin(ctx, wf, raw, sink)

	if _, err := dag.Schedule(&wf.Graph); err != nil {
		return x.finish(ctx, nil, errors.Message(err))
	}

	compiled, err := stategraph.FromWorkflow(&wf.Graph, func(node workflow.Node) stategraph.Step {
		return g.step(x, node)
	})
	if err != nil {
		return x.finish(ctx, nil, err.Error())
	}

	state := stategraph.NewState(raw)
	if err := compiled.Run(ctx, state); err != nil {
		return x.finish(ctx, lastOutput(state), canceled(err))
	}
	if !state.Running() {
		return x.finish(ctx, lastOutput(state), state.ErrorMessage)
	}
	return x.finish(ctx, lastOutput(state), "")
}

func (g *StateGraph) step(x *run, node workflow.Node) stategraph.Step {
	return func(ctx context.Context, s *stategraph.State) error {
		input := s.CurrentInput
		if node.Type == outputNodeType {
			input = maps.Clone(input)
			if input == nil {
				input = map[string]any{}
			}
			input[template.NodeOutputsKey] = s.Outputs()
		}

		out, err := x.execute(ctx, g.resolver, node, input)
		if err != nil {
			s.Fail(errors.NodeFailed(node.ID, err).Message)
			return nil
		}
		s.Record(node.ID, out)
		return nil
	}
}

func lastOutput(s *stategraph.State) map[string]any {
	if s.CurrentNodeID == "" {
		return nil
	}
	return s.NodeOutputs[s.CurrentNodeID]
}
