package executor

import (
	"context"

	"github.com/kbukum/paiflow/event"
	"github.com/kbukum/paiflow/workflow"
)

// NodeExecutor runs one node type. Input is the previous node's output
// (or {"input": raw} for the first node); the returned map becomes the next
// node's input.
type NodeExecutor interface {
	Execute(ctx context.Context, node workflow.Node, input map[string]any) (map[string]any, error)
}

// ProgressExecutor is implemented by executors that can report
// intermediate output, such as streamed LLM tokens.
type ProgressExecutor interface {
	NodeExecutor
	ExecuteWithProgress(ctx context.Context, node workflow.Node, input map[string]any, sink event.Sink) (map[string]any, error)
}

// Func adapts a function to a NodeExecutor.
type Func func(ctx context.Context, node workflow.Node, input map[string]any) (map[string]any, error)

// Execute calls f.
func (f Func) Execute(ctx context.Context, node workflow.Node, input map[string]any) (map[string]any, error) {
	return f(ctx, node, input)
}

// Run executes node with exec, using the progress variant when exec
// supports it and a sink is present.
func Run(ctx context.Context, exec NodeExecutor, node workflow.Node, input map[string]any, sink event.Sink) (map[string]any, error) {
	if sink != nil {
		if pe, ok := exec.(ProgressExecutor); ok {
			return pe.ExecuteWithProgress(ctx, node, input, sink)
		}
	}
	return exec.Execute(ctx, node, input)
}
