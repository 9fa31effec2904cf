package executor

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/paiflow/event"
	"github.com/kbukum/paiflow/logger"
	"github.com/kbukum/paiflow/observability"
	"github.com/kbukum/paiflow/workflow"
)

// Middleware decorates a NodeExecutor.
type Middleware func(NodeExecutor) NodeExecutor

// Chain composes middleware so that mw[0] is the outermost wrapper.
func Chain(mw ...Middleware) Middleware {
	return func(exec NodeExecutor) NodeExecutor {
		for i := len(mw) - 1; i >= 0; i-- {
			exec = mw[i](exec)
		}
		return exec
	}
}

// around runs a hook around every call of inner while keeping the
// progress capability of inner intact.
type around struct {
	inner NodeExecutor
	hook  func(ctx context.Context, node workflow.Node, call func(context.Context) (map[string]any, error)) (map[string]any, error)
}

func (a *around) Execute(ctx context.Context, node workflow.Node, input map[string]any) (map[string]any, error) {
	return a.hook(ctx, node, func(ctx context.Context) (map[string]any, error) {
		return a.inner.Execute(ctx, node, input)
	})
}

func (a *around) ExecuteWithProgress(ctx context.Context, node workflow.Node, input map[string]any, sink event.Sink) (map[string]any, error) {
	return a.hook(ctx, node, func(ctx context.Context) (map[string]any, error) {
		return Run(ctx, a.inner, node, input, sink)
	})
}

// WithTracing opens a span per node execution.
func WithTracing() Middleware {
	return func(exec NodeExecutor) NodeExecutor {
		return &around{inner: exec, hook: func(ctx context.Context, node workflow.Node, call func(context.Context) (map[string]any, error)) (map[string]any, error) {
			ctx, span := observability.StartSpan(ctx, observability.SpanNode,
				attribute.String(observability.AttrNodeID, node.ID),
				attribute.String(observability.AttrNodeType, node.Type),
			)
			out, err := call(ctx)
			observability.EndSpan(span, err)
			return out, err
		}}
	}
}

// WithMetrics records node count, duration and LLM token usage.
func WithMetrics(m *observability.Metrics) Middleware {
	return func(exec NodeExecutor) NodeExecutor {
		return &around{inner: exec, hook: func(ctx context.Context, node workflow.Node, call func(context.Context) (map[string]any, error)) (map[string]any, error) {
			start := time.Now()
			out, err := call(ctx)
			status := string(workflow.StatusSuccess)
			if err != nil {
				status = string(workflow.StatusFailed)
			}
			m.NodeFinished(ctx, node.Type, status, time.Since(start))
			if in, outTok, ok := tokenCounts(out); ok {
				m.TokensUsed(ctx, node.Type, in, outTok)
			}
			return out, err
		}}
	}
}

// WithLogging logs node completion at debug level and failures at error
// level.
func WithLogging(log *logger.Logger) Middleware {
	return func(exec NodeExecutor) NodeExecutor {
		return &around{inner: exec, hook: func(ctx context.Context, node workflow.Node, call func(context.Context) (map[string]any, error)) (map[string]any, error) {
			start := time.Now()
			out, err := call(ctx)
			l := log.WithContext(ctx).WithNode(node.ID, node.Type)
			fields := logger.DurationFields(node.Type, time.Since(start))
			if err != nil {
				l.WithError(err).Error("node failed", fields)
			} else {
				l.Debug("node completed", fields)
			}
			return out, err
		}}
	}
}

func tokenCounts(out map[string]any) (int, int, bool) {
	in, okIn := asInt(out["inputTokens"])
	o, okOut := asInt(out["outputTokens"])
	return in, o, okIn && okOut && in+o > 0
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
