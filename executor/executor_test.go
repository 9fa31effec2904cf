package executor

import (
	"bytes"
	"context"
	stderrors "errors"
	"slices"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/paiflow/errors"
	"github.com/kbukum/paiflow/event"
	"github.com/kbukum/paiflow/logger"
	"github.com/kbukum/paiflow/observability"
	"github.com/kbukum/paiflow/workflow"
)

// --- test helpers ---

func echo() NodeExecutor {
	return Func(func(_ context.Context, _ workflow.Node, input map[string]any) (map[string]any, error) {
		return map[string]any{"output": input["input"]}, nil
	})
}

func failing(msg string) NodeExecutor {
	return Func(func(context.Context, workflow.Node, map[string]any) (map[string]any, error) {
		return nil, stderrors.New(msg)
	})
}

// streamer emits one progress event when a sink is present.
type streamer struct{}

func (streamer) Execute(_ context.Context, _ workflow.Node, _ map[string]any) (map[string]any, error) {
	return map[string]any{"mode": "plain"}, nil
}

func (streamer) ExecuteWithProgress(_ context.Context, n workflow.Node, _ map[string]any, sink event.Sink) (map[string]any, error) {
	event.Emit(sink, event.NodeProgressed(n.ID, n.Type, "chunk", map[string]any{"chunk": "hi"}))
	return map[string]any{"mode": "progress", "inputTokens": 3, "outputTokens": 4}, nil
}

// --- Registry tests ---

func TestRegistry_Resolve(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("input", echo()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	node := workflow.Node{ID: "a", Type: "input"}
	first, err := r.Resolve("input")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _ := r.Resolve("input")

	out1, _ := first.Execute(context.Background(), node, map[string]any{"input": "x"})
	out2, _ := second.Execute(context.Background(), node, map[string]any{"input": "x"})
	if out1["output"] != "x" || out2["output"] != out1["output"] {
		t.Errorf("expected identical behavior, got %v and %v", out1, out2)
	}
}

func TestRegistry_Unsupported(t *testing.T) {
	_, err := NewRegistry().Resolve("nope")
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeUnsupportedNodeType {
		t.Fatalf("expected UNSUPPORTED_NODE_TYPE, got %v", err)
	}
	if appErr.Message != "unsupported node type: nope" {
		t.Errorf("unexpected message %q", appErr.Message)
	}
}

func TestRegistry_DuplicateAndInvalid(t *testing.T) {
	r := NewRegistry()
	r.MustRegister("input", echo())
	if err := r.Register("input", echo()); err == nil {
		t.Error("expected duplicate registration to fail")
	}
	if err := r.Register("", echo()); err == nil {
		t.Error("expected empty type to fail")
	}
	if err := r.Register("x", nil); err == nil {
		t.Error("expected nil executor to fail")
	}
}

func TestRegistry_MustRegisterPanics(t *testing.T) {
	r := NewRegistry()
	r.MustRegister("input", echo())
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	r.MustRegister("input", echo())
}

func TestRegistry_Types(t *testing.T) {
	r := NewRegistry()
	for _, typ := range []string{"tts", "input", "openai"} {
		r.MustRegister(typ, echo())
	}
	if got := r.Types(); !slices.Equal(got, []string{"input", "openai", "tts"}) {
		t.Errorf("unexpected types %v", got)
	}
	if !r.Has("tts") || r.Has("qwen") {
		t.Error("unexpected Has result")
	}
}

// --- Run tests ---

func TestRun_Dispatch(t *testing.T) {
	node := workflow.Node{ID: "s", Type: "openai"}
	tests := []struct {
		name     string
		sink     event.Sink
		wantMode string
	}{
		{"no sink uses Execute", nil, "plain"},
		{"sink uses progress", &event.Collector{}, "progress"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Run(context.Background(), streamer{}, node, nil, tt.sink)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out["mode"] != tt.wantMode {
				t.Errorf("expected %s, got %v", tt.wantMode, out["mode"])
			}
		})
	}
}

// --- Middleware tests ---

func TestMiddleware_KeepsProgressCapability(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "test", &buf)
	r := NewRegistry(WithTracing(), WithMetrics(nil), WithLogging(log))
	r.MustRegister("openai", streamer{})

	exec, err := r.Resolve("openai")
	if err != nil {
		t.Fatal(err)
	}
	var sink event.Collector
	out, err := Run(context.Background(), exec, workflow.Node{ID: "s", Type: "openai"}, nil, &sink)
	if err != nil {
		t.Fatal(err)
	}
	if out["mode"] != "progress" {
		t.Errorf("expected progress path through middleware, got %v", out["mode"])
	}
	if kinds := sink.Kinds(); len(kinds) != 1 || kinds[0] != event.NodeProgress {
		t.Errorf("expected one progress event, got %v", kinds)
	}
	if !strings.Contains(buf.String(), `"node_id":"s"`) {
		t.Errorf("expected node log entry, got %s", buf.String())
	}
}

func TestWithLogging_Failure(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "info", Format: "json"}, "test", &buf)
	exec := WithLogging(log)(failing("boom"))
	if _, err := exec.Execute(context.Background(), workflow.Node{ID: "b", Type: "qwen"}, nil); err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(buf.String(), "node failed") || !strings.Contains(buf.String(), "boom") {
		t.Errorf("unexpected log output %s", buf.String())
	}
}

func TestWithTracing_RecordsSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	old := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(old)

	exec := WithTracing()(echo())
	_, _ = exec.Execute(context.Background(), workflow.Node{ID: "a", Type: "input"}, map[string]any{})

	ended := rec.Ended()
	if len(ended) != 1 || ended[0].Name() != observability.SpanNode {
		t.Fatalf("expected one node span, got %d", len(ended))
	}
}

func TestWithMetrics_RecordsTokens(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := observability.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatal(err)
	}

	exec := WithMetrics(m)(streamer{})
	_, _ = Run(context.Background(), exec, workflow.Node{ID: "s", Type: "openai"}, nil, &event.Collector{})

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}
	found := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			found[metric.Name] = true
		}
	}
	if !found["paiflow.node.total"] || !found["paiflow.llm.tokens"] {
		t.Errorf("expected node and token metrics, got %v", found)
	}
}

func TestChain_Order(t *testing.T) {
	var calls []string
	mark := func(name string) Middleware {
		return func(next NodeExecutor) NodeExecutor {
			return Func(func(ctx context.Context, n workflow.Node, in map[string]any) (map[string]any, error) {
				calls = append(calls, name)
				return next.Execute(ctx, n, in)
			})
		}
	}
	exec := Chain(mark("outer"), mark("inner"))(echo())
	_, _ = exec.Execute(context.Background(), workflow.Node{}, map[string]any{})
	if !slices.Equal(calls, []string{"outer", "inner"}) {
		t.Errorf("unexpected order %v", calls)
	}
}
