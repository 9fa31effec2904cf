package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func initMeter(ctx context.Context, cfg Config, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.MetricsInterval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)
	return mp, nil
}

// Meter returns the package meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Metrics holds the engine's instruments.
type Metrics struct {
	executionTotal    metric.Int64Counter
	executionDuration metric.Float64Histogram
	executionActive   metric.Int64UpDownCounter
	nodeTotal         metric.Int64Counter
	nodeDuration      metric.Float64Histogram
	tokensTotal       metric.Int64Counter
}

// NewMetrics creates the engine instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var m Metrics
	var err error

	if m.executionTotal, err = meter.Int64Counter("paiflow.execution.total",
		metric.WithDescription("Workflow executions by engine and final status")); err != nil {
		return nil, fmt.Errorf("creating execution.total counter: %w", err)
	}
	if m.executionDuration, err = meter.Float64Histogram("paiflow.execution.duration",
		metric.WithDescription("Workflow execution wall time"), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating execution.duration histogram: %w", err)
	}
	if m.executionActive, err = meter.Int64UpDownCounter("paiflow.execution.active",
		metric.WithDescription("Executions in progress")); err != nil {
		return nil, fmt.Errorf("creating execution.active counter: %w", err)
	}
	if m.nodeTotal, err = meter.Int64Counter("paiflow.node.total",
		metric.WithDescription("Node executions by type and status")); err != nil {
		return nil, fmt.Errorf("creating node.total counter: %w", err)
	}
	if m.nodeDuration, err = meter.Float64Histogram("paiflow.node.duration",
		metric.WithDescription("Node handler wall time"), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating node.duration histogram: %w", err)
	}
	if m.tokensTotal, err = meter.Int64Counter("paiflow.llm.tokens",
		metric.WithDescription("LLM tokens by node type and direction")); err != nil {
		return nil, fmt.Errorf("creating llm.tokens counter: %w", err)
	}
	return &m, nil
}

// ExecutionStarted increments the active execution gauge.
func (m *Metrics) ExecutionStarted(ctx context.Context, engine string) {
	if m == nil {
		return
	}
	m.executionActive.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrEngine, engine)))
}

// ExecutionFinished records a completed execution.
func (m *Metrics) ExecutionFinished(ctx context.Context, engine, status string, d time.Duration) {
	if m == nil {
		return
	}
	engineAttr := attribute.String(AttrEngine, engine)
	m.executionActive.Add(ctx, -1, metric.WithAttributes(engineAttr))
	m.executionTotal.Add(ctx, 1, metric.WithAttributes(engineAttr, attribute.String(AttrStatus, status)))
	m.executionDuration.Record(ctx, d.Seconds(), metric.WithAttributes(engineAttr))
}

// NodeFinished records one node handler invocation.
func (m *Metrics) NodeFinished(ctx context.Context, nodeType, status string, d time.Duration) {
	if m == nil {
		return
	}
	typeAttr := attribute.String(AttrNodeType, nodeType)
	m.nodeTotal.Add(ctx, 1, metric.WithAttributes(typeAttr, attribute.String(AttrStatus, status)))
	m.nodeDuration.Record(ctx, d.Seconds(), metric.WithAttributes(typeAttr))
}

// TokensUsed records prompt and completion token counts.
func (m *Metrics) TokensUsed(ctx context.Context, nodeType string, input, output int) {
	if m == nil {
		return
	}
	typeAttr := attribute.String(AttrNodeType, nodeType)
	m.tokensTotal.Add(ctx, int64(input), metric.WithAttributes(typeAttr, attribute.String("direction", "input")))
	m.tokensTotal.Add(ctx, int64(output), metric.WithAttributes(typeAttr, attribute.String("direction", "output")))
}
