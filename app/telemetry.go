package app

import (
	"context"
	"fmt"

	"github.com/kbukum/paiflow/component"
	"github.com/kbukum/paiflow/observability"
)

// telemetry installs the OTLP providers for the life of the process. It is
// registered first so it flushes last.
type telemetry struct {
	cfg      observability.Config
	service  string
	version  string
	env      string
	shutdown observability.Shutdown
	metrics  *observability.Metrics
}

var (
	_ component.Component   = (*telemetry)(nil)
	_ component.Describable = (*telemetry)(nil)
)

func (t *telemetry) Name() string { return "telemetry" }

func (t *telemetry) Start(ctx context.Context) error {
	shutdown, err := observability.Init(ctx, t.cfg, t.service, t.version, t.env)
	if err != nil {
		return fmt.Errorf("observability init: %w", err)
	}
	t.shutdown = shutdown
	m, err := observability.NewMetrics(observability.Meter())
	if err != nil {
		_ = shutdown(ctx)
		return err
	}
	t.metrics = m
	return nil
}

func (t *telemetry) Stop(ctx context.Context) error {
	if t.shutdown == nil {
		return nil
	}
	return t.shutdown(ctx)
}

func (t *telemetry) Health(context.Context) component.Health {
	return component.Health{Name: t.Name(), Status: component.StatusHealthy}
}

func (t *telemetry) Describe() component.Description {
	if !t.cfg.Enabled {
		return component.Description{Name: "Telemetry", Type: "otel", Details: "disabled"}
	}
	return component.Description{
		Name:    "Telemetry",
		Type:    "otel",
		Details: fmt.Sprintf("otlp=%s sample=%g", t.cfg.Endpoint, t.cfg.SampleRate),
	}
}
