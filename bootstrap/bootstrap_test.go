package bootstrap

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/paiflow/component"
	"github.com/kbukum/paiflow/config"
	"github.com/kbukum/paiflow/logger"
)

type testConfig struct {
	config.ServiceConfig
}

type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   component.Health
	started  bool
	stopped  bool
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(context.Context) error {
	m.started = true
	return m.startErr
}
func (m *mockComponent) Stop(context.Context) error {
	m.stopped = true
	return m.stopErr
}
func (m *mockComponent) Health(context.Context) component.Health { return m.health }
func (m *mockComponent) Describe() component.Description {
	return component.Description{Name: m.name, Type: "mock", Details: "in-memory"}
}

func healthy(name string) *mockComponent {
	return &mockComponent{name: name, health: component.Health{Name: name, Status: component.StatusHealthy}}
}

func newTestConfig(name, version string) *testConfig {
	return &testConfig{ServiceConfig: config.ServiceConfig{
		Name:        name,
		Version:     version,
		Environment: "development",
	}}
}

func newTestApp(t *testing.T, opts ...Option) *App[*testConfig] {
	t.Helper()
	opts = append([]Option{WithLogger(logger.Nop()), WithQuiet()}, opts...)
	app, err := NewApp(newTestConfig("test-svc", "1.0.0"), opts...)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t)
	if app.Name != "test-svc" || app.Version != "1.0.0" {
		t.Errorf("unexpected identity %q %q", app.Name, app.Version)
	}
	if app.Components == nil || app.Logger == nil || app.Summary == nil {
		t.Fatal("expected registry, logger and summary")
	}
	if app.Cfg.Name != "test-svc" {
		t.Errorf("expected typed cfg, got %q", app.Cfg.Name)
	}
	if app.gracefulTimeout != 15*time.Second {
		t.Errorf("default graceful timeout = %v", app.gracefulTimeout)
	}
}

func TestNewApp_AppliesDefaultsAndValidates(t *testing.T) {
	app, err := NewApp(&testConfig{}, WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	if app.Name != "paiflow" {
		t.Errorf("expected default name, got %q", app.Name)
	}

	bad := newTestConfig("svc", "1")
	bad.Environment = "moon"
	if _, err := NewApp(bad, WithLogger(logger.Nop())); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestWithGracefulTimeout(t *testing.T) {
	app := newTestApp(t, WithGracefulTimeout(3*time.Second))
	if app.gracefulTimeout != 3*time.Second {
		t.Errorf("got %v", app.gracefulTimeout)
	}
}

func TestRunTask_Lifecycle(t *testing.T) {
	app := newTestApp(t)
	comp := healthy("store")
	if err := app.RegisterComponent(comp); err != nil {
		t.Fatal(err)
	}

	var order []string
	app.OnStart(func(context.Context) error { order = append(order, "start"); return nil })
	app.OnConfigure(func(_ context.Context, a *App[*testConfig]) error {
		if a.Components.Get("store") == nil {
			return fmt.Errorf("store not registered")
		}
		order = append(order, "configure")
		return nil
	})
	app.OnReady(func(context.Context) error { order = append(order, "ready"); return nil })
	app.OnStop(func(context.Context) error { order = append(order, "stop"); return nil })

	err := app.RunTask(context.Background(), func(context.Context) error {
		order = append(order, "task")
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}
	if got := strings.Join(order, ","); got != "start,configure,ready,task,stop" {
		t.Errorf("order = %s", got)
	}
	if !comp.started || !comp.stopped {
		t.Error("component should be started and stopped")
	}
}

func TestRunTask_TaskErrorStillStops(t *testing.T) {
	app := newTestApp(t)
	comp := healthy("store")
	_ = app.RegisterComponent(comp)

	taskErr := fmt.Errorf("boom")
	if err := app.RunTask(context.Background(), func(context.Context) error { return taskErr }); err != taskErr {
		t.Fatalf("expected task error, got %v", err)
	}
	if !comp.stopped {
		t.Error("component should be stopped after task error")
	}
}

func TestRunTask_StopErrorSurfacesWhenTaskSucceeds(t *testing.T) {
	app := newTestApp(t)
	comp := healthy("store")
	comp.stopErr = fmt.Errorf("close failed")
	_ = app.RegisterComponent(comp)

	err := app.RunTask(context.Background(), func(context.Context) error { return nil })
	if err == nil || !strings.Contains(err.Error(), "close failed") {
		t.Fatalf("expected stop error, got %v", err)
	}
}

func TestRunTask_StartFailure(t *testing.T) {
	app := newTestApp(t)
	_ = app.RegisterComponent(&mockComponent{name: "db", startErr: fmt.Errorf("refused")})

	called := false
	err := app.RunTask(context.Background(), func(context.Context) error { called = true; return nil })
	if err == nil || !strings.Contains(err.Error(), "initialization failed") {
		t.Fatalf("expected initialization error, got %v", err)
	}
	if called {
		t.Error("task must not run after a failed startup")
	}
}

func TestRunTask_ConfigureFailure(t *testing.T) {
	app := newTestApp(t)
	comp := healthy("store")
	_ = app.RegisterComponent(comp)
	app.OnConfigure(func(context.Context, *App[*testConfig]) error { return fmt.Errorf("bad wiring") })

	err := app.RunTask(context.Background(), func(context.Context) error { return nil })
	if err == nil || !strings.Contains(err.Error(), "configuration failed") {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !comp.stopped {
		t.Error("started components should be stopped on abort")
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	app := newTestApp(t)
	comp := healthy("server")
	_ = app.RegisterComponent(comp)

	ctx, cancel := context.WithCancel(context.Background())
	app.OnReady(func(context.Context) error { cancel(); return nil })

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if !comp.stopped {
		t.Error("component should be stopped")
	}
}

func TestReadyCheck(t *testing.T) {
	app := newTestApp(t)
	_ = app.RegisterComponent(healthy("store"))
	if err := app.ReadyCheck(context.Background()); err != nil {
		t.Fatalf("unexpected: %v", err)
	}

	_ = app.RegisterComponent(&mockComponent{name: "llm", health: component.Health{
		Name: "llm", Status: component.StatusDegraded, Message: "no api key",
	}})
	err := app.ReadyCheck(context.Background())
	if err == nil || !strings.Contains(err.Error(), "llm=degraded(no api key)") {
		t.Fatalf("expected degraded detail, got %v", err)
	}
}

func TestRunTask_StopHookErrorReturned(t *testing.T) {
	app := newTestApp(t)
	app.OnStop(func(context.Context) error { return fmt.Errorf("flush failed") })
	err := app.RunTask(context.Background(), func(context.Context) error { return nil })
	if err == nil || !strings.Contains(err.Error(), "flush failed") {
		t.Fatalf("expected hook error, got %v", err)
	}
}

func TestRunTask_OnStartFailureNamesPhase(t *testing.T) {
	app := newTestApp(t)
	app.OnStart(func(context.Context) error { return fmt.Errorf("warmup") })
	err := app.RunTask(context.Background(), func(context.Context) error {
		t.Fatal("task must not run")
		return nil
	})
	if err == nil || !strings.Contains(err.Error(), "onStart hook failed") {
		t.Fatalf("expected onStart failure, got %v", err)
	}
}

func TestSummaryDisplay(t *testing.T) {
	var buf bytes.Buffer
	app := newTestApp(t, WithSummaryOutput(&buf))
	_ = app.RegisterComponent(healthy("store"))
	_ = app.RegisterComponent(&mockComponent{name: "llm", health: component.Health{Name: "llm", Status: component.StatusUnhealthy}})

	app.Summary.SetStartupDuration(1500 * time.Millisecond)
	app.Summary.TrackEngines("dag", "graph")
	app.Summary.TrackNodeTypes("input", "output")
	app.Summary.TrackRoute("POST", "/api/workflows/:id/execute", "API.execute")
	app.Summary.Display(context.Background(), app.Components)

	out := buf.String()
	for _, want := range []string{
		"test-svc 1.0.0 started in 1.50s",
		"store [mock]: in-memory",
		"engines: dag, graph",
		"node types: input, output",
		"POST    /api/workflows/:id/execute → API.execute",
		"(1/2 healthy)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q\n%s", want, out)
		}
	}
}

func TestSummaryDisplay_DevVersionAndAllHealthy(t *testing.T) {
	var buf bytes.Buffer
	s := NewSummary("svc", "")
	s.SetOutput(&buf)
	reg := component.NewRegistry(logger.Nop())
	_ = reg.Register(healthy("store"))
	s.Display(context.Background(), reg)

	out := buf.String()
	if !strings.Contains(out, "svc dev started") {
		t.Errorf("expected dev version:\n%s", out)
	}
	if !strings.Contains(out, "All components healthy (1/1)") {
		t.Errorf("expected all healthy:\n%s", out)
	}
}

func TestLaunchComponent_StoppedBeforeInfrastructure(t *testing.T) {
	app := newTestApp(t)
	store := healthy("store")
	_ = app.RegisterComponent(store)

	server := healthy("server")
	app.OnConfigure(func(ctx context.Context, a *App[*testConfig]) error {
		return a.LaunchComponent(ctx, server)
	})

	var stoppedFirst string
	app.OnStop(func(context.Context) error {
		if server.stopped || store.stopped {
			stoppedFirst = "early"
		}
		return nil
	})
	if err := app.RunTask(context.Background(), func(context.Context) error {
		if !server.started {
			return fmt.Errorf("server not started")
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if stoppedFirst != "" || !server.stopped || !store.stopped {
		t.Errorf("unexpected stop state: hook=%q server=%v store=%v", stoppedFirst, server.stopped, store.stopped)
	}
}
