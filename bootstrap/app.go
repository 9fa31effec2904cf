package bootstrap

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kbukum/paiflow/component"
	"github.com/kbukum/paiflow/logger"
)

// App is a process with uniform lifecycle management. C is the config
// type; any struct embedding config.ServiceConfig and implementing
// ApplyDefaults and Validate satisfies Config.
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	gracefulTimeout time.Duration
	quiet           bool
	onConfigure     []func(ctx context.Context, app *App[C]) error

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp applies defaults to cfg, validates it and initializes the logger.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	svc := cfg.GetServiceConfig()
	o := resolveOptions(opts)

	log := o.logger
	if log == nil {
		logger.Init(svc.Logging, svc.Name)
		log = logger.GetGlobalLogger()
	}

	app := &App[C]{
		Name:            svc.Name,
		Version:         svc.Version,
		Cfg:             cfg,
		Logger:          log,
		Components:      component.NewRegistry(log.WithComponent("components")),
		Summary:         NewSummary(svc.Name, svc.Version),
		gracefulTimeout: 15 * time.Second,
		quiet:           o.quiet,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}
	if o.summaryOut != nil {
		app.Summary.SetOutput(o.summaryOut)
	}
	return app, nil
}

// RegisterComponent adds a component that is started before any hook runs.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// LaunchComponent registers and starts c during the configure phase, for
// components that need wiring from started infrastructure. It is stopped
// before everything registered earlier.
func (a *App[C]) LaunchComponent(ctx context.Context, c component.Component) error {
	return a.Components.Launch(ctx, c)
}

// OnConfigure registers a callback for the configure phase, which runs
// after infrastructure components have started.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// ReadyCheck fails when any registered component reports a status other
// than healthy. The error lists each one as name=status(message).
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var waiting []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status == component.StatusHealthy {
			continue
		}
		entry := h.Name + "=" + string(h.Status)
		if h.Message != "" {
			entry += "(" + h.Message + ")"
		}
		waiting = append(waiting, entry)
	}
	if len(waiting) > 0 {
		return fmt.Errorf("unhealthy components: %s", strings.Join(waiting, ", "))
	}
	return nil
}

// Run starts the service and blocks until SIGINT, SIGTERM or ctx is done,
// then shuts down.
func (a *App[C]) Run(ctx context.Context) error {
	return a.lifecycle(ctx, func(ctx context.Context) error {
		a.Logger.Info("Application ready, waiting for shutdown signal")
		<-ctx.Done()
		a.Logger.Info("Shutdown requested", map[string]interface{}{"cause": context.Cause(ctx).Error()})
		return nil
	})
}

// RunTask starts the components, runs task and shuts down when it
// returns. SIGINT or SIGTERM cancel the task's context.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	return a.lifecycle(ctx, task)
}

func (a *App[C]) lifecycle(ctx context.Context, body func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		if stopErr := a.stop(); stopErr != nil {
			a.Logger.Warn("Cleanup after failed startup reported errors", logger.ErrorFields("stop", stopErr))
		}
		return err
	}

	sigCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	bodyErr := body(sigCtx)
	cancel()

	if stopErr := a.stop(); stopErr != nil && bodyErr == nil {
		return stopErr
	}
	return bodyErr
}

// startup runs the phases in order; the first failure aborts. A failed
// ready check is only logged, so a degraded provider does not keep the
// service down.
func (a *App[C]) startup(ctx context.Context) error {
	began := time.Now()
	a.Logger.Info("Starting application", map[string]interface{}{"name": a.Name, "version": a.Version})

	phases := []struct {
		name string
		run  func(context.Context) error
	}{
		{"initialization", a.Components.StartAll},
		{"onStart hook", func(ctx context.Context) error { return runHooks(ctx, a.onStart) }},
		{"configuration", a.configure},
		{"ready check", func(ctx context.Context) error {
			if err := a.ReadyCheck(ctx); err != nil {
				a.Logger.Warn("Ready check reported issues", logger.ErrorFields("ready_check", err))
			}
			return nil
		}},
		{"onReady hook", func(ctx context.Context) error { return runHooks(ctx, a.onReady) }},
	}
	for _, p := range phases {
		if err := p.run(ctx); err != nil {
			return fmt.Errorf("%s failed: %w", p.name, err)
		}
	}

	a.Summary.SetStartupDuration(time.Since(began))
	if !a.quiet {
		a.Summary.Display(ctx, a.Components)
	}
	return nil
}

func (a *App[C]) configure(ctx context.Context) error {
	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// stop runs the stop hooks, then stops components in reverse start order,
// all within the graceful timeout. The first error is returned.
func (a *App[C]) stop() error {
	a.Logger.Info("Shutting down application", map[string]interface{}{"timeout": a.gracefulTimeout.String()})
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var first error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", logger.ErrorFields("on_stop", err))
		first = err
	}
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Shutdown completed with errors", logger.ErrorFields("stop_all", err))
		if first == nil {
			first = err
		}
	}
	a.Logger.Info("Application shutdown complete")
	return first
}
