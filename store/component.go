package store

import (
	"context"
	"fmt"

	"github.com/kbukum/paiflow/component"
	"github.com/kbukum/paiflow/logger"
)

// Component wraps a Store and implements component.Component for lifecycle
// management.
type Component struct {
	store Store
	cfg   Config
	log   *logger.Logger
}

var _ component.Component = (*Component)(nil)

// NewComponent creates a store component for use with the component registry.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, log: log.WithComponent("store")}
}

// Store returns the opened backend, or nil before Start.
func (c *Component) Store() Store { return c.store }

// Name returns the component name.
func (c *Component) Name() string { return "store" }

// Start opens the backend and applies its migrations.
func (c *Component) Start(ctx context.Context) error {
	s, err := New(ctx, c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("store start: %w", err)
	}
	c.store = s
	return nil
}

// Stop closes the backend.
func (c *Component) Stop(_ context.Context) error {
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store = nil
	return err
}

// Health pings the backend.
func (c *Component) Health(ctx context.Context) component.Health {
	if c.store == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "store not initialized"}
	}
	if err := c.store.Ping(ctx); err != nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: fmt.Sprintf("ping failed: %v", err)}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe returns infrastructure summary info for the startup display.
func (c *Component) Describe() component.Description {
	details := "driver=" + c.cfg.Driver
	if c.cfg.Driver == DriverSQLite {
		details += " path=" + c.cfg.DSN
	}
	return component.Description{Name: "Store", Type: "database", Details: details}
}
