package redis

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/paiflow/component"
	"github.com/kbukum/paiflow/logger"
)

// Component owns the client and the relay's subscription loop.
type Component struct {
	cfg Config
	hub func() FramePublisher
	log *logger.Logger

	client *Client
	relay  *Relay
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var _ component.Component = (*Component)(nil)

// NewComponent creates a relay component. hub is resolved at Start, after
// the SSE hub has started.
func NewComponent(cfg Config, hub func() FramePublisher, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, hub: hub, log: log.WithComponent("redis")}
}

// Relay returns the started relay, or nil before Start.
func (c *Component) Relay() *Relay { return c.relay }

// Name returns the component name.
func (c *Component) Name() string { return "redis" }

// Start connects and waits for the subscription to be confirmed.
func (c *Component) Start(ctx context.Context) error {
	client, err := New(c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("redis start: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		_ = client.Close()
		return fmt.Errorf("redis start ping: %w", err)
	}

	relay := NewRelay(client, c.hub(), c.log)
	runCtx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	errCh := make(chan error, 1)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := relay.Run(runCtx, ready); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ready:
	case err := <-errCh:
		cancel()
		_ = client.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	case <-ctx.Done():
		cancel()
		c.wg.Wait()
		_ = client.Close()
		return ctx.Err()
	}

	c.client, c.relay, c.cancel = client, relay, cancel
	c.log.Info("Redis event relay started", map[string]interface{}{"channel": c.cfg.ChannelPrefix + ":*"})
	return nil
}

// Stop ends the subscription and closes the client.
func (c *Component) Stop(_ context.Context) error {
	if c.client == nil {
		return nil
	}
	c.cancel()
	c.wg.Wait()
	err := c.client.Close()
	c.client, c.relay = nil, nil
	return err
}

// Health pings the server.
func (c *Component) Health(ctx context.Context) component.Health {
	if c.client == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "redis not initialized"}
	}
	if err := c.client.Ping(ctx); err != nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: fmt.Sprintf("ping failed: %v", err)}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe returns infrastructure summary info for the startup display.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Redis",
		Type:    "pubsub",
		Details: fmt.Sprintf("%s db=%d channel=%s:*", c.cfg.Addr, c.cfg.DB, c.cfg.ChannelPrefix),
	}
}
