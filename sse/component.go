package sse

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/kbukum/paiflow/component"
	"github.com/kbukum/paiflow/logger"
)

// Component owns the process-wide Hub that fans run events out to
// workflow subscribers.
type Component struct {
	hub     *Hub
	route   string
	running atomic.Bool
	loop    sync.WaitGroup
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates the hub component. route is the subscription
// endpoint shown in the startup summary.
func NewComponent(route string, log *logger.Logger) *Component {
	return &Component{hub: NewHub(log), route: route}
}

// Hub returns the hub. It accepts subscribers only between Start and Stop.
func (c *Component) Hub() *Hub { return c.hub }

func (c *Component) Name() string { return "sse" }

// Start runs the hub loop. Starting twice is a no-op.
func (c *Component) Start(context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return nil
	}
	c.loop.Add(1)
	go func() {
		defer c.loop.Done()
		c.hub.Run()
	}()
	return nil
}

// Stop disconnects every subscriber and waits for the loop to exit.
func (c *Component) Stop(context.Context) error {
	if !c.running.CompareAndSwap(true, false) {
		return nil
	}
	c.hub.Stop()
	c.loop.Wait()
	return nil
}

// Health is unhealthy once the hub loop has stopped.
func (c *Component) Health(context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if !c.running.Load() {
		h.Status = component.StatusUnhealthy
		h.Message = "event hub stopped"
		return h
	}
	h.Message = fmt.Sprintf("%d subscribers on %d workflows", c.hub.GetClientCount(), c.hub.Watched())
	return h
}

func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Run events",
		Type:    "sse",
		Details: "GET " + c.route,
	}
}
