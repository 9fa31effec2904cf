package event

import (
	"sync"
	"time"

	"github.com/kbukum/paiflow/logger"
)

// Sink receives progress events. Implementations must be safe to call from
// the goroutine executing the run and should return quickly.
type Sink interface {
	Accept(e Event)
}

// Emit forwards e to s. A nil sink is valid and drops the event.
func Emit(s Sink, e Event) {
	if s == nil {
		return
	}
	s.Accept(e)
}

// Func adapts a function to a Sink.
type Func func(e Event)

// Accept calls f(e).
func (f Func) Accept(e Event) { f(e) }

// Multi fans an event out to every non-nil sink in order.
func Multi(sinks ...Sink) Sink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	}
	return out
}

type multi []Sink

func (m multi) Accept(e Event) {
	for _, s := range m {
		s.Accept(e)
	}
}

// Collector keeps every event in memory.
type Collector struct {
	mu     sync.Mutex
	events []Event
}

// Accept appends e.
func (c *Collector) Accept(e Event) {
	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()
}

// Events returns a copy of the collected events.
func (c *Collector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

// Kinds returns the collected event types in order.
func (c *Collector) Kinds() []Kind {
	c.mu.Lock()
	defer c.mu.Unlock()
	kinds := make([]Kind, len(c.events))
	for i, e := range c.events {
		kinds[i] = e.Type
	}
	return kinds
}

// Channel is a Sink writing to a buffered channel. Events that do not fit
// within the timeout are dropped.
type Channel struct {
	ch      chan Event
	timeout time.Duration
}

// NewChannel creates a channel sink with the given buffer and send timeout.
func NewChannel(buffer int, timeout time.Duration) *Channel {
	return &Channel{ch: make(chan Event, buffer), timeout: timeout}
}

// C returns the receive side.
func (c *Channel) C() <-chan Event { return c.ch }

// Accept sends e, waiting at most the configured timeout.
func (c *Channel) Accept(e Event) {
	select {
	case c.ch <- e:
		return
	default:
	}
	t := time.NewTimer(c.timeout)
	defer t.Stop()
	select {
	case c.ch <- e:
	case <-t.C:
		logger.WithComponent("event").Warn("dropping event for slow consumer", map[string]interface{}{
			"event_type": string(e.Type),
			"node_id":    e.NodeID,
		})
	}
}

// Close closes the channel. No Accept may run concurrently with or after
// Close.
func (c *Channel) Close() { close(c.ch) }
