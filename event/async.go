package event

import (
	"sync"
	"time"

	"github.com/kbukum/paiflow/logger"
)

// Async defaults.
const (
	DefaultBuffer  = 256
	DefaultTimeout = 2 * time.Second
)

// AsyncSink decouples a run from a slow downstream sink. Events are
// delivered in the order they were accepted by a single goroutine. When
// the buffer stays full past the timeout the event is dropped.
type AsyncSink struct {
	next    Sink
	queue   chan Event
	timeout time.Duration
	log     *logger.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewAsync starts delivering to next. Non-positive buffer or timeout
// values use the defaults. Call Close to drain and stop.
func NewAsync(next Sink, buffer int, timeout time.Duration) *AsyncSink {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	a := &AsyncSink{
		next:    next,
		queue:   make(chan Event, buffer),
		timeout: timeout,
		log:     logger.WithComponent("event"),
		done:    make(chan struct{}),
	}
	go a.loop()
	return a
}

func (a *AsyncSink) loop() {
	defer close(a.done)
	for e := range a.queue {
		a.deliver(e)
	}
}

func (a *AsyncSink) deliver(e Event) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("event sink panicked", map[string]interface{}{
				"event_type": string(e.Type),
				"panic":      r,
			})
		}
	}()
	Emit(a.next, e)
}

// Accept enqueues e. It never blocks longer than the timeout and is a
// no-op after Close.
func (a *AsyncSink) Accept(e Event) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return
	}
	select {
	case a.queue <- e:
		return
	default:
	}
	t := time.NewTimer(a.timeout)
	defer t.Stop()
	select {
	case a.queue <- e:
	case <-t.C:
		a.log.Warn("event buffer full, dropping event", map[string]interface{}{
			"event_type": string(e.Type),
			"node_id":    e.NodeID,
		})
	}
}

// Close stops accepting events and waits until queued events have been
// delivered. It is safe to call more than once.
func (a *AsyncSink) Close() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()
	<-a.done
}
