package redis

import (
	"context"
	"encoding/json"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/paiflow/event"
	"github.com/kbukum/paiflow/logger"
	"github.com/kbukum/paiflow/sse"
)

// FramePublisher delivers frames to local SSE subscribers. *sse.Hub
// satisfies it.
type FramePublisher interface {
	Publish(pattern string, f sse.Frame)
}

// envelope is the pub/sub payload: the event kind plus the encoded event.
type envelope struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
}

// Relay publishes run events to Redis and forwards every relayed event,
// including this instance's own, to the local hub.
type Relay struct {
	client *Client
	hub    FramePublisher
	prefix string
	log    *logger.Logger
}

// NewRelay creates a relay over client. Events are forwarded to hub.
func NewRelay(client *Client, hub FramePublisher, log *logger.Logger) *Relay {
	return &Relay{client: client, hub: hub, prefix: client.cfg.ChannelPrefix, log: log}
}

// Channel returns the pub/sub channel of a workflow.
func (r *Relay) Channel(workflowID string) string {
	return r.prefix + ":" + workflowID
}

// Sink returns an event.Sink that publishes the events of runs of
// workflowID. Publish failures are logged and the event is dropped.
func (r *Relay) Sink(workflowID string) event.Sink {
	channel := r.Channel(workflowID)
	return event.Func(func(e event.Event) {
		data, err := json.Marshal(e)
		if err != nil {
			r.log.Warn("dropping unencodable event", map[string]interface{}{"event": string(e.Type), "error": err.Error()})
			return
		}
		payload, _ := json.Marshal(envelope{Name: string(e.Type), Data: data})
		if err := r.client.Publish(context.Background(), channel, payload); err != nil {
			r.log.Warn("event relay publish failed", map[string]interface{}{
				"channel": channel, "event": string(e.Type), "error": err.Error(),
			})
		}
	})
}

// Run subscribes to every workflow channel and forwards messages to the hub
// until ctx is done. ready is closed once the subscription is confirmed.
func (r *Relay) Run(ctx context.Context, ready chan<- struct{}) error {
	pubsub := r.client.PSubscribe(ctx, r.prefix+":*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	if ready != nil {
		close(ready)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.forward(msg)
		}
	}
}

func (r *Relay) forward(msg *goredis.Message) {
	workflowID := strings.TrimPrefix(msg.Channel, r.prefix+":")
	var env envelope
	if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
		r.log.Warn("ignoring malformed relay message", map[string]interface{}{"channel": msg.Channel, "error": err.Error()})
		return
	}
	r.hub.Publish(sse.WorkflowPattern(workflowID), sse.Frame{Name: env.Name, Data: env.Data})
}
