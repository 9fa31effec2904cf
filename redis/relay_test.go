package redis

import (
	"context"
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/paiflow/component"
	"github.com/kbukum/paiflow/event"
	"github.com/kbukum/paiflow/logger"
	"github.com/kbukum/paiflow/sse"
)

type published struct {
	pattern string
	frame   sse.Frame
}

type recordingHub struct {
	mu  sync.Mutex
	got []published
}

func (h *recordingHub) Publish(pattern string, f sse.Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.got = append(h.got, published{pattern: pattern, frame: f})
}

func (h *recordingHub) frames() []published {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]published(nil), h.got...)
}

func startComponent(t *testing.T, hub FramePublisher) (*Component, *miniredis.Miniredis) {
	t.Helper()
	mini := miniredis.RunT(t)
	c := NewComponent(Config{Enabled: true, Addr: mini.Addr()}, func() FramePublisher { return hub }, logger.Nop())
	require.NoError(t, c.Start(context.Background()))
	t.Cleanup(func() { _ = c.Stop(context.Background()) })
	return c, mini
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{Enabled: true}
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "localhost:6379", cfg.Addr)
	assert.Equal(t, "paiflow:events", cfg.ChannelPrefix)

	cfg.DialTimeout = "soon"
	assert.Error(t, cfg.Validate())
}

func TestNew_Disabled(t *testing.T) {
	_, err := New(Config{}, logger.Nop())
	assert.Error(t, err)
}

func TestRelay_ForwardsToHub(t *testing.T) {
	hub := &recordingHub{}
	c, _ := startComponent(t, hub)
	relay := c.Relay()
	require.NotNil(t, relay)
	assert.Equal(t, "paiflow:events:wf-1", relay.Channel("wf-1"))

	sink := relay.Sink("wf-1")
	sink.Accept(event.WorkflowStarted("exec-1"))
	sink.Accept(event.WorkflowCompleted("SUCCESS", "done", 12))

	require.Eventually(t, func() bool { return len(hub.frames()) == 2 }, 3*time.Second, 10*time.Millisecond)

	frames := hub.frames()
	assert.Equal(t, sse.WorkflowPattern("wf-1"), frames[0].pattern)
	assert.Equal(t, string(event.WorkflowStart), frames[0].frame.Name)
	assert.Equal(t, string(event.WorkflowComplete), frames[1].frame.Name)

	var e event.Event
	require.NoError(t, json.Unmarshal(frames[1].frame.Data, &e))
	assert.Equal(t, event.WorkflowComplete, e.Type)
}

func TestRelay_IgnoresMalformedPayload(t *testing.T) {
	hub := &recordingHub{}
	c, mini := startComponent(t, hub)

	mini.Publish("paiflow:events:wf-2", "not json")
	c.Relay().Sink("wf-2").Accept(event.NodeStarted("n1", "input"))

	require.Eventually(t, func() bool { return len(hub.frames()) == 1 }, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, string(event.NodeStart), hub.frames()[0].frame.Name)
}

func TestComponent_HealthAndStop(t *testing.T) {
	c, _ := startComponent(t, &recordingHub{})
	assert.Equal(t, component.StatusHealthy, c.Health(context.Background()).Status)
	assert.Contains(t, c.Describe().Details, "channel=paiflow:events:*")

	require.NoError(t, c.Stop(context.Background()))
	assert.Nil(t, c.Relay())
	assert.Equal(t, component.StatusUnhealthy, c.Health(context.Background()).Status)
	require.NoError(t, c.Stop(context.Background()))
}

func TestComponent_StartFailsWithoutServer(t *testing.T) {
	mini := miniredis.RunT(t)
	addr := mini.Addr()
	mini.Close()

	c := NewComponent(Config{Enabled: true, Addr: addr, DialTimeout: "200ms", MaxRetries: 1},
		func() FramePublisher { return &recordingHub{} }, logger.Nop())
	err := c.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis start ping")
}

// silentListener accepts connections and never writes a reply.
func silentListener(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var mu sync.Mutex
	var conns []net.Conn
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})
	return ln.Addr().String()
}

func TestRelay_SinkBoundedByPublishTimeout(t *testing.T) {
	client, err := New(Config{
		Enabled:        true,
		Addr:           silentListener(t),
		ReadTimeout:    "10s",
		WriteTimeout:   "10s",
		PublishTimeout: "200ms",
	}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	sink := NewRelay(client, &recordingHub{}, logger.Nop()).Sink("wf")

	start := time.Now()
	event.Emit(sink, event.NodeStarted("n1", "input"))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestConfig_RejectsNonPositivePublishTimeout(t *testing.T) {
	cfg := Config{Enabled: true, PublishTimeout: "0s"}
	cfg.ApplyDefaults()
	assert.ErrorContains(t, cfg.Validate(), "publish_timeout")
}
