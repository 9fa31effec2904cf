package kafka

import (
	"context"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/paiflow/component"
	"github.com/kbukum/paiflow/logger"
)

// Component manages the publisher's lifecycle.
type Component struct {
	cfg Config
	pub *Publisher
	log *logger.Logger
}

var _ component.Component = (*Component)(nil)

// NewComponent creates a record publisher component.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, log: log.WithComponent("kafka")}
}

// Publisher returns the started publisher, or nil before Start.
func (c *Component) Publisher() *Publisher { return c.pub }

// Name returns the component name.
func (c *Component) Name() string { return "kafka" }

// Start creates the writer. Brokers are dialled lazily on first publish.
func (c *Component) Start(_ context.Context) error {
	pub, err := NewPublisher(c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("kafka start: %w", err)
	}
	c.pub = pub
	c.log.Info("Kafka record publisher started", map[string]interface{}{
		"brokers": c.cfg.Brokers, "topic": c.cfg.Topic,
	})
	return nil
}

// Stop flushes and closes the writer.
func (c *Component) Stop(_ context.Context) error {
	if c.pub == nil {
		return nil
	}
	err := c.pub.Close()
	c.pub = nil
	return err
}

// Health dials the first broker and reads cluster metadata.
func (c *Component) Health(ctx context.Context) component.Health {
	if c.pub == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "kafka not started"}
	}

	dialer := &kafkago.Dialer{Timeout: parseDuration(c.cfg.DialTimeout), DualStack: true}
	conn, err := dialer.DialContext(ctx, "tcp", c.cfg.Brokers[0])
	if err != nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: fmt.Sprintf("broker unreachable: %v", err)}
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(parseDuration(c.cfg.DialTimeout)))

	if _, err := conn.Brokers(); err != nil {
		return component.Health{Name: c.Name(), Status: component.StatusDegraded, Message: fmt.Sprintf("broker metadata: %v", err)}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe returns infrastructure summary info for the startup display.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Kafka",
		Type:    "messaging",
		Details: fmt.Sprintf("brokers=%v topic=%s", c.cfg.Brokers, c.cfg.Topic),
	}
}
