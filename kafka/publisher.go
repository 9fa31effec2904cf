// Package kafka publishes finished execution records to a Kafka topic, so
// downstream consumers can follow runs without polling the store.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/paiflow/engine"
	"github.com/kbukum/paiflow/logger"
	"github.com/kbukum/paiflow/workflow"
)

// MessageWriter is the subset of *kafkago.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes execution records as JSON messages keyed by workflow id,
// so every run of one workflow lands on the same partition.
type Publisher struct {
	writer  MessageWriter
	topic   string
	retries int
	log     *logger.Logger

	mu     sync.RWMutex
	closed bool
}

// NewPublisher creates a publisher backed by a kafka-go writer.
func NewPublisher(cfg Config, log *logger.Logger) (*Publisher, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("kafka config: %w", err)
	}
	if !cfg.Enabled {
		return nil, fmt.Errorf("kafka is disabled")
	}

	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: parseDuration(cfg.BatchTimeout),
		WriteTimeout: parseDuration(cfg.WriteTimeout),
		RequiredAcks: kafkago.RequiredAcks(cfg.RequiredAcks),
		Compression:  compression(cfg.Compression),
		Transport:    &kafkago.Transport{DialTimeout: parseDuration(cfg.DialTimeout)},
		ErrorLogger: kafkago.LoggerFunc(func(msg string, args ...interface{}) {
			log.Error("writer: "+fmt.Sprintf(msg, args...))
		}),
	}
	return NewPublisherWithWriter(w, cfg, log), nil
}

// NewPublisherWithWriter creates a publisher over an existing writer.
func NewPublisherWithWriter(w MessageWriter, cfg Config, log *logger.Logger) *Publisher {
	cfg.ApplyDefaults()
	return &Publisher{writer: w, topic: cfg.Topic, retries: cfg.Retries, log: log}
}

// Publish sends rec, retrying with linear backoff.
func (p *Publisher) Publish(ctx context.Context, rec *workflow.ExecutionRecord) error {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return fmt.Errorf("publisher is closed")
	}

	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	msg := kafkago.Message{
		Key:   []byte(rec.WorkflowID),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "status", Value: []byte(rec.Status)},
			{Key: "engine", Value: []byte(rec.Engine)},
		},
	}

	var lastErr error
	for attempt := 1; attempt <= p.retries; attempt++ {
		if lastErr = p.writer.WriteMessages(ctx, msg); lastErr == nil {
			return nil
		}
		if attempt < p.retries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
			}
		}
	}
	return fmt.Errorf("publish after %d attempts: %w", p.retries, lastErr)
}

// Close flushes pending messages and closes the writer.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.writer.Close()
}

// Topic returns the destination topic.
func (p *Publisher) Topic() string { return p.topic }

// PublishingStore inserts records into the wrapped store and then publishes
// them. A publish failure is logged; the insert result stands.
type PublishingStore struct {
	next engine.RecordStore
	pub  *Publisher
	log  *logger.Logger
}

var _ engine.RecordStore = (*PublishingStore)(nil)

// Wrap returns a RecordStore that publishes every inserted record.
func Wrap(next engine.RecordStore, pub *Publisher, log *logger.Logger) *PublishingStore {
	return &PublishingStore{next: next, pub: pub, log: log}
}

// Insert implements engine.RecordStore.
func (s *PublishingStore) Insert(ctx context.Context, rec *workflow.ExecutionRecord) (string, error) {
	id, err := s.next.Insert(ctx, rec)
	if err != nil {
		return id, err
	}
	if perr := s.pub.Publish(context.WithoutCancel(ctx), rec); perr != nil {
		s.log.Warn("execution record not published", map[string]interface{}{
			"execution_id": rec.ID, "topic": s.pub.Topic(), "error": perr.Error(),
		})
	}
	return id, nil
}
