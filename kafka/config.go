package kafka

import (
	"fmt"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Config holds the producer settings for publishing execution records.
type Config struct {
	// Enabled controls whether records are published.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	Brokers []string `yaml:"brokers" mapstructure:"brokers"`
	// Topic receives one message per finished execution.
	Topic string `yaml:"topic" mapstructure:"topic"`

	Compression  string `yaml:"compression" mapstructure:"compression"` // none, gzip, snappy, lz4, zstd
	Retries      int    `yaml:"retries" mapstructure:"retries"`
	BatchSize    int    `yaml:"batch_size" mapstructure:"batch_size"`
	BatchTimeout string `yaml:"batch_timeout" mapstructure:"batch_timeout"`
	WriteTimeout string `yaml:"write_timeout" mapstructure:"write_timeout"`
	RequiredAcks int    `yaml:"required_acks" mapstructure:"required_acks"`
	DialTimeout  string `yaml:"dial_timeout" mapstructure:"dial_timeout"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if len(c.Brokers) == 0 {
		c.Brokers = []string{"localhost:9092"}
	}
	if c.Topic == "" {
		c.Topic = "paiflow.executions"
	}
	if c.Compression == "" {
		c.Compression = "none"
	}
	if c.Retries <= 0 {
		c.Retries = 3
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 1
	}
	if c.BatchTimeout == "" {
		c.BatchTimeout = "10ms"
	}
	if c.WriteTimeout == "" {
		c.WriteTimeout = "10s"
	}
	if c.RequiredAcks == 0 {
		c.RequiredAcks = int(kafkago.RequireOne)
	}
	if c.DialTimeout == "" {
		c.DialTimeout = "5s"
	}
}

// Validate checks the configuration when enabled.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if len(c.Brokers) == 0 {
		return fmt.Errorf("at least one broker is required")
	}
	if c.Topic == "" {
		return fmt.Errorf("topic is required")
	}
	switch strings.ToLower(c.Compression) {
	case "none", "gzip", "snappy", "lz4", "zstd":
	default:
		return fmt.Errorf("unsupported compression %q", c.Compression)
	}
	switch c.RequiredAcks {
	case int(kafkago.RequireNone), int(kafkago.RequireOne), int(kafkago.RequireAll):
	default:
		return fmt.Errorf("required_acks must be 0, 1 or -1")
	}
	for name, v := range map[string]string{
		"batch_timeout": c.BatchTimeout,
		"write_timeout": c.WriteTimeout,
		"dial_timeout":  c.DialTimeout,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
	}
	return nil
}

func parseDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

func compression(name string) kafkago.Compression {
	switch strings.ToLower(name) {
	case "gzip":
		return kafkago.Gzip
	case "snappy":
		return kafkago.Snappy
	case "lz4":
		return kafkago.Lz4
	case "zstd":
		return kafkago.Zstd
	default:
		return 0
	}
}
