package redis

import (
	"fmt"
	"time"
)

// Config holds the Redis connection used to relay run events between
// paiflow instances.
type Config struct {
	// Enabled controls whether the relay is active.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Addr is the Redis server address (host:port).
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`

	// PoolSize is the maximum number of socket connections.
	PoolSize   int `yaml:"pool_size" mapstructure:"pool_size"`
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries"`

	DialTimeout  string `yaml:"dial_timeout" mapstructure:"dial_timeout"`
	ReadTimeout  string `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout string `yaml:"write_timeout" mapstructure:"write_timeout"`
	// PublishTimeout bounds one event publish, retries included. It should
	// not exceed engine.event_timeout.
	PublishTimeout string `yaml:"publish_timeout" mapstructure:"publish_timeout"`

	// ChannelPrefix is prepended to the workflow id to form the pub/sub
	// channel, e.g. "paiflow:events:<workflowID>".
	ChannelPrefix string `yaml:"channel_prefix" mapstructure:"channel_prefix"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 10
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.DialTimeout == "" {
		c.DialTimeout = "5s"
	}
	if c.ReadTimeout == "" {
		c.ReadTimeout = "3s"
	}
	if c.WriteTimeout == "" {
		c.WriteTimeout = "3s"
	}
	if c.PublishTimeout == "" {
		c.PublishTimeout = "2s"
	}
	if c.ChannelPrefix == "" {
		c.ChannelPrefix = "paiflow:events"
	}
}

// Validate checks that required fields are present and parseable.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Addr == "" {
		return fmt.Errorf("redis addr is required")
	}
	if c.PoolSize <= 0 {
		return fmt.Errorf("pool_size must be > 0")
	}
	for name, v := range map[string]string{
		"dial_timeout":    c.DialTimeout,
		"read_timeout":    c.ReadTimeout,
		"write_timeout":   c.WriteTimeout,
		"publish_timeout": c.PublishTimeout,
	} {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
