package httpclient

import (
	"fmt"
	"time"

	"github.com/kbukum/paiflow/resilience"
)

const (
	defaultTimeout = 60 * time.Second
)

// Config configures the HTTP client.
type Config struct {
	// Name labels errors and log lines ("openai", "dashscope-tts").
	Name string `yaml:"name" mapstructure:"name"`

	// BaseURL is prepended to relative request paths.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout bounds non-streaming requests. Streams rely on the context.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Auth is applied to every request unless the request overrides it.
	Auth Auth `yaml:"-" mapstructure:"-"`

	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// Retry configures retry behavior. Nil disables retry.
	Retry *resilience.RetryConfig `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Name == "" {
		c.Name = "http"
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	return nil
}

// RetryConfig returns a retry policy of the given attempts that only retries
// errors classified as retryable.
func RetryConfig(attempts int) *resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	if attempts > 0 {
		cfg.MaxAttempts = attempts
	}
	cfg.RetryIf = IsRetryable
	return &cfg
}
