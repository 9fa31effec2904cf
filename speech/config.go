package speech

import (
	"fmt"
	"strings"
	"time"
)

// DefaultEndpoint is DashScope's multimodal generation API.
const DefaultEndpoint = "https://dashscope.aliyuncs.com/api/v1/services/aigc/multimodal-generation/generation"

// Config configures the DashScope synthesizer.
type Config struct {
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Timeout bounds one synthesis call or one audio download.
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RetryAttempts int           `yaml:"retry_attempts" mapstructure:"retry_attempts"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if strings.TrimSpace(c.Endpoint) == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 3
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Endpoint, "http://") && !strings.HasPrefix(c.Endpoint, "https://") {
		return fmt.Errorf("speech: endpoint must be http(s): %q", c.Endpoint)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("speech: timeout must be positive")
	}
	return nil
}
