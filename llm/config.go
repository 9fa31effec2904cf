package llm

import (
	"fmt"
	"strings"
	"time"
)

// Default base URLs of the OpenAI-compatible node types. ai_ping has no
// public default and must be configured or set on the node.
var DefaultBaseURLs = map[string]string{
	"openai":   "https://api.openai.com/v1",
	"qwen":     "https://dashscope.aliyuncs.com/compatible-mode/v1",
	"zhipu":    "https://open.bigmodel.cn/api/paas/v4",
	"deepseek": "https://api.deepseek.com/v1",
}

// Config holds the shared LLM client settings.
type Config struct {
	// Timeout bounds a non-streaming completion. Defaults to 120s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// RetryAttempts counts the first call. Defaults to 3.
	RetryAttempts int `yaml:"retry_attempts" mapstructure:"retry_attempts"`

	// BaseURLs overrides DefaultBaseURLs per node type.
	BaseURLs map[string]string `yaml:"base_urls" mapstructure:"base_urls"`

	// Headers are sent with every request.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`
}

// ApplyDefaults sets default values for unset config fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 120 * time.Second
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 3
	}
	merged := make(map[string]string, len(DefaultBaseURLs)+len(c.BaseURLs))
	for k, v := range DefaultBaseURLs {
		merged[k] = v
	}
	for k, v := range c.BaseURLs {
		if v = strings.TrimSpace(v); v != "" {
			merged[strings.ToLower(k)] = v
		}
	}
	c.BaseURLs = merged
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("llm: timeout must be positive")
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("llm: retry_attempts must be at least 1")
	}
	for k, v := range c.BaseURLs {
		if !strings.HasPrefix(v, "http://") && !strings.HasPrefix(v, "https://") {
			return fmt.Errorf("llm: base url for %s must be http(s): %q", k, v)
		}
	}
	return nil
}

// BaseURL returns the configured base URL for a node type, or "".
func (c *Config) BaseURL(nodeType string) string {
	if v, ok := c.BaseURLs[strings.ToLower(nodeType)]; ok {
		return v
	}
	return DefaultBaseURLs[strings.ToLower(nodeType)]
}
