package engine

import (
	"fmt"
	"time"

	"github.com/kbukum/paiflow/event"
	"github.com/kbukum/paiflow/workflow"
)

// Config holds engine settings.
type Config struct {
	// DefaultType runs workflows whose engine type is not recognized.
	DefaultType string `mapstructure:"default_type" json:"default_type"`
	// EventBuffer is the queue size of asynchronous event sinks.
	EventBuffer int `mapstructure:"event_buffer" json:"event_buffer"`
	// EventTimeout bounds how long a run waits to enqueue one event.
	EventTimeout time.Duration `mapstructure:"event_timeout" json:"event_timeout"`
	// RunTimeout bounds a whole run; zero disables the limit.
	RunTimeout time.Duration `mapstructure:"run_timeout" json:"run_timeout"`
	// MaxConcurrent caps runs in flight per process.
	MaxConcurrent int `mapstructure:"max_concurrent" json:"max_concurrent"`
}

// ApplyDefaults sets default values for zero-valued fields.
func (c *Config) ApplyDefaults() {
	c.DefaultType = workflow.NormalizeEngineType(c.DefaultType)
	if c.EventBuffer <= 0 {
		c.EventBuffer = event.DefaultBuffer
	}
	if c.EventTimeout <= 0 {
		c.EventTimeout = event.DefaultTimeout
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 16
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch workflow.NormalizeEngineType(c.DefaultType) {
	case workflow.EngineDAG, workflow.EngineGraph:
	default:
		return fmt.Errorf("engine: unknown default_type %q", c.DefaultType)
	}
	if c.RunTimeout < 0 {
		return fmt.Errorf("engine: run_timeout must not be negative")
	}
	return nil
}
