package store

import (
	"fmt"
	"time"
)

// Drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config selects and configures the store backend.
type Config struct {
	Driver string `yaml:"driver" mapstructure:"driver"`

	// DSN is a file path or ":memory:" for sqlite and a connection URL for
	// postgres. Unused by the memory driver.
	DSN string `yaml:"dsn" mapstructure:"dsn"`

	// MaxOpenConns bounds the postgres pool.
	MaxOpenConns int `yaml:"max_open_conns" mapstructure:"max_open_conns"`

	// ConnectTimeout bounds opening the backend and running migrations.
	ConnectTimeout time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Driver == "" {
		c.Driver = DriverSQLite
	}
	if c.Driver == DriverSQLite && c.DSN == "" {
		c.DSN = "paiflow.db"
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 10
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 30 * time.Second
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if c.DSN == "" {
			return fmt.Errorf("store: dsn is required for postgres")
		}
	default:
		return fmt.Errorf("store: unsupported driver %q", c.Driver)
	}
	if c.MaxOpenConns <= 0 {
		return fmt.Errorf("store: max_open_conns must be > 0")
	}
	return nil
}
