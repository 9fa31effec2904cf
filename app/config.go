package app

import (
	"fmt"
	"strings"

	"github.com/kbukum/paiflow/config"
	"github.com/kbukum/paiflow/engine"
	"github.com/kbukum/paiflow/kafka"
	"github.com/kbukum/paiflow/llm"
	"github.com/kbukum/paiflow/observability"
	"github.com/kbukum/paiflow/redis"
	"github.com/kbukum/paiflow/server"
	"github.com/kbukum/paiflow/speech"
	"github.com/kbukum/paiflow/storage"
	"github.com/kbukum/paiflow/store"
)

// ServiceName names the process in logs, config lookup and telemetry.
const ServiceName = "paiflow"

// Config is the paiflow process configuration, loaded from config.yml,
// .env and PAIFLOW_* variables.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Engine        engine.Config        `yaml:"engine" mapstructure:"engine"`
	Store         store.Config         `yaml:"store" mapstructure:"store"`
	Storage       storage.Config       `yaml:"storage" mapstructure:"storage"`
	LLM           llm.Config           `yaml:"llm" mapstructure:"llm"`
	TTS           speech.Config        `yaml:"tts" mapstructure:"tts"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`

	// Redis relays run events between instances; Kafka publishes finished
	// execution records. Both are off by default.
	Redis redis.Config `yaml:"redis" mapstructure:"redis"`
	Kafka kafka.Config `yaml:"kafka" mapstructure:"kafka"`
}

// ApplyDefaults fills every section.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Engine.ApplyDefaults()
	c.Store.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.LLM.ApplyDefaults()
	c.TTS.ApplyDefaults()
	c.Observability.ApplyDefaults()
	c.Redis.ApplyDefaults()
	c.Kafka.ApplyDefaults()

	// Local artifacts are served by the files route unless a public URL
	// points elsewhere.
	if c.Storage.Provider == storage.ProviderLocal && c.Storage.PublicURL == "" && c.Server.FilesPrefix != "" {
		host := c.Server.Host
		if host == "" || host == "0.0.0.0" {
			host = "localhost"
		}
		c.Storage.PublicURL = fmt.Sprintf("http://%s:%d%s", host, c.Server.Port, strings.TrimRight(c.Server.FilesPrefix, "/"))
	}
}

// Validate checks every section and prefixes the failing one.
func (c *Config) Validate() error {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"service", c.ServiceConfig.Validate},
		{"server", c.Server.Validate},
		{"engine", c.Engine.Validate},
		{"store", c.Store.Validate},
		{"storage", c.Storage.Validate},
		{"llm", c.LLM.Validate},
		{"tts", c.TTS.Validate},
		{"observability", c.Observability.Validate},
		{"redis", c.Redis.Validate},
		{"kafka", c.Kafka.Validate},
	}
	for _, check := range checks {
		if err := check.fn(); err != nil {
			return fmt.Errorf("%s: %w", check.name, err)
		}
	}
	return nil
}

// LoadConfig reads the configuration. Empty paths use the default search
// locations.
func LoadConfig(configFile, envFile string) (*Config, error) {
	cfg := &Config{}
	var opts []config.LoaderOption
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}
	if err := config.LoadConfig(ServiceName, cfg, opts...); err != nil {
		return nil, err
	}
	return cfg, nil
}
