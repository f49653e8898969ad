// Package config loads and validates the application configuration from a
// JSON file. Environment references of the form ${VAR} in the file are
// expanded before parsing, so secrets like API keys stay out of the file
// itself.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/c360/semquery/errors"
	"github.com/c360/semquery/ontology"
)

// Duration is a time.Duration that unmarshals from JSON strings like "10s".
type Duration time.Duration

// UnmarshalJSON parses either a duration string or a number of nanoseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*d = Duration(n)
	return nil
}

// MarshalJSON renders the duration string form.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std returns the standard library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// NATSConfig configures the graph query transport.
type NATSConfig struct {
	URL            string   `json:"url"`
	Subject        string   `json:"subject"`
	Timeout        Duration `json:"timeout,omitempty"`
	MaxInFlight    int      `json:"max_in_flight,omitempty"`
	AcquireTimeout Duration `json:"acquire_timeout,omitempty"`
}

// LLMConfig configures the optional model-assisted intent extraction.
type LLMConfig struct {
	Enabled bool     `json:"enabled"`
	BaseURL string   `json:"base_url,omitempty"`
	APIKey  string   `json:"api_key,omitempty"`
	Model   string   `json:"model,omitempty"`
	Timeout Duration `json:"timeout,omitempty"`
}

// PipelineConfig configures pipeline behavior.
type PipelineConfig struct {
	DefaultLimit int    `json:"default_limit,omitempty"`
	Language     string `json:"language,omitempty"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level  string `json:"level,omitempty"`  // debug, info, warn, error
	Format string `json:"format,omitempty"` // text, json
}

// Config is the complete application configuration.
type Config struct {
	NATS     NATSConfig     `json:"nats"`
	LLM      LLMConfig      `json:"llm,omitempty"`
	Pipeline PipelineConfig `json:"pipeline,omitempty"`
	Logging  LoggingConfig  `json:"logging,omitempty"`
}

// Default returns the configuration defaults applied before file values.
func Default() *Config {
	return &Config{
		NATS: NATSConfig{
			URL:            "nats://localhost:4222",
			Subject:        "graph.query",
			Timeout:        Duration(10 * time.Second),
			MaxInFlight:    16,
			AcquireTimeout: Duration(2 * time.Second),
		},
		LLM: LLMConfig{
			Model:   "gpt-4o-mini",
			Timeout: Duration(10 * time.Second),
		},
		Pipeline: PipelineConfig{
			DefaultLimit: 20,
			Language:     string(ontology.LanguageNorwegian),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads, env-expands, parses and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFatal(err, "Config", "Load", "read config file")
	}

	cfg := Default()
	if err := json.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, errors.WrapFatal(fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err),
			"Config", "Load", "parse config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints. It is called by Load and again by
// main before wiring components.
func (c *Config) Validate() error {
	fail := func(msg string) error {
		return errors.WrapFatal(fmt.Errorf("%w: %s", errors.ErrInvalidConfig, msg),
			"Config", "Validate", "validation")
	}

	if c.NATS.URL == "" {
		return fail("nats.url is required")
	}
	if c.NATS.Subject == "" {
		return fail("nats.subject is required")
	}
	if c.NATS.Timeout < 0 || c.NATS.AcquireTimeout < 0 {
		return fail("nats timeouts must not be negative")
	}
	if c.NATS.MaxInFlight < 0 {
		return fail("nats.max_in_flight must not be negative")
	}

	if c.LLM.Enabled && c.LLM.Model == "" {
		return fail("llm.model is required when llm is enabled")
	}
	if c.LLM.Timeout < 0 {
		return fail("llm.timeout must not be negative")
	}

	if c.Pipeline.DefaultLimit < 0 {
		return fail("pipeline.default_limit must not be negative")
	}
	switch c.Pipeline.Language {
	case "", string(ontology.LanguageNorwegian), string(ontology.LanguageEnglish):
	default:
		return fail("pipeline.language must be no or en")
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fail("logging.level must be debug, info, warn or error")
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fail("logging.format must be text or json")
	}
	return nil
}

// Language returns the configured default language.
func (c *Config) Language() ontology.Language {
	if c.Pipeline.Language == string(ontology.LanguageEnglish) {
		return ontology.LanguageEnglish
	}
	return ontology.LanguageNorwegian
}
