// Package config loads session configuration from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dan-solli/cognis/pkg/citation"
	"github.com/dan-solli/cognis/pkg/graph"
)

// Environment variables that override file values.
const (
	EnvActor           = "COGNIS_ACTOR"
	EnvAuditDB         = "COGNIS_AUDIT_DB"
	EnvResponseLatency = "COGNIS_RESPONSE_LATENCY"
	EnvTraceFile       = "COGNIS_TRACE_FILE"
	EnvMetrics         = "COGNIS_METRICS"
	EnvDebug           = "COGNIS_DEBUG"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds configuration for a cognis session
type Config struct {
	// Actor is the investigator recorded on audit entries
	Actor string `yaml:"actor"`

	// AuditDB is the SQLite path for durable audit entries; empty keeps the
	// trail in memory only
	AuditDB string `yaml:"audit_db"`

	// ResponseLatency is the simulated backend delay per resolution
	ResponseLatency time.Duration `yaml:"response_latency"`

	// TraceFile receives JSONL operation traces; empty disables tracing
	TraceFile string `yaml:"trace_file"`

	// Metrics enables the Prometheus collector
	Metrics bool `yaml:"metrics"`

	// SeedAudit records the session-opening entries on start
	SeedAudit bool `yaml:"seed_audit"`

	Sizing graph.Sizing `yaml:"sizing"`

	Debug bool `yaml:"debug"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Actor:           "Detective Sarah Chen",
		ResponseLatency: citation.DefaultLatency,
		SeedAudit:       true,
		Sizing:          graph.DefaultSizing,
	}
}

// Load reads path (if non-empty and present), then applies environment
// overrides. A .env file in the working directory is honoured.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	// Missing .env is the normal case.
	_ = godotenv.Load()

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v, ok := os.LookupEnv(EnvActor); ok {
		c.Actor = v
	}
	if v, ok := os.LookupEnv(EnvAuditDB); ok {
		c.AuditDB = v
	}
	if v, ok := os.LookupEnv(EnvTraceFile); ok {
		c.TraceFile = v
	}
	if v, ok := os.LookupEnv(EnvResponseLatency); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, EnvResponseLatency, err)
		}
		c.ResponseLatency = d
	}
	for key, dst := range map[string]*bool{EnvMetrics: &c.Metrics, EnvDebug: &c.Debug} {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, key, err)
		}
		*dst = b
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Actor) == "" {
		return fmt.Errorf("%w: actor is required", ErrInvalid)
	}
	if c.ResponseLatency < 0 {
		return fmt.Errorf("%w: response_latency must be >= 0, got %s", ErrInvalid, c.ResponseLatency)
	}
	if c.Sizing.Base <= 0 {
		return fmt.Errorf("%w: sizing.base must be positive", ErrInvalid)
	}
	if c.Sizing.PerConnection < 0 {
		return fmt.Errorf("%w: sizing.per_connection must be >= 0", ErrInvalid)
	}
	if c.Sizing.Max != 0 && c.Sizing.Max < c.Sizing.Base {
		return fmt.Errorf("%w: sizing.max must be 0 (uncapped) or >= sizing.base", ErrInvalid)
	}
	return nil
}
