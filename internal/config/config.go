// Package config loads the YAML configuration shared by coordinate-server
// and coordconv, with environment overrides on top.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/signalsfoundry/coordinate-engine/internal/logging"
	"github.com/signalsfoundry/coordinate-engine/internal/observability"
	"github.com/signalsfoundry/coordinate-engine/kb"
)

// ServerConfig configures the gRPC listener.
type ServerConfig struct {
	GRPCAddr string `yaml:"grpc_addr"`
	// MaxBatch bounds the number of coordinates in one ConvertBatch call.
	MaxBatch int `yaml:"max_batch"`
}

// MetricsConfig configures the Prometheus endpoint. An empty address
// disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// SitesConfig seeds the site catalog and optionally persists it.
type SitesConfig struct {
	// DB is a SQLite path; empty keeps the catalog in memory only.
	DB   string    `yaml:"db"`
	Seed []kb.Site `yaml:"seed"`
}

// Config is the top-level structure of the YAML file.
type Config struct {
	Server  ServerConfig                `yaml:"server"`
	Metrics MetricsConfig               `yaml:"metrics"`
	Logging logging.Config              `yaml:"logging"`
	Tracing observability.TracingConfig `yaml:"tracing"`
	Sites   SitesConfig                 `yaml:"sites"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server:  ServerConfig{GRPCAddr: ":50051", MaxBatch: 10000},
		Metrics: MetricsConfig{Addr: ":9090"},
		Logging: logging.Config{Level: "info", Format: "text"},
		Tracing: observability.DefaultTracingConfig(),
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := Parse(data, &cfg); err != nil {
			return Config{}, err
		}
	}
	cfg = ApplyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, keeping fields the document does not set.
// Unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// ApplyEnv overlays COORD_GRPC_ADDR, COORD_METRICS_ADDR, COORD_SITES_DB,
// LOG_LEVEL, LOG_FORMAT and the tracing variables.
func ApplyEnv(cfg Config) Config {
	if v := os.Getenv("COORD_GRPC_ADDR"); v != "" {
		cfg.Server.GRPCAddr = v
	}
	if v, ok := os.LookupEnv("COORD_METRICS_ADDR"); ok {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("COORD_SITES_DB"); v != "" {
		cfg.Sites.DB = v
	}
	cfg.Logging = logging.ConfigFromEnv(cfg.Logging)
	cfg.Tracing = observability.TracingConfigFromEnv(cfg.Tracing)
	return cfg
}

// Validate checks addresses and seed sites.
func (c Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Server.GRPCAddr); err != nil {
		return fmt.Errorf("server.grpc_addr %q: %w", c.Server.GRPCAddr, err)
	}
	if c.Metrics.Addr != "" {
		if _, _, err := net.SplitHostPort(c.Metrics.Addr); err != nil {
			return fmt.Errorf("metrics.addr %q: %w", c.Metrics.Addr, err)
		}
	}
	if c.Server.MaxBatch <= 0 {
		return fmt.Errorf("server.max_batch must be positive, got %d", c.Server.MaxBatch)
	}
	seen := make(map[string]bool, len(c.Sites.Seed))
	for i, s := range c.Sites.Seed {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("sites.seed[%d]: %w", i, err)
		}
		if seen[s.ID] {
			return fmt.Errorf("sites.seed[%d]: duplicate id %q", i, s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}
