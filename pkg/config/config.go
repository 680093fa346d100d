// Package config loads Gemmy's process configuration from a TOML file,
// mirroring the server/log/event-bus property grouping of the original
// engine's environment-driven configuration loader.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// ServerConfig controls the gRPC and WebSocket listener endpoints.
type ServerConfig struct {
	Ticker         string `toml:"ticker"`
	GRPCAddr       string `toml:"grpc_addr"`
	WebsocketAddr  string `toml:"websocket_addr"`
	MetricsAddr    string `toml:"metrics_addr"`
	DepthLevels    int    `toml:"depth_levels"`
}

// LogConfig holds the process logger settings. Name is the name the
// logger is created with; Level is decoded but not applied, and the
// logger writes every level.
type LogConfig struct {
	Level string `toml:"level"`
	Name  string `toml:"name"`
}

// EventBusConfig controls the NATS connection and subject prefix used to
// publish fill events.
type EventBusConfig struct {
	NatsURL       string `toml:"nats_url"`
	SubjectPrefix string `toml:"subject_prefix"`
}

// MetricsConfig controls whether and how Prometheus metrics are served.
type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

// Config is the full set of properties Gemmy's bootstrap reads before
// constructing its components.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
	EventBus EventBusConfig `toml:"eventbus"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

// Default returns the configuration Gemmy boots with when no file is
// supplied, suitable for local development.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Ticker:        "GEM-USD",
			GRPCAddr:      ":7000",
			WebsocketAddr: ":7001",
			MetricsAddr:   ":7002",
			DepthLevels:   20,
		},
		Log: LogConfig{
			Level: "info",
			Name:  "gemmy",
		},
		EventBus: EventBusConfig{
			NatsURL:       "nats://127.0.0.1:4222",
			SubjectPrefix: "gemmy.events",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Load reads and decodes a TOML file at path into a Config seeded with
// Default() values, so an incomplete file only overrides the sections it
// specifies.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: failed to load %s: %w", path, err)
	}
	return cfg, nil
}
