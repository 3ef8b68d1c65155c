// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Client  ClientConfig  `yaml:"client"`
	Perf    PerfConfig    `yaml:"perf"`
	Monitor MonitorConfig `yaml:"monitor"`
	Log     LogConfig     `yaml:"log"`
}

// ---- SERVER (simulated controller) ----

type ServerConfig struct {
	Listen        string        `yaml:"listen"`
	UnitID        uint8         `yaml:"unit_id"` // 0 answers any unit
	Capacity      int           `yaml:"capacity"`
	IdleTimeoutMs int           `yaml:"idle_timeout_ms"`
	Latency       LatencyConfig `yaml:"latency"`
}

type LatencyConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Seed       uint64 `yaml:"seed"` // 0 = time-seeded
	ReadMinMs  int    `yaml:"read_min_ms"`
	ReadMaxMs  int    `yaml:"read_max_ms"`
	WriteMinMs int    `yaml:"write_min_ms"`
	WriteMaxMs int    `yaml:"write_max_ms"`
	BurstEvery uint64 `yaml:"burst_every"`
	BurstMinMs int    `yaml:"burst_min_ms"`
	BurstMaxMs int    `yaml:"burst_max_ms"`
}

// ---- CLIENT (tester side) ----

type ClientConfig struct {
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// ---- PERFORMANCE TEST ----

type PerfConfig struct {
	Test       string `yaml:"test"`
	Count      int    `yaml:"count"`
	IntervalMs int    `yaml:"interval_ms"`
	Seed       uint64 `yaml:"seed"`
}

// ---- MONITOR ----

type MonitorConfig struct {
	IntervalMs int      `yaml:"interval_ms"`
	Fields     []string `yaml:"fields"` // preset keys or field names; empty = all presets
}

// ---- LOGGING ----

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console | json
}

// Default returns a config that runs against a local simulator with no file.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:   "0.0.0.0:502",
			UnitID:   1,
			Capacity: 10000,
			Latency: LatencyConfig{
				Enabled:    true,
				ReadMinMs:  5,
				ReadMaxMs:  15,
				WriteMinMs: 8,
				WriteMaxMs: 20,
				BurstEvery: 50,
				BurstMinMs: 20,
				BurstMaxMs: 50,
			},
		},
		Client: ClientConfig{
			Endpoint:  "127.0.0.1:502",
			UnitID:    1,
			TimeoutMs: 1000,
		},
		Perf: PerfConfig{
			Test:       "base_coords",
			Count:      100,
			IntervalMs: 100,
		},
		Monitor: MonitorConfig{
			IntervalMs: 5000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a YAML file over Default. Missing keys keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}
