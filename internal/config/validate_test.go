// internal/config/validate_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// helper to mutate a default config quickly
func with(mut func(c *Config)) *Config {
	c := Default()
	mut(c)
	return c
}

// ---- tests ----

func TestValidate_DefaultIsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := map[string]*Config{
		"empty listen":       with(func(c *Config) { c.Server.Listen = " " }),
		"server unit 248":    with(func(c *Config) { c.Server.UnitID = 248 }),
		"capacity too small": with(func(c *Config) { c.Server.Capacity = 8000 }),
		"read min > max":     with(func(c *Config) { c.Server.Latency.ReadMinMs = 20 }),
		"negative burst":     with(func(c *Config) { c.Server.Latency.BurstMinMs = -1 }),
		"empty endpoint":     with(func(c *Config) { c.Client.Endpoint = "" }),
		"client unit 0":      with(func(c *Config) { c.Client.UnitID = 0 }),
		"count 0":            with(func(c *Config) { c.Perf.Count = 0 }),
		"count 100001":       with(func(c *Config) { c.Perf.Count = 100001 }),
		"interval 60001":     with(func(c *Config) { c.Perf.IntervalMs = 60001 }),
		"negative interval":  with(func(c *Config) { c.Perf.IntervalMs = -1 }),
		"unknown log format": with(func(c *Config) { c.Log.Format = "xml" }),
	}

	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			if err := Validate(cfg); err == nil {
				t.Fatalf("expected error, got nil")
			}
		})
	}
}

func TestValidate_BoundsAccepted(t *testing.T) {
	cfg := with(func(c *Config) {
		c.Server.UnitID = 0
		c.Server.Capacity = 0
		c.Perf.Count = 100000
		c.Perf.IntervalMs = 0
	})

	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_DoesNotMutate(t *testing.T) {
	cfg := with(func(c *Config) { c.Log.Format = "JSON" })
	require.NoError(t, Validate(cfg))
	assert.Equal(t, "JSON", cfg.Log.Format)
}

func TestNormalize(t *testing.T) {
	cfg := with(func(c *Config) {
		c.Server.Capacity = 0
		c.Monitor.IntervalMs = 0
		c.Perf.Test = " Base_Coords "
		c.Log.Format = "text"
		c.Log.Level = "DEBUG"
	})
	require.NoError(t, Validate(cfg))
	Normalize(cfg)

	assert.Equal(t, MinCapacity, cfg.Server.Capacity)
	assert.Equal(t, 5*time.Second, cfg.Monitor.Interval())
	assert.Equal(t, "base_coords", cfg.Perf.Test)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tmsim.yaml")
	doc := `
client:
  endpoint: 10.0.0.5:502
perf:
  test: stress
  count: 500
  interval_ms: 0
server:
  latency:
    enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.5:502", cfg.Client.Endpoint)
	assert.Equal(t, uint8(1), cfg.Client.UnitID, "default kept")
	assert.Equal(t, "stress", cfg.Perf.Test)
	assert.Equal(t, 500, cfg.Perf.Count)
	assert.Zero(t, cfg.Perf.Interval())
	assert.False(t, cfg.Server.Latency.Enabled)
	assert.Equal(t, 15, cfg.Server.Latency.ReadMaxMs, "default kept")
	require.NoError(t, Validate(cfg))
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("perf: [unclosed"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestLatencyModel(t *testing.T) {
	m := Default().Server.Latency.Model()
	assert.Equal(t, 5*time.Millisecond, m.Read.Min)
	assert.Equal(t, 20*time.Millisecond, m.Write.Max)
	assert.Equal(t, uint64(50), m.BurstEvery)
	assert.Equal(t, 50*time.Millisecond, m.Burst.Max)
}
