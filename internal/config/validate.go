// internal/config/validate.go
package config

import (
	"errors"
	"fmt"
	"strings"
)

// Layout limits the configuration must respect.
const (
	MinCapacity = 10000

	MinUnitID = 1
	MaxUnitID = 247

	MinCount      = 1
	MaxCount      = 100000
	MaxIntervalMs = 60000
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil config")
	}

	// ------------------------------------------------------------
	// SERVER
	// ------------------------------------------------------------

	s := cfg.Server
	if strings.TrimSpace(s.Listen) == "" {
		return errors.New("server.listen must not be empty")
	}
	if s.UnitID != 0 && (s.UnitID < MinUnitID || s.UnitID > MaxUnitID) {
		return fmt.Errorf("server.unit_id %d out of range (0 or %d..%d)", s.UnitID, MinUnitID, MaxUnitID)
	}
	if s.Capacity != 0 && s.Capacity < MinCapacity {
		return fmt.Errorf("server.capacity %d too small for the device layout (min %d)", s.Capacity, MinCapacity)
	}
	if s.IdleTimeoutMs < 0 {
		return fmt.Errorf("server.idle_timeout_ms must be >= 0, got %d", s.IdleTimeoutMs)
	}

	l := s.Latency
	if err := checkRange("server.latency.read", l.ReadMinMs, l.ReadMaxMs); err != nil {
		return err
	}
	if err := checkRange("server.latency.write", l.WriteMinMs, l.WriteMaxMs); err != nil {
		return err
	}
	if err := checkRange("server.latency.burst", l.BurstMinMs, l.BurstMaxMs); err != nil {
		return err
	}

	// ------------------------------------------------------------
	// CLIENT
	// ------------------------------------------------------------

	c := cfg.Client
	if strings.TrimSpace(c.Endpoint) == "" {
		return errors.New("client.endpoint must not be empty")
	}
	if c.UnitID < MinUnitID || c.UnitID > MaxUnitID {
		return fmt.Errorf("client.unit_id %d out of range (%d..%d)", c.UnitID, MinUnitID, MaxUnitID)
	}
	if c.TimeoutMs < 0 {
		return fmt.Errorf("client.timeout_ms must be >= 0, got %d", c.TimeoutMs)
	}

	// ------------------------------------------------------------
	// PERF
	// ------------------------------------------------------------

	p := cfg.Perf
	if p.Count < MinCount || p.Count > MaxCount {
		return fmt.Errorf("perf.count %d out of range (%d..%d)", p.Count, MinCount, MaxCount)
	}
	if p.IntervalMs < 0 || p.IntervalMs > MaxIntervalMs {
		return fmt.Errorf("perf.interval_ms %d out of range (0..%d)", p.IntervalMs, MaxIntervalMs)
	}

	// ------------------------------------------------------------
	// MONITOR
	// ------------------------------------------------------------

	if cfg.Monitor.IntervalMs < 0 {
		return fmt.Errorf("monitor.interval_ms must be >= 0, got %d", cfg.Monitor.IntervalMs)
	}

	// ------------------------------------------------------------
	// LOG
	// ------------------------------------------------------------

	switch strings.ToLower(cfg.Log.Format) {
	case "", "console", "text", "json":
	default:
		return fmt.Errorf("log.format %q not supported (console|json)", cfg.Log.Format)
	}

	return nil
}

func checkRange(name string, min, max int) error {
	if min < 0 || max < 0 {
		return fmt.Errorf("%s: negative bound (%d..%d)", name, min, max)
	}
	if min > max {
		return fmt.Errorf("%s: min %d > max %d", name, min, max)
	}
	return nil
}
