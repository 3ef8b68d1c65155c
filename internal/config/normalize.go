// internal/config/normalize.go
package config

import "strings"

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Capacity == 0 {
		cfg.Server.Capacity = MinCapacity
	}

	// Monitor falls back to the controller refresh cadence.
	if cfg.Monitor.IntervalMs == 0 {
		cfg.Monitor.IntervalMs = 5000
	}

	cfg.Perf.Test = strings.ToLower(strings.TrimSpace(cfg.Perf.Test))
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	if cfg.Log.Format == "" || cfg.Log.Format == "text" {
		cfg.Log.Format = "console"
	}
}
