// internal/perf/config.go
package perf

import (
	"errors"
	"fmt"
	"time"

	"github.com/tamzrod/tmrobot-sim/internal/executor"
)

// Limits on one run.
const (
	MinCount    = 1
	MaxCount    = 100000
	MaxInterval = 60 * time.Second
)

// ErrInvalidConfig wraps every configuration rejection.
var ErrInvalidConfig = errors.New("perf: invalid config")

// Config describes one run. Interval 0 means back-to-back requests (stress mode).
type Config struct {
	Test     executor.TestKind
	Count    int
	Interval time.Duration
}

// Validate rejects nonsensical runs before anything is sent.
func (c Config) Validate() error {
	if _, err := executor.ParseTestKind(string(c.Test)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Count < MinCount || c.Count > MaxCount {
		return fmt.Errorf("%w: count %d not in %d..%d", ErrInvalidConfig, c.Count, MinCount, MaxCount)
	}
	if c.Interval < 0 || c.Interval > MaxInterval {
		return fmt.Errorf("%w: interval %s not in 0..%s", ErrInvalidConfig, c.Interval, MaxInterval)
	}
	return nil
}

// StressMode reports whether requests run with no pacing gap.
func (c Config) StressMode() bool { return c.Interval == 0 }
