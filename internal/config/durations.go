// internal/config/durations.go
package config

import (
	"time"

	"github.com/tamzrod/tmrobot-sim/internal/latency"
)

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }

func (s ServerConfig) IdleTimeout() time.Duration { return ms(s.IdleTimeoutMs) }

func (c ClientConfig) Timeout() time.Duration { return ms(c.TimeoutMs) }

func (p PerfConfig) Interval() time.Duration { return ms(p.IntervalMs) }

func (m MonitorConfig) Interval() time.Duration { return ms(m.IntervalMs) }

// Model converts the latency section into the simulator's delay shape.
func (l LatencyConfig) Model() latency.Config {
	return latency.Config{
		Read:       latency.Range{Min: ms(l.ReadMinMs), Max: ms(l.ReadMaxMs)},
		Write:      latency.Range{Min: ms(l.WriteMinMs), Max: ms(l.WriteMaxMs)},
		BurstEvery: l.BurstEvery,
		Burst:      latency.Range{Min: ms(l.BurstMinMs), Max: ms(l.BurstMaxMs)},
	}
}
