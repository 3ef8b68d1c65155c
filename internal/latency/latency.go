// internal/latency/latency.go
package latency

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Op is the kind of bank access a delay is computed for.
type Op uint8

const (
	Read Op = iota
	Write
)

func (o Op) String() string {
	if o == Write {
		return "write"
	}
	return "read"
}

// Model produces the delay applied to one bank access.
// reads and writes are the bank's counters including the current access.
type Model interface {
	NextDelay(op Op, reads, writes uint64) time.Duration
}

// Range is an inclusive [Min, Max] duration interval.
type Range struct {
	Min time.Duration
	Max time.Duration
}

// Config is the shape of the Uniform model.
type Config struct {
	Read  Range
	Write Range

	// Every BurstEvery-th read adds a draw from Burst. 0 disables bursts.
	BurstEvery uint64
	Burst      Range
}

// Reference is the delay shape of the real controller link.
var Reference = Config{
	Read:       Range{Min: 5 * time.Millisecond, Max: 15 * time.Millisecond},
	Write:      Range{Min: 8 * time.Millisecond, Max: 20 * time.Millisecond},
	BurstEvery: 50,
	Burst:      Range{Min: 20 * time.Millisecond, Max: 50 * time.Millisecond},
}

// Uniform draws each delay uniformly from its configured range.
// Safe for concurrent use.
type Uniform struct {
	cfg Config

	mu  sync.Mutex
	rng *rand.Rand
}

// NewUniform builds a Uniform model with a fixed seed.
// Identical seeds produce identical delay sequences.
func NewUniform(cfg Config, seed uint64) *Uniform {
	return &Uniform{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (u *Uniform) NextDelay(op Op, reads, writes uint64) time.Duration {
	u.mu.Lock()
	defer u.mu.Unlock()

	if op == Write {
		return u.draw(u.cfg.Write)
	}

	d := u.draw(u.cfg.Read)
	if u.cfg.BurstEvery > 0 && reads > 0 && reads%u.cfg.BurstEvery == 0 {
		d += u.draw(u.cfg.Burst)
	}
	return d
}

func (u *Uniform) draw(r Range) time.Duration {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + time.Duration(u.rng.Int64N(int64(r.Max-r.Min)+1))
}

// Fixed returns the same delay for every access of a kind.
type Fixed struct {
	Read  time.Duration
	Write time.Duration
}

func (f Fixed) NextDelay(op Op, _, _ uint64) time.Duration {
	if op == Write {
		return f.Write
	}
	return f.Read
}

// None never delays.
var None Model = Fixed{}
