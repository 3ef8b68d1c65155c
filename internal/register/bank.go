// internal/register/bank.go
package register

import (
	"sync"
	"time"

	"github.com/tamzrod/tmrobot-sim/internal/fault"
	"github.com/tamzrod/tmrobot-sim/internal/latency"
)

// Bank is a fixed-size, zero-initialized array of 16-bit words.
//
// Every Read/Write holds the bank lock for the whole access, including the
// simulated delay, so concurrent callers observe the delay per request.
// Other banks are unaffected.
type Bank struct {
	region Region

	mu     sync.Mutex
	words  []uint16
	reads  uint64
	writes uint64

	model latency.Model
	sleep func(time.Duration)
}

// Option customizes a Bank.
type Option func(*Bank)

// WithLatency injects the delay model. Default is latency.None.
func WithLatency(m latency.Model) Option {
	return func(b *Bank) {
		if m != nil {
			b.model = m
		}
	}
}

// WithSleep replaces time.Sleep, mainly for tests.
func WithSleep(fn func(time.Duration)) Option {
	return func(b *Bank) {
		if fn != nil {
			b.sleep = fn
		}
	}
}

// NewBank allocates a bank of capacity words.
func NewBank(region Region, capacity int, opts ...Option) *Bank {
	if capacity < 0 {
		capacity = 0
	}
	b := &Bank{
		region: region,
		words:  make([]uint16, capacity),
		model:  latency.None,
		sleep:  time.Sleep,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

func (b *Bank) Region() Region { return b.region }

func (b *Bank) Capacity() int { return len(b.words) }

func (b *Bank) check(op string, addr, count int) error {
	if count <= 0 {
		return fault.Errorf(fault.InvalidLength, op, "%s count %d", b.region, count)
	}
	if addr < 0 || addr+count > len(b.words) {
		return fault.Errorf(fault.OutOfRange, op,
			"%s addr=%d count=%d capacity=%d", b.region, addr, count, len(b.words))
	}
	return nil
}

// Read returns count words starting at addr.
// Rejected accesses are neither counted nor delayed.
func (b *Bank) Read(addr, count int) ([]uint16, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.check("read", addr, count); err != nil {
		return nil, err
	}

	b.reads++
	b.delay(latency.Read)

	out := make([]uint16, count)
	copy(out, b.words[addr:addr+count])
	return out, nil
}

// Write stores words at addr. Whole-or-nothing.
func (b *Bank) Write(addr int, words []uint16) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.check("write", addr, len(words)); err != nil {
		return err
	}

	b.writes++
	b.delay(latency.Write)

	copy(b.words[addr:], words)
	return nil
}

func (b *Bank) delay(op latency.Op) {
	if d := b.model.NextDelay(op, b.reads, b.writes); d > 0 {
		b.sleep(d)
	}
}

// Seed stores words without delay or counting. Used to build the device image.
func (b *Bank) Seed(addr int, words []uint16) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.check("seed", addr, len(words)); err != nil {
		return err
	}
	copy(b.words[addr:], words)
	return nil
}

// Snapshot copies the whole bank without delay or counting.
func (b *Bank) Snapshot() []uint16 {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]uint16, len(b.words))
	copy(out, b.words)
	return out
}

// Counters returns the read and write counts so far.
func (b *Bank) Counters() (reads, writes uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reads, b.writes
}
