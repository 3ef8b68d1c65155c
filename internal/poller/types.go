// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/tmrobot-sim/internal/codec"
	"github.com/tamzrod/tmrobot-sim/internal/register"
)

// Block describes one read geometry and how to interpret it.
// Quantity is in words; bit regions carry one word per bit.
type Block struct {
	Name     string
	Region   register.Region
	Address  uint16
	Quantity uint16
	Kind     codec.Kind
}

// BlockResult is the raw and decoded result of a single read.
type BlockResult struct {
	Block

	Words  []uint16
	Values []any
}

// PollResult is a snapshot produced by one poll cycle.
type PollResult struct {
	At time.Time

	Blocks []BlockResult
	Err    error // non-nil means the poll cycle failed
}
