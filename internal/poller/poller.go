// internal/poller/poller.go
package poller

import (
	"errors"
	"fmt"
	"time"

	"github.com/tamzrod/tmrobot-sim/internal/codec"
	"github.com/tamzrod/tmrobot-sim/internal/register"
)

// Client abstracts the Modbus read the poller needs.
type Client interface {
	Read(region register.Region, addr, qty uint16) ([]uint16, error)
}

// Config is the minimal runtime config the poller needs.
type Config struct {
	Interval time.Duration
	Blocks   []Block
}

// Poller is a dumb, clock-driven reader.
type Poller struct {
	cfg    Config
	client Client
}

// New creates a poller with immutable config.
func New(cfg Config, client Client) (*Poller, error) {
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if len(cfg.Blocks) == 0 {
		return nil, errors.New("poller: at least one block required")
	}
	for _, b := range cfg.Blocks {
		if b.Quantity == 0 {
			return nil, fmt.Errorf("poller: block %q has zero quantity", b.Name)
		}
		if int(b.Quantity)%b.Kind.Words() != 0 {
			return nil, fmt.Errorf("poller: block %q: %d words is not a whole number of %s values",
				b.Name, b.Quantity, b.Kind)
		}
	}
	return &Poller{cfg: cfg, client: client}, nil
}

// PollOnce performs exactly one poll cycle.
// All-or-nothing: any failure aborts the cycle.
func (p *Poller) PollOnce() PollResult {
	res := PollResult{At: time.Now()}

	blocks := make([]BlockResult, 0, len(p.cfg.Blocks))
	for _, b := range p.cfg.Blocks {
		words, err := p.read(b)
		if err != nil {
			res.Err = fmt.Errorf("poller: %s: %w", b.Name, err)
			return res
		}

		values, err := codec.DecodeAll(b.Kind, words)
		if err != nil {
			res.Err = fmt.Errorf("poller: %s: %w", b.Name, err)
			return res
		}

		blocks = append(blocks, BlockResult{Block: b, Words: words, Values: values})
	}

	// Commit only if all reads succeeded
	res.Blocks = blocks
	return res
}

// read fetches a block in requests no larger than the region allows.
// Chunks end on value boundaries.
func (p *Poller) read(b Block) ([]uint16, error) {
	limit := b.Region.MaxRead()
	limit -= limit % b.Kind.Words()

	words := make([]uint16, 0, b.Quantity)
	for done := 0; done < int(b.Quantity); {
		n := min(limit, int(b.Quantity)-done)
		chunk, err := p.client.Read(b.Region, b.Address+uint16(done), uint16(n))
		if err != nil {
			return nil, err
		}
		words = append(words, chunk...)
		done += n
	}
	return words, nil
}
