// internal/poller/builder.go
package poller

import (
	"fmt"
	"time"

	"github.com/tamzrod/tmrobot-sim/internal/device"
)

// BlockFromField reads a whole device field.
func BlockFromField(f device.Field) Block {
	return Block{
		Name:     f.Name,
		Region:   f.Region,
		Address:  f.Address,
		Quantity: uint16(f.Words()),
		Kind:     f.Kind,
	}
}

// BlocksFor maps fields to blocks in order.
func BlocksFor(fields []device.Field) []Block {
	blocks := make([]Block, 0, len(fields))
	for _, f := range fields {
		blocks = append(blocks, BlockFromField(f))
	}
	return blocks
}

// Resolve looks a name up as a preset first, then as a field name.
func Resolve(name string) (device.Field, error) {
	if f, ok := device.Preset(name); ok {
		return f, nil
	}
	if f, ok := device.Lookup(name); ok {
		return f, nil
	}
	return device.Field{}, fmt.Errorf("poller: unknown preset or field %q", name)
}

// Build constructs a Poller over named presets or semantic fields.
func Build(names []string, interval time.Duration, client Client) (*Poller, error) {
	fields := make([]device.Field, 0, len(names))
	for _, name := range names {
		f, err := Resolve(name)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}

	return New(Config{Interval: interval, Blocks: BlocksFor(fields)}, client)
}
