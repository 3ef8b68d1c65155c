// internal/device/image.go
package device

import (
	"fmt"
	"sort"

	"github.com/tamzrod/tmrobot-sim/internal/codec"
	"github.com/tamzrod/tmrobot-sim/internal/latency"
	"github.com/tamzrod/tmrobot-sim/internal/register"
)

// Config controls how banks are built. The layout itself is fixed.
type Config struct {
	Capacity int
	Latency  latency.Model
	Options  []register.Option
}

// Image is the seeded register memory of one simulated robot.
type Image struct {
	banks map[register.Region]*register.Bank
}

// Build allocates one bank per region and seeds the semantic layout.
// Building twice yields identical bank contents.
func Build(cfg Config) (*Image, error) {
	if cfg.Capacity == 0 {
		cfg.Capacity = DefaultCapacity
	}

	opts := append([]register.Option{register.WithLatency(cfg.Latency)}, cfg.Options...)

	img := &Image{banks: make(map[register.Region]*register.Bank, len(register.Regions))}
	for _, r := range register.Regions {
		img.banks[r] = register.NewBank(r, cfg.Capacity, opts...)
	}

	for _, f := range fields {
		if err := img.seedField(f); err != nil {
			return nil, err
		}
	}

	for _, o := range overrides {
		if err := img.banks[o.Region].Seed(int(o.Address), []uint16{o.Value}); err != nil {
			return nil, fmt.Errorf("device: override %s@%d: %w", o.Region, o.Address, err)
		}
	}

	return img, nil
}

func (img *Image) seedField(f Field) error {
	words := make([]uint16, 0, f.Words())
	for i := 0; i < f.Count; i++ {
		if i >= len(f.Seed) {
			words = append(words, make([]uint16, f.Kind.Words())...)
			continue
		}
		w, err := codec.Encode(f.Kind, f.Seed[i])
		if err != nil {
			return fmt.Errorf("device: field %s value %d: %w", f.Name, i, err)
		}
		words = append(words, w...)
	}

	if err := img.banks[f.Region].Seed(int(f.Address), words); err != nil {
		return fmt.Errorf("device: field %s: %w", f.Name, err)
	}
	return nil
}

// Bank returns the bank backing a region.
func (img *Image) Bank(r register.Region) *register.Bank {
	return img.banks[r]
}

// Snapshot copies all banks, bypassing latency.
func (img *Image) Snapshot() map[register.Region][]uint16 {
	out := make(map[register.Region][]uint16, len(img.banks))
	for r, b := range img.banks {
		out[r] = b.Snapshot()
	}
	return out
}

// Fields is the layout this image was seeded from.
func (img *Image) Fields() []Field { return Fields() }

// Fields returns a copy of the semantic map in declaration order.
func Fields() []Field {
	out := make([]Field, len(fields))
	for i, f := range fields {
		out[i] = f.clone()
	}
	return out
}

// Lookup resolves a field by name.
func Lookup(name string) (Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f.clone(), true
		}
	}
	return Field{}, false
}

// Overrides returns a copy of the post-seed overrides.
func Overrides() []Override {
	out := make([]Override, len(overrides))
	copy(out, overrides)
	return out
}

// ---- PRESETS ----

// Presets are the quick read geometries an operator uses against a controller.
// They are read-only views and carry no seed.
var presets = map[string]Field{
	"base":       {Name: "Base Coordinates", Region: register.Input, Address: AddrBaseCoords, Kind: codec.Float32, Count: CoordValues},
	"tool":       {Name: "Tool Coordinates", Region: register.Input, Address: AddrToolCoords, Kind: codec.Float32, Count: CoordValues},
	"joint":      {Name: "Joint Angles", Region: register.Input, Address: AddrJointAngles, Kind: codec.Float32, Count: CoordValues},
	"status":     {Name: "Robot Status", Region: register.BinaryInput, Address: AddrRobotLink, Kind: codec.Bool, Count: 4},
	"light":      {Name: "Light Control", Region: register.BinaryOutput, Address: AddrLight, Kind: codec.Bool, Count: 1},
	"userdefine": {Name: "User Define Area", Region: register.Holding, Address: UserAreaStart, Kind: codec.UInt16, Count: 10},
	"control_di": {Name: "Control Box DI", Region: register.BinaryInput, Address: 0, Kind: codec.Bool, Count: ControlIOBits},
	"control_do": {Name: "Control Box DO", Region: register.BinaryOutput, Address: 0, Kind: codec.Bool, Count: ControlIOBits},
}

// Preset resolves a preset by key.
func Preset(key string) (Field, bool) {
	f, ok := presets[key]
	return f, ok
}

// PresetKeys lists preset keys sorted.
func PresetKeys() []string {
	keys := make([]string, 0, len(presets))
	for k := range presets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
