// internal/register/region.go
package register

import (
	"fmt"
	"strings"
)

// Region is one of the four independent Modbus address spaces.
type Region uint8

const (
	BinaryOutput Region = iota // coils, FC 1/5/15
	BinaryInput                // discrete inputs, FC 2
	Holding                    // holding registers, FC 3/6/16
	Input                      // input registers, FC 4
)

// Regions lists every region in a stable order.
var Regions = []Region{BinaryOutput, BinaryInput, Holding, Input}

var regionNames = [...]string{
	BinaryOutput: "coils",
	BinaryInput:  "discrete_inputs",
	Holding:      "holding",
	Input:        "input",
}

func (r Region) String() string {
	if int(r) < len(regionNames) {
		return regionNames[r]
	}
	return fmt.Sprintf("Region(%d)", uint8(r))
}

// IsBit reports whether the region is bit-addressed on the wire.
// Bits are stored one per word (0 or 1).
func (r Region) IsBit() bool {
	return r == BinaryOutput || r == BinaryInput
}

// Writable reports whether Modbus clients may write the region.
func (r Region) Writable() bool {
	return r == BinaryOutput || r == Holding
}

// Quantity limits per request (Modbus application protocol v1.1b3).
const (
	MaxReadBits  = 2000
	MaxReadRegs  = 125
	MaxWriteBits = 1968
	MaxWriteRegs = 123
)

// MaxRead is the largest quantity one read request may carry.
func (r Region) MaxRead() int {
	if r.IsBit() {
		return MaxReadBits
	}
	return MaxReadRegs
}

// MaxWrite is the largest quantity one multiple-write request may carry.
func (r Region) MaxWrite() int {
	if r.IsBit() {
		return MaxWriteBits
	}
	return MaxWriteRegs
}

// ReadFC is the Modbus function code that reads the region.
func (r Region) ReadFC() uint8 {
	switch r {
	case BinaryOutput:
		return 1
	case BinaryInput:
		return 2
	case Holding:
		return 3
	default:
		return 4
	}
}

// ParseRegion accepts region names plus the usual aliases and read FCs.
func ParseRegion(s string) (Region, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "coils", "coil", "binary_output", "do", "1":
		return BinaryOutput, nil
	case "discrete_inputs", "discrete_input", "binary_input", "di", "2":
		return BinaryInput, nil
	case "holding", "holding_registers", "hr", "3":
		return Holding, nil
	case "input", "input_registers", "ir", "4":
		return Input, nil
	}
	return 0, fmt.Errorf("register: unknown region %q", s)
}
