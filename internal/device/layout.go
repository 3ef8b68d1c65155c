// internal/device/layout.go
package device

import (
	"github.com/tamzrod/tmrobot-sim/internal/codec"
	"github.com/tamzrod/tmrobot-sim/internal/register"
)

// TM robot Modbus layout.
// These addresses are what real controllers expose and MUST NOT be configurable.

// ---- BANK GEOMETRY ----

// DefaultCapacity is the number of words per region. It must cover UserAreaEnd.
const DefaultCapacity = 10000

// ---- COORDINATE BLOCKS (input registers, Float32 x6) ----

const (
	AddrBaseCoords  = 7001 // X, Y, Z, Rx, Ry, Rz
	AddrJointAngles = 7013 // J1..J6
	AddrToolCoords  = 7025 // X, Y, Z, Rx, Ry, Rz

	CoordValues = 6
)

// ---- ROBOT FLAGS (discrete inputs) ----

const (
	AddrRobotLink      = 7200
	AddrError          = 7201
	AddrProjectRunning = 7202
	AddrEStop          = 7208
)

// ---- ROBOT STATE (input registers) ----

const (
	AddrRobotState    = 7215
	AddrOperationMode = 7216
)

// ---- LIGHT (coil) ----

const AddrLight = 7206

// ---- CONTROL BOX I/O (discrete inputs + coils) ----

const ControlIOBits = 16

// ---- USER DEFINE AREA (holding registers, R/W) ----

const (
	UserAreaStart = 9000
	UserAreaWords = 1000
	UserAreaEnd   = UserAreaStart + UserAreaWords - 1
)

// Field is one named entry of the semantic map.
// Count is the number of values; the field spans Count*Kind.Words() words.
// Seed holds Count values typed for Kind (see codec.Encode); nil means zeros.
type Field struct {
	Name    string
	Region  register.Region
	Address uint16
	Kind    codec.Kind
	Count   int
	Seed    []any
}

// Words is the register span of the field.
func (f Field) Words() int { return f.Count * f.Kind.Words() }

// End is the last address of the field (inclusive).
func (f Field) End() int { return int(f.Address) + f.Words() - 1 }

// clone detaches Seed from the package table.
func (f Field) clone() Field {
	if f.Seed != nil {
		f.Seed = append([]any(nil), f.Seed...)
	}
	return f
}

// Override replaces one seeded word after all fields are applied.
type Override struct {
	Region  register.Region
	Address uint16
	Value   uint16
}

// Field names.
const (
	FieldBaseCoords     = "base_coords"
	FieldJointAngles    = "joint_angles"
	FieldToolCoords     = "tool_coords"
	FieldRobotLink      = "robot_link"
	FieldError          = "error"
	FieldProjectRunning = "project_running"
	FieldEStop          = "estop"
	FieldRobotState     = "robot_state"
	FieldOperationMode  = "operation_mode"
	FieldLight          = "light"
	FieldControlDI      = "control_di"
	FieldControlDO      = "control_do"
	FieldUserArea       = "user_area"
)

var fields = []Field{
	{
		Name: FieldBaseCoords, Region: register.Input, Address: AddrBaseCoords,
		Kind: codec.Float32, Count: CoordValues,
		Seed: floats(350.5, -120.3, 450.8, 0.0, 90.0, -45.0),
	},
	{
		Name: FieldJointAngles, Region: register.Input, Address: AddrJointAngles,
		Kind: codec.Float32, Count: CoordValues,
		Seed: floats(0.0, -30.0, 45.0, 0.0, 75.0, 0.0),
	},
	{
		Name: FieldToolCoords, Region: register.Input, Address: AddrToolCoords,
		Kind: codec.Float32, Count: CoordValues,
		Seed: floats(355.2, -118.7, 455.3, 2.1, 91.5, -43.8),
	},

	{Name: FieldRobotLink, Region: register.BinaryInput, Address: AddrRobotLink, Kind: codec.Bool, Count: 1, Seed: []any{true}},
	{Name: FieldError, Region: register.BinaryInput, Address: AddrError, Kind: codec.Bool, Count: 1, Seed: []any{false}},
	{Name: FieldProjectRunning, Region: register.BinaryInput, Address: AddrProjectRunning, Kind: codec.Bool, Count: 1, Seed: []any{false}},
	{Name: FieldEStop, Region: register.BinaryInput, Address: AddrEStop, Kind: codec.Bool, Count: 1, Seed: []any{false}},

	{Name: FieldRobotState, Region: register.Input, Address: AddrRobotState, Kind: codec.UInt16, Count: 1, Seed: []any{uint16(0)}},
	{Name: FieldOperationMode, Region: register.Input, Address: AddrOperationMode, Kind: codec.UInt16, Count: 1, Seed: []any{uint16(0)}},

	{Name: FieldLight, Region: register.BinaryOutput, Address: AddrLight, Kind: codec.Bool, Count: 1, Seed: []any{false}},

	{
		Name: FieldControlDI, Region: register.BinaryInput, Address: 0,
		Kind: codec.Bool, Count: ControlIOBits, Seed: alternating(ControlIOBits),
	},
	{
		Name: FieldControlDO, Region: register.BinaryOutput, Address: 0,
		Kind: codec.Bool, Count: ControlIOBits,
	},

	{
		Name: FieldUserArea, Region: register.Holding, Address: UserAreaStart,
		Kind: codec.UInt16, Count: UserAreaWords, Seed: sequence(UserAreaWords),
	},
}

// 67890 does not fit a register; controllers store it modulo 2^16.
var overrides = []Override{
	{Region: register.Holding, Address: UserAreaStart + 0, Value: 12345},
	{Region: register.Holding, Address: UserAreaStart + 1, Value: 67890 & 0xFFFF},
	{Region: register.Holding, Address: UserAreaStart + 10, Value: 0xABCD},
	{Region: register.Holding, Address: UserAreaStart + 20, Value: 0x1234},
	{Region: register.Holding, Address: UserAreaStart + 100, Value: 65535},
}

func floats(vs ...float32) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

// alternating yields false, true, false, ...
func alternating(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = i%2 == 1
	}
	return out
}

// sequence yields 0, 1, 2, ...
func sequence(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = uint16(i)
	}
	return out
}
