// internal/codec/codec.go
package codec

import (
	"fmt"
	"math"
	"strings"

	"github.com/tamzrod/tmrobot-sim/internal/fault"
)

// Kind is the semantic type stored in one or two registers.
type Kind uint8

const (
	Raw Kind = iota
	Bool
	Int16
	UInt16
	Int32
	UInt32
	Float32
)

var kindNames = [...]string{
	Raw:     "Raw",
	Bool:    "Bool",
	Int16:   "Int16",
	UInt16:  "UInt16",
	Int32:   "Int32",
	UInt32:  "UInt32",
	Float32: "Float32",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Words returns how many 16-bit registers one value of this kind occupies.
func (k Kind) Words() int {
	switch k {
	case Int32, UInt32, Float32:
		return 2
	default:
		return 1
	}
}

// ParseKind resolves a kind name, case-insensitive.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("codec: unknown kind %q", s)
}

// ---- 2-word kinds: big-endian, high word first ----

func split(u uint32) []uint16 {
	return []uint16{uint16(u >> 16), uint16(u)}
}

func join(op string, words []uint16) (uint32, error) {
	if len(words) < 2 {
		return 0, fault.Errorf(fault.InvalidLength, op, "need 2 words, got %d", len(words))
	}
	return uint32(words[0])<<16 | uint32(words[1]), nil
}

func FromFloat32(v float32) []uint16 { return split(math.Float32bits(v)) }

func ToFloat32(words []uint16) (float32, error) {
	u, err := join("decode float32", words)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(u), nil
}

func FromInt32(v int32) []uint16 { return split(uint32(v)) }

func ToInt32(words []uint16) (int32, error) {
	u, err := join("decode int32", words)
	if err != nil {
		return 0, err
	}
	return int32(u), nil
}

func FromUint32(v uint32) []uint16 { return split(v) }

func ToUint32(words []uint16) (uint32, error) {
	return join("decode uint32", words)
}

// ---- 1-word kinds ----

func first(op string, words []uint16) (uint16, error) {
	if len(words) < 1 {
		return 0, fault.Errorf(fault.InvalidLength, op, "need 1 word, got 0")
	}
	return words[0], nil
}

func FromInt16(v int16) []uint16 { return []uint16{uint16(v)} }

// ToInt16 maps a raw word >= 32768 to raw-65536.
func ToInt16(words []uint16) (int16, error) {
	w, err := first("decode int16", words)
	if err != nil {
		return 0, err
	}
	return int16(w), nil
}

func FromUint16(v uint16) []uint16 { return []uint16{v} }

func ToUint16(words []uint16) (uint16, error) {
	return first("decode uint16", words)
}

func FromBool(v bool) []uint16 {
	if v {
		return []uint16{1}
	}
	return []uint16{0}
}

// ToBool treats any non-zero word as true.
func ToBool(words []uint16) (bool, error) {
	w, err := first("decode bool", words)
	if err != nil {
		return false, err
	}
	return w != 0, nil
}

// ---- generic ----

// Encode converts v into registers. The Go type of v must match kind:
// Float32→float32, Int32→int32, UInt32→uint32, Int16→int16,
// UInt16/Raw→uint16, Bool→bool.
func Encode(kind Kind, v any) ([]uint16, error) {
	switch kind {
	case Float32:
		if f, ok := v.(float32); ok {
			return FromFloat32(f), nil
		}
	case Int32:
		if i, ok := v.(int32); ok {
			return FromInt32(i), nil
		}
	case UInt32:
		if u, ok := v.(uint32); ok {
			return FromUint32(u), nil
		}
	case Int16:
		if i, ok := v.(int16); ok {
			return FromInt16(i), nil
		}
	case UInt16, Raw:
		if u, ok := v.(uint16); ok {
			return FromUint16(u), nil
		}
	case Bool:
		if b, ok := v.(bool); ok {
			return FromBool(b), nil
		}
	default:
		return nil, fault.Errorf(fault.InvalidLength, "encode", "unknown kind %d", uint8(kind))
	}
	return nil, fault.Errorf(fault.InvalidLength, "encode", "%T is not a %s value", v, kind)
}

// Decode converts the leading registers of words into one value of kind.
func Decode(kind Kind, words []uint16) (any, error) {
	switch kind {
	case Float32:
		return ToFloat32(words)
	case Int32:
		return ToInt32(words)
	case UInt32:
		return ToUint32(words)
	case Int16:
		return ToInt16(words)
	case UInt16, Raw:
		return ToUint16(words)
	case Bool:
		return ToBool(words)
	default:
		return nil, fault.Errorf(fault.InvalidLength, "decode", "unknown kind %d", uint8(kind))
	}
}

// DecodeAll decodes consecutive values. len(words) must be a multiple of kind.Words().
func DecodeAll(kind Kind, words []uint16) ([]any, error) {
	n := kind.Words()
	if len(words)%n != 0 {
		return nil, fault.Errorf(fault.InvalidLength, "decode all",
			"%d words is not a whole number of %s values", len(words), kind)
	}
	out := make([]any, 0, len(words)/n)
	for i := 0; i < len(words); i += n {
		v, err := Decode(kind, words[i:i+n])
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
