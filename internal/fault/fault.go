// internal/fault/fault.go
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers never parse error text.
type Kind uint8

const (
	// OutOfRange means address+count exceeds a bank's capacity.
	OutOfRange Kind = iota + 1
	// InvalidLength means a wrong word count or a malformed quantity.
	InvalidLength
	// Transport means the connection failed (refused, timeout, reset).
	Transport
	// Protocol means a well-formed response carried a device-level rejection.
	Protocol
)

func (k Kind) String() string {
	switch k {
	case OutOfRange:
		return "out of range"
	case InvalidLength:
		return "invalid length"
	case Transport:
		return "transport"
	case Protocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// Modbus exception codes the kinds map onto.
const (
	CodeIllegalFunction    uint16 = 0x01
	CodeIllegalDataAddress uint16 = 0x02
	CodeIllegalDataValue   uint16 = 0x03
	CodeDeviceFailure      uint16 = 0x04
	CodeTargetNoResponse   uint16 = 0x0B
)

// Sentinels usable with errors.Is. Any *Error of the same kind matches.
var (
	ErrOutOfRange    = &Error{Kind: OutOfRange}
	ErrInvalidLength = &Error{Kind: InvalidLength}
	ErrTransport     = &Error{Kind: Transport}
	ErrProtocol      = &Error{Kind: Protocol}
)

// Error is a typed failure. Op names the operation, Err is the cause (may be nil).
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// New builds a typed error.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds a typed error with a formatted cause.
func Errorf(kind Kind, op string, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	switch {
	case e.Op == "" && e.Err == nil:
		return e.Kind.String()
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	case e.Op == "":
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Code returns the Modbus exception code this failure is reported as.
func (e *Error) Code() uint16 {
	switch e.Kind {
	case OutOfRange:
		return CodeIllegalDataAddress
	case InvalidLength:
		return CodeIllegalDataValue
	case Protocol:
		return CodeDeviceFailure
	case Transport:
		return CodeTargetNoResponse
	default:
		return CodeDeviceFailure
	}
}

// KindOf extracts the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return 0, false
}

// Code extracts a best-effort Modbus exception code from any error.
// Errors that do not carry a kind report a device failure.
func Code(err error) uint16 {
	if err == nil {
		return 0
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code()
	}
	return CodeDeviceFailure
}
