// internal/fault/fault_test.go
package fault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("bank read: %w", Errorf(OutOfRange, "read", "addr=%d qty=%d", 9999, 2))

	assert.True(t, errors.Is(err, ErrOutOfRange))
	assert.False(t, errors.Is(err, ErrTransport))

	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, OutOfRange, kind)
}

func TestKindOfPlainError(t *testing.T) {
	_, ok := KindOf(errors.New("boom"))
	assert.False(t, ok)
}

func TestCode(t *testing.T) {
	assert.Equal(t, uint16(0), Code(nil))
	assert.Equal(t, CodeIllegalDataAddress, Code(New(OutOfRange, "read", nil)))
	assert.Equal(t, CodeIllegalDataValue, Code(New(InvalidLength, "read", nil)))
	assert.Equal(t, CodeTargetNoResponse, Code(New(Transport, "dial", nil)))
	assert.Equal(t, CodeDeviceFailure, Code(errors.New("opaque")))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "out of range", ErrOutOfRange.Error())
	assert.Equal(t, "read: invalid length", New(InvalidLength, "read", nil).Error())
	assert.Equal(t, "write: protocol: rejected", Errorf(Protocol, "write", "rejected").Error())
}
