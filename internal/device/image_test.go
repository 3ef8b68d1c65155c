// internal/device/image_test.go
package device

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/tmrobot-sim/internal/codec"
	"github.com/tamzrod/tmrobot-sim/internal/fault"
	"github.com/tamzrod/tmrobot-sim/internal/register"
)

func build(t *testing.T) *Image {
	t.Helper()
	img, err := Build(Config{})
	require.NoError(t, err)
	return img
}

func TestBuildIsDeterministic(t *testing.T) {
	a := build(t)
	b := build(t)

	assert.Equal(t, a.Snapshot(), b.Snapshot())
}

func TestFieldsRoundTripThroughCodec(t *testing.T) {
	img := build(t)

	for _, f := range Fields() {
		words, err := img.Bank(f.Region).Read(int(f.Address), f.Words())
		require.NoError(t, err, f.Name)

		vals, err := codec.DecodeAll(f.Kind, words)
		require.NoError(t, err, f.Name)
		require.Len(t, vals, f.Count, f.Name)

		for i, seed := range f.Seed {
			if f.Name == FieldUserArea && isOverridden(f.Region, int(f.Address)+i) {
				continue
			}
			assert.Equal(t, seed, vals[i], "%s[%d]", f.Name, i)
		}
	}
}

func isOverridden(r register.Region, addr int) bool {
	for _, o := range Overrides() {
		if o.Region == r && int(o.Address) == addr {
			return true
		}
	}
	return false
}

func TestCoordinateWords(t *testing.T) {
	img := build(t)

	words, err := img.Bank(register.Input).Read(AddrBaseCoords, 2)
	require.NoError(t, err)
	x, err := codec.ToFloat32(words)
	require.NoError(t, err)
	assert.Equal(t, float32(350.5), x)

	words, err = img.Bank(register.Input).Read(AddrJointAngles+2, 2)
	require.NoError(t, err)
	j2, err := codec.ToFloat32(words)
	require.NoError(t, err)
	assert.Equal(t, float32(-30.0), j2)
}

func TestUserAreaFillAndOverrides(t *testing.T) {
	img := build(t)
	hr := img.Bank(register.Holding)

	words, err := hr.Read(UserAreaStart, UserAreaWords)
	require.NoError(t, err)

	assert.Equal(t, uint16(12345), words[0])
	assert.Equal(t, uint16(2354), words[1])
	assert.Equal(t, uint16(2), words[2])
	assert.Equal(t, uint16(0xABCD), words[10])
	assert.Equal(t, uint16(0x1234), words[20])
	assert.Equal(t, uint16(65535), words[100])
	assert.Equal(t, uint16(999), words[999])
	assert.Equal(t, uint16(500), words[500])
}

func TestFlagsAndControlIO(t *testing.T) {
	img := build(t)
	di := img.Bank(register.BinaryInput)

	flags, err := di.Read(AddrRobotLink, 3)
	require.NoError(t, err)
	assert.Equal(t, []uint16{1, 0, 0}, flags)

	ctrl, err := di.Read(0, ControlIOBits)
	require.NoError(t, err)
	for i, w := range ctrl {
		assert.Equal(t, uint16(i%2), w, "DI %d", i)
	}

	do, err := img.Bank(register.BinaryOutput).Read(0, ControlIOBits)
	require.NoError(t, err)
	assert.Equal(t, make([]uint16, ControlIOBits), do)
}

func TestBuildRejectsSmallCapacity(t *testing.T) {
	_, err := Build(Config{Capacity: 8000})
	require.Error(t, err)
	assert.True(t, errors.Is(err, fault.ErrOutOfRange))
}

func TestLookupAndPresets(t *testing.T) {
	f, ok := Lookup(FieldToolCoords)
	require.True(t, ok)
	assert.Equal(t, uint16(AddrToolCoords), f.Address)
	assert.Equal(t, 12, f.Words())
	assert.Equal(t, 7036, f.End())

	_, ok = Lookup("nope")
	assert.False(t, ok)

	p, ok := Preset("status")
	require.True(t, ok)
	assert.Equal(t, register.BinaryInput, p.Region)
	assert.Equal(t, []string{"base", "control_di", "control_do", "joint", "light", "status", "tool", "userdefine"}, PresetKeys())
}

func TestFieldsReturnsCopy(t *testing.T) {
	fs := Fields()
	fs[0].Address = 1

	f, _ := Lookup(FieldBaseCoords)
	assert.Equal(t, uint16(AddrBaseCoords), f.Address)
}

func TestSeedMutationDoesNotLeakIntoBuild(t *testing.T) {
	fs := Fields()
	fs[0].Seed[0] = float32(1)

	f, _ := Lookup(FieldBaseCoords)
	f.Seed[1] = float32(2)

	img := build(t)
	words, err := img.Bank(register.Input).Read(AddrBaseCoords, 4)
	require.NoError(t, err)
	vals, err := codec.DecodeAll(codec.Float32, words)
	require.NoError(t, err)
	assert.Equal(t, []any{float32(350.5), float32(-120.3)}, vals)

	again, _ := Lookup(FieldBaseCoords)
	assert.Equal(t, float32(350.5), again.Seed[0])
}
