// internal/server/server_test.go
package server

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/tmrobot-sim/internal/codec"
	"github.com/tamzrod/tmrobot-sim/internal/device"
	"github.com/tamzrod/tmrobot-sim/internal/fault"
	"github.com/tamzrod/tmrobot-sim/internal/register"
)

func newImage(t *testing.T) *device.Image {
	t.Helper()
	img, err := device.Build(device.Config{})
	require.NoError(t, err)
	return img
}

func req(fc uint8, words ...uint16) []byte {
	out := []byte{fc}
	for _, w := range words {
		out = binary.BigEndian.AppendUint16(out, w)
	}
	return out
}

func TestReadInputRegistersCoordinates(t *testing.T) {
	img := newImage(t)

	resp := handlePDU(img, req(fcReadInputRegisters, device.AddrBaseCoords, 12))
	require.Len(t, resp, 2+24)
	assert.Equal(t, fcReadInputRegisters, resp[0])
	assert.Equal(t, byte(24), resp[1])

	x, err := codec.ToFloat32(unpackRegisters(resp[2:6]))
	require.NoError(t, err)
	assert.Equal(t, float32(350.5), x)
}

func TestReadDiscreteInputsPacksBits(t *testing.T) {
	img := newImage(t)

	// control box DI alternates 0/1: bits 1,3,5,7 set -> 0xAA
	resp := handlePDU(img, req(fcReadDiscreteInputs, 0, 16))
	assert.Equal(t, []byte{fcReadDiscreteInputs, 2, 0xAA, 0xAA}, resp)

	resp = handlePDU(img, req(fcReadDiscreteInputs, device.AddrRobotLink, 4))
	assert.Equal(t, []byte{fcReadDiscreteInputs, 1, 0x01}, resp)
}

func TestOutOfRangeIsIllegalDataAddress(t *testing.T) {
	img := newImage(t)

	resp := handlePDU(img, req(fcReadHoldingRegisters, device.DefaultCapacity-1, 2))
	assert.Equal(t, []byte{fcReadHoldingRegisters | exceptionFlag, byte(fault.CodeIllegalDataAddress)}, resp)
}

func TestBadQuantityIsIllegalDataValue(t *testing.T) {
	img := newImage(t)

	for _, r := range [][]byte{
		req(fcReadHoldingRegisters, 0, 0),
		req(fcReadHoldingRegisters, 0, 126),
		req(fcReadCoils, 0, 2001),
		{fcReadInputRegisters, 0x00},
		req(fcWriteSingleCoil, 0, 0x1234),
	} {
		resp := handlePDU(img, r)
		assert.Equal(t, []byte{r[0] | exceptionFlag, byte(fault.CodeIllegalDataValue)}, resp)
	}
}

func TestUnknownFunction(t *testing.T) {
	resp := handlePDU(newImage(t), []byte{0x2B, 0x0E})
	assert.Equal(t, []byte{0x2B | exceptionFlag, byte(fault.CodeIllegalFunction)}, resp)
}

func TestWriteSingleRegisterThenRead(t *testing.T) {
	img := newImage(t)

	w := req(fcWriteSingleRegister, device.UserAreaStart, 12345)
	assert.Equal(t, w, handlePDU(img, w))

	resp := handlePDU(img, req(fcReadHoldingRegisters, device.UserAreaStart, 1))
	assert.Equal(t, []byte{fcReadHoldingRegisters, 2, 0x30, 0x39}, resp)
}

func TestWriteMultipleRegisters(t *testing.T) {
	img := newImage(t)

	w := append(req(fcWriteMultipleRegisters, device.UserAreaStart+5, 2), 4, 0x00, 0x07, 0x00, 0x08)
	assert.Equal(t, req(fcWriteMultipleRegisters, device.UserAreaStart+5, 2), handlePDU(img, w))

	got, err := img.Bank(register.Holding).Read(device.UserAreaStart+5, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint16{7, 8}, got)

	// byte count mismatch
	bad := append(req(fcWriteMultipleRegisters, device.UserAreaStart, 2), 3, 0, 1, 0)
	assert.Equal(t, []byte{fcWriteMultipleRegisters | exceptionFlag, byte(fault.CodeIllegalDataValue)}, handlePDU(img, bad))
}

func TestWriteCoils(t *testing.T) {
	img := newImage(t)

	assert.Equal(t, req(fcWriteSingleCoil, device.AddrLight, coilOn), handlePDU(img, req(fcWriteSingleCoil, device.AddrLight, coilOn)))

	w := append(req(fcWriteMultipleCoils, 0, 10), 2, 0x05, 0x02)
	assert.Equal(t, req(fcWriteMultipleCoils, 0, 10), handlePDU(img, w))

	got, err := img.Bank(register.BinaryOutput).Read(0, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint16{1, 0, 1, 0, 0, 0, 0, 0, 0, 1}, got)

	light, err := img.Bank(register.BinaryOutput).Read(device.AddrLight, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint16{1}, light)
}

// ---- TCP ----

func startServer(t *testing.T, cfg Config) (string, *Server) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := New(cfg, newImage(t), nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Errorf("server did not stop")
		}
	})
	return ln.Addr().String(), srv
}

func roundTrip(t *testing.T, conn net.Conn, tid uint16, uid uint8, pdu []byte) (uint16, []byte) {
	t.Helper()

	require.NoError(t, conn.SetDeadline(time.Now().Add(2*time.Second)))
	_, err := conn.Write(frame(tid, uid, pdu))
	require.NoError(t, err)

	var header [mbapLen]byte
	_, err = io.ReadFull(conn, header[:])
	require.NoError(t, err)

	body := make([]byte, binary.BigEndian.Uint16(header[4:6])-1)
	_, err = io.ReadFull(conn, body)
	require.NoError(t, err)
	return binary.BigEndian.Uint16(header[0:2]), body
}

func TestServeOverTCP(t *testing.T) {
	addr, _ := startServer(t, Config{UnitID: 1})

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	tid, resp := roundTrip(t, conn, 77, 1, req(fcReadInputRegisters, device.AddrRobotState, 2))
	assert.Equal(t, uint16(77), tid)
	assert.Equal(t, []byte{fcReadInputRegisters, 4, 0, 0, 0, 0}, resp)

	_, resp = roundTrip(t, conn, 78, 9, req(fcReadInputRegisters, device.AddrRobotState, 1))
	assert.Equal(t, []byte{fcReadInputRegisters | exceptionFlag, byte(fault.CodeTargetNoResponse)}, resp)
}

func TestServeTracksConnections(t *testing.T) {
	addr, srv := startServer(t, Config{})

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	// any unit id is answered when UnitID is 0
	_, resp := roundTrip(t, conn, 1, 42, req(fcReadCoils, device.AddrLight, 1))
	assert.Equal(t, []byte{fcReadCoils, 1, 0}, resp)
	assert.Equal(t, 1, srv.Connections())
}
