// internal/server/pdu.go
package server

import (
	"encoding/binary"

	"github.com/tamzrod/tmrobot-sim/internal/fault"
	"github.com/tamzrod/tmrobot-sim/internal/register"
)

// Function codes served.
const (
	fcReadCoils              uint8 = 0x01
	fcReadDiscreteInputs     uint8 = 0x02
	fcReadHoldingRegisters   uint8 = 0x03
	fcReadInputRegisters     uint8 = 0x04
	fcWriteSingleCoil        uint8 = 0x05
	fcWriteSingleRegister    uint8 = 0x06
	fcWriteMultipleCoils     uint8 = 0x0F
	fcWriteMultipleRegisters uint8 = 0x10
)

// Quantity limits per request.
const (
	maxReadBits   = register.MaxReadBits
	maxReadRegs   = register.MaxReadRegs
	maxWriteBits  = register.MaxWriteBits
	maxWriteRegs  = register.MaxWriteRegs
	coilOn        = 0xFF00
	coilOff       = 0x0000
	exceptionFlag = 0x80
)

// banks is what the PDU handler needs from the device image.
type banks interface {
	Bank(r register.Region) *register.Bank
}

// handlePDU executes one request PDU and returns the response PDU.
// Failures become exception responses; nothing here returns an error.
func handlePDU(img banks, pdu []byte) []byte {
	if len(pdu) == 0 {
		return exception(0, fault.CodeIllegalFunction)
	}
	fc := pdu[0]
	data := pdu[1:]

	switch fc {
	case fcReadCoils:
		return readBits(img.Bank(register.BinaryOutput), fc, data)
	case fcReadDiscreteInputs:
		return readBits(img.Bank(register.BinaryInput), fc, data)
	case fcReadHoldingRegisters:
		return readRegisters(img.Bank(register.Holding), fc, data)
	case fcReadInputRegisters:
		return readRegisters(img.Bank(register.Input), fc, data)
	case fcWriteSingleCoil:
		return writeSingleCoil(img.Bank(register.BinaryOutput), fc, data)
	case fcWriteSingleRegister:
		return writeSingleRegister(img.Bank(register.Holding), fc, data)
	case fcWriteMultipleCoils:
		return writeMultipleCoils(img.Bank(register.BinaryOutput), fc, data)
	case fcWriteMultipleRegisters:
		return writeMultipleRegisters(img.Bank(register.Holding), fc, data)
	default:
		return exception(fc, fault.CodeIllegalFunction)
	}
}

func exception(fc uint8, code uint16) []byte {
	return []byte{fc | exceptionFlag, byte(code)}
}

// addrQty parses the common Address(2) Quantity(2) prefix.
func addrQty(data []byte) (addr, qty uint16, ok bool) {
	if len(data) < 4 {
		return 0, 0, false
	}
	return binary.BigEndian.Uint16(data[0:2]), binary.BigEndian.Uint16(data[2:4]), true
}

func readBits(b *register.Bank, fc uint8, data []byte) []byte {
	addr, qty, ok := addrQty(data)
	if !ok || qty == 0 || qty > maxReadBits {
		return exception(fc, fault.CodeIllegalDataValue)
	}

	words, err := b.Read(int(addr), int(qty))
	if err != nil {
		return exception(fc, fault.Code(err))
	}

	packed := packBits(words)
	resp := make([]byte, 0, 2+len(packed))
	resp = append(resp, fc, byte(len(packed)))
	return append(resp, packed...)
}

func readRegisters(b *register.Bank, fc uint8, data []byte) []byte {
	addr, qty, ok := addrQty(data)
	if !ok || qty == 0 || qty > maxReadRegs {
		return exception(fc, fault.CodeIllegalDataValue)
	}

	words, err := b.Read(int(addr), int(qty))
	if err != nil {
		return exception(fc, fault.Code(err))
	}

	resp := make([]byte, 0, 2+2*len(words))
	resp = append(resp, fc, byte(2*len(words)))
	return append(resp, packRegisters(words)...)
}

func writeSingleCoil(b *register.Bank, fc uint8, data []byte) []byte {
	addr, value, ok := addrQty(data)
	if !ok || (value != coilOn && value != coilOff) {
		return exception(fc, fault.CodeIllegalDataValue)
	}

	var w uint16
	if value == coilOn {
		w = 1
	}
	if err := b.Write(int(addr), []uint16{w}); err != nil {
		return exception(fc, fault.Code(err))
	}
	return append([]byte{fc}, data[:4]...)
}

func writeSingleRegister(b *register.Bank, fc uint8, data []byte) []byte {
	addr, value, ok := addrQty(data)
	if !ok {
		return exception(fc, fault.CodeIllegalDataValue)
	}
	if err := b.Write(int(addr), []uint16{value}); err != nil {
		return exception(fc, fault.Code(err))
	}
	return append([]byte{fc}, data[:4]...)
}

// Request: Address(2) Quantity(2) ByteCount(1) Values(N)
func writeMultipleCoils(b *register.Bank, fc uint8, data []byte) []byte {
	addr, qty, ok := addrQty(data)
	if !ok || qty == 0 || qty > maxWriteBits || len(data) < 5 {
		return exception(fc, fault.CodeIllegalDataValue)
	}
	byteCount := int(data[4])
	if byteCount != (int(qty)+7)/8 || len(data)-5 < byteCount {
		return exception(fc, fault.CodeIllegalDataValue)
	}

	if err := b.Write(int(addr), unpackBits(data[5:5+byteCount], int(qty))); err != nil {
		return exception(fc, fault.Code(err))
	}
	return append([]byte{fc}, data[:4]...)
}

func writeMultipleRegisters(b *register.Bank, fc uint8, data []byte) []byte {
	addr, qty, ok := addrQty(data)
	if !ok || qty == 0 || qty > maxWriteRegs || len(data) < 5 {
		return exception(fc, fault.CodeIllegalDataValue)
	}
	byteCount := int(data[4])
	if byteCount != 2*int(qty) || len(data)-5 < byteCount {
		return exception(fc, fault.CodeIllegalDataValue)
	}

	if err := b.Write(int(addr), unpackRegisters(data[5:5+byteCount])); err != nil {
		return exception(fc, fault.Code(err))
	}
	return append([]byte{fc}, data[:4]...)
}

// ---- helpers (pure geometry) ----

// packBits packs one word per bit, LSB first; any non-zero word is ON.
func packBits(words []uint16) []byte {
	out := make([]byte, (len(words)+7)/8)
	for i, w := range words {
		if w != 0 {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out
}

func unpackBits(data []byte, count int) []uint16 {
	out := make([]uint16, count)
	for i := 0; i < count; i++ {
		if data[i/8]&(1<<uint(i%8)) != 0 {
			out[i] = 1
		}
	}
	return out
}

func packRegisters(regs []uint16) []byte {
	out := make([]byte, len(regs)*2)
	for i, r := range regs {
		binary.BigEndian.PutUint16(out[2*i:], r)
	}
	return out
}

func unpackRegisters(data []byte) []uint16 {
	n := len(data) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = binary.BigEndian.Uint16(data[2*i:])
	}
	return out
}
