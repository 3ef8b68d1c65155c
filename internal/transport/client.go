// internal/transport/client.go
package transport

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"

	"github.com/tamzrod/tmrobot-sim/internal/fault"
	"github.com/tamzrod/tmrobot-sim/internal/register"
)

// Client is a single Modbus TCP connection to one simulated robot.
// Requests are serialized; the goburrow handler reconnects lazily after a failure.
type Client struct {
	mu      sync.Mutex
	handler *modbus.TCPClientHandler
	client  modbus.Client
}

// Config is minimal transport config.
type Config struct {
	Endpoint string
	UnitID   uint8
	Timeout  time.Duration
}

// Dial creates a connected client.
func Dial(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("transport: endpoint required")
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout
	h.SlaveId = cfg.UnitID

	if err := h.Connect(); err != nil {
		return nil, fault.New(fault.Transport, "connect "+cfg.Endpoint, err)
	}

	return &Client{
		handler: h,
		client:  modbus.NewClient(h),
	}, nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler.Close()
}

// Read returns qty words from region starting at addr.
// Bit regions yield one 0/1 word per bit.
func (c *Client) Read(region register.Region, addr, qty uint16) ([]uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	op := fmt.Sprintf("read %s addr=%d qty=%d", region, addr, qty)
	if qty == 0 || int(qty) > region.MaxRead() {
		return nil, fault.Errorf(fault.InvalidLength, op, "quantity must be 1..%d", region.MaxRead())
	}

	var (
		raw []byte
		err error
	)
	switch region {
	case register.BinaryOutput:
		raw, err = c.client.ReadCoils(addr, qty)
	case register.BinaryInput:
		raw, err = c.client.ReadDiscreteInputs(addr, qty)
	case register.Holding:
		raw, err = c.client.ReadHoldingRegisters(addr, qty)
	case register.Input:
		raw, err = c.client.ReadInputRegisters(addr, qty)
	default:
		return nil, fault.Errorf(fault.Protocol, op, "unknown region")
	}
	if err != nil {
		return nil, classify(op, err)
	}

	if region.IsBit() {
		if len(raw) < (int(qty)+7)/8 {
			return nil, fault.Errorf(fault.Protocol, op, "short bit payload: %d bytes", len(raw))
		}
		return unpackBits(raw, int(qty)), nil
	}
	if len(raw) != 2*int(qty) {
		return nil, fault.Errorf(fault.Protocol, op, "register payload %d bytes, want %d", len(raw), 2*int(qty))
	}
	return unpackRegisters(raw), nil
}

// Write stores words at addr. A single word uses FC 5/6, several use FC 15/16.
func (c *Client) Write(region register.Region, addr uint16, words []uint16) error {
	op := fmt.Sprintf("write %s addr=%d qty=%d", region, addr, len(words))

	if !region.Writable() {
		return fault.Errorf(fault.Protocol, op, "region is read-only")
	}
	if len(words) == 0 || len(words) > region.MaxWrite() {
		return fault.Errorf(fault.InvalidLength, op, "quantity must be 1..%d", region.MaxWrite())
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	qty := uint16(len(words))

	var err error
	switch {
	case region == register.Holding && qty == 1:
		_, err = c.client.WriteSingleRegister(addr, words[0])
	case region == register.Holding:
		_, err = c.client.WriteMultipleRegisters(addr, qty, packRegisters(words))
	case qty == 1:
		v := uint16(0x0000)
		if words[0] != 0 {
			v = 0xFF00
		}
		_, err = c.client.WriteSingleCoil(addr, v)
	default:
		_, err = c.client.WriteMultipleCoils(addr, qty, packBits(words))
	}
	if err != nil {
		return classify(op, err)
	}
	return nil
}

// classify maps goburrow errors onto fault kinds.
func classify(op string, err error) error {
	var me *modbus.ModbusError
	if errors.As(err, &me) {
		switch me.ExceptionCode {
		case modbus.ExceptionCodeIllegalDataAddress:
			return fault.New(fault.OutOfRange, op, err)
		case modbus.ExceptionCodeIllegalDataValue:
			return fault.New(fault.InvalidLength, op, err)
		default:
			return fault.New(fault.Protocol, op, err)
		}
	}
	return fault.New(fault.Transport, op, err)
}

// ---- helpers (pure geometry) ----

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
		out[2*i] = byte(r >> 8)
		out[2*i+1] = byte(r)
	}
	return out
}

func unpackRegisters(data []byte) []uint16 {
	n := len(data) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out
}
