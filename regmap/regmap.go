// Package regmap provides byte-wide access to the charger's 16-bit-addressed
// register space. The core only ever talks to the Regmap interface; transports
// are interchangeable and every operation can fail.
package regmap

import (
	"tinygo.org/x/drivers"
)

// Regmap is a synchronous, fallible register transport.
type Regmap interface {
	Read(addr uint16) (uint8, error)
	Write(addr uint16, val uint8) error
	UpdateBits(addr uint16, mask, val uint8) error
}

// I2C accesses registers over an SMBus-style transaction: the 16-bit register
// address (high byte first) followed by the data byte.
type I2C struct {
	bus  drivers.I2C
	addr uint16

	// Fixed buffers to avoid per-call heap allocations.
	w [3]byte
	r [1]byte
}

func NewI2C(bus drivers.I2C, addr uint16) *I2C {
	return &I2C{bus: bus, addr: addr}
}

func (m *I2C) Read(addr uint16) (uint8, error) {
	m.w[0] = byte(addr >> 8)
	m.w[1] = byte(addr)
	if err := m.bus.Tx(m.addr, m.w[:2], m.r[:1]); err != nil {
		return 0, err
	}
	return m.r[0], nil
}

func (m *I2C) Write(addr uint16, val uint8) error {
	m.w[0] = byte(addr >> 8)
	m.w[1] = byte(addr)
	m.w[2] = val
	return m.bus.Tx(m.addr, m.w[:3], nil)
}

// UpdateBits is a read-modify-write; it is not atomic on the wire, callers
// needing exclusion must provide it.
func (m *I2C) UpdateBits(addr uint16, mask, val uint8) error {
	cur, err := m.Read(addr)
	if err != nil {
		return err
	}
	next := (cur &^ mask) | (val & mask)
	if next == cur {
		return nil
	}
	return m.Write(addr, next)
}
