package regmap

import (
	"sync"
)

// WriteRecord is one observed register write.
type WriteRecord struct {
	Addr uint16
	Val  uint8
}

// Mem is a RAM-backed Regmap for tests and the host simulator. Hooks let a
// test fault individual addresses or model self-clearing command bits.
type Mem struct {
	mu   sync.Mutex
	regs map[uint16]uint8
	log  []WriteRecord

	// OnRead, if set for an address, maps the stored value to the value
	// returned to the caller (or fails the read).
	OnRead map[uint16]func(cur uint8) (uint8, error)

	// OnWrite, if set for an address, maps the written value to the value
	// actually stored (or fails the write). Returning a different value
	// models self-clearing bits.
	OnWrite map[uint16]func(val uint8) (uint8, error)
}

func NewMem() *Mem {
	return &Mem{
		regs:    make(map[uint16]uint8),
		OnRead:  make(map[uint16]func(uint8) (uint8, error)),
		OnWrite: make(map[uint16]func(uint8) (uint8, error)),
	}
}

// Load seeds a register without recording a write.
func (m *Mem) Load(addr uint16, val uint8) {
	m.mu.Lock()
	m.regs[addr] = val
	m.mu.Unlock()
}

func (m *Mem) Read(addr uint16) (uint8, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur := m.regs[addr]
	if f, ok := m.OnRead[addr]; ok {
		return f(cur)
	}
	return cur, nil
}

func (m *Mem) Write(addr uint16, val uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeLocked(addr, val)
}

func (m *Mem) writeLocked(addr uint16, val uint8) error {
	store := val
	if f, ok := m.OnWrite[addr]; ok {
		var err error
		store, err = f(val)
		if err != nil {
			return err
		}
	}
	m.log = append(m.log, WriteRecord{Addr: addr, Val: val})
	m.regs[addr] = store
	return nil
}

func (m *Mem) UpdateBits(addr uint16, mask, val uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur := m.regs[addr]
	if f, ok := m.OnRead[addr]; ok {
		var err error
		cur, err = f(cur)
		if err != nil {
			return err
		}
	}
	next := (cur &^ mask) | (val & mask)
	if next == cur {
		return nil
	}
	return m.writeLocked(addr, next)
}

// Get returns the stored value without hooks.
func (m *Mem) Get(addr uint16) uint8 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.regs[addr]
}

// Writes returns the write history for one address.
func (m *Mem) Writes(addr uint16) []uint8 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []uint8
	for _, r := range m.log {
		if r.Addr == addr {
			out = append(out, r.Val)
		}
	}
	return out
}

// WriteCount returns how many writes hit the given address.
func (m *Mem) WriteCount(addr uint16) int {
	return len(m.Writes(addr))
}
