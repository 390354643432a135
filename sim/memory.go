// Package sim is a host-side stand-in for the device bus: a sparse 32-bit
// memory with peripheral models mapped into it. Drivers run against it
// unchanged through the regs.Mem interface.
package sim

import (
	"sort"
	"sync"

	"nucleo-go/regs"
)

// Device models the side effects of one peripheral's register block.
// Methods are called with the memory lock held and must not call back into
// the Memory.
type Device interface {
	// Load returns what a CPU read of off observes. stored is the plain
	// backing value.
	Load(off uintptr, stored uint32) uint32
	// Store handles a CPU write of v and returns the value to keep.
	Store(off uintptr, old, v uint32) uint32
}

// Gate ties a mapping to a clock-enable bit. While the bit is clear the
// block reads as zero and ignores writes, like an unclocked peripheral.
type Gate struct {
	Addr uintptr
	Mask uint32
}

// Access is one CPU-side bus transaction.
type Access struct {
	Write bool
	Addr  uintptr
	Value uint32
	Gated bool
}

type mapping struct {
	base, size uintptr
	dev        Device
	gate       *Gate
}

// Memory is safe for concurrent use.
type Memory struct {
	mu     sync.Mutex
	cells  map[uintptr]uint32
	maps   []mapping
	reads  map[uintptr]int
	writes map[uintptr]int
	trace  func(Access)
}

func NewMemory() *Memory {
	return &Memory{
		cells:  make(map[uintptr]uint32),
		reads:  make(map[uintptr]int),
		writes: make(map[uintptr]int),
	}
}

// Map attaches dev to [base, base+size). gate may be nil.
func (m *Memory) Map(base, size uintptr, dev Device, gate *Gate) {
	m.mu.Lock()
	m.maps = append(m.maps, mapping{base: base, size: size, dev: dev, gate: gate})
	m.mu.Unlock()
}

// OnAccess installs a tracer called for every CPU access, under the lock.
func (m *Memory) OnAccess(fn func(Access)) {
	m.mu.Lock()
	m.trace = fn
	m.mu.Unlock()
}

func (m *Memory) find(addr uintptr) *mapping {
	for i := range m.maps {
		mp := &m.maps[i]
		if addr >= mp.base && addr < mp.base+mp.size {
			return mp
		}
	}
	return nil
}

func (m *Memory) gated(mp *mapping) bool {
	return mp != nil && mp.gate != nil && m.cells[mp.gate.Addr]&mp.gate.Mask != mp.gate.Mask
}

// Load performs a CPU read.
func (m *Memory) Load(addr uintptr) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads[addr]++
	mp := m.find(addr)
	var v uint32
	g := m.gated(mp)
	switch {
	case g:
	case mp != nil && mp.dev != nil:
		v = mp.dev.Load(addr-mp.base, m.cells[addr])
	default:
		v = m.cells[addr]
	}
	if m.trace != nil {
		m.trace(Access{Addr: addr, Value: v, Gated: g})
	}
	return v
}

// Store performs a CPU write.
func (m *Memory) Store(addr uintptr, v uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes[addr]++
	mp := m.find(addr)
	g := m.gated(mp)
	switch {
	case g:
	case mp != nil && mp.dev != nil:
		m.cells[addr] = mp.dev.Store(addr-mp.base, m.cells[addr], v)
	default:
		m.cells[addr] = v
	}
	if m.trace != nil {
		m.trace(Access{Write: true, Addr: addr, Value: v, Gated: g})
	}
}

// Peek reads the backing value without side effects or accounting.
func (m *Memory) Peek(addr uintptr) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cells[addr]
}

// Poke writes the backing value without side effects or accounting.
func (m *Memory) Poke(addr uintptr, v uint32) {
	m.mu.Lock()
	m.cells[addr] = v
	m.mu.Unlock()
}

// Reads is the number of CPU reads of addr so far.
func (m *Memory) Reads(addr uintptr) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads[addr]
}

// Writes is the number of CPU writes of addr so far.
func (m *Memory) Writes(addr uintptr) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes[addr]
}

// ResetCounters zeroes the access counters.
func (m *Memory) ResetCounters() {
	m.mu.Lock()
	m.reads = make(map[uintptr]int)
	m.writes = make(map[uintptr]int)
	m.mu.Unlock()
}

// Touched lists every address written so far, ascending.
func (m *Memory) Touched() []uintptr {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]uintptr, 0, len(m.cells))
	for a := range m.cells {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Reg implements regs.Mem.
func (m *Memory) Reg(addr uintptr) regs.Register { return &Reg{m: m, addr: addr} }

// Reg is one simulated register.
type Reg struct {
	m    *Memory
	addr uintptr
}

func (r *Reg) Get() uint32  { return r.m.Load(r.addr) }
func (r *Reg) Set(v uint32) { r.m.Store(r.addr, v) }

// Addr is the bus address of r.
func (r *Reg) Addr() uintptr { return r.addr }
