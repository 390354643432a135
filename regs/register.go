package regs

// Register is one 32-bit memory-mapped register.
//
// *volatile.Register32 satisfies it on TinyGo; the sim package provides a
// host implementation.
type Register interface {
	Get() uint32
	Set(v uint32)
}

// Mem resolves absolute bus addresses to registers.
type Mem interface {
	Reg(addr uintptr) Register
}

// Edit is one field assignment.
type Edit struct {
	Field Field
	Value uint32
}

// Apply folds edits into v without touching hardware.
func Apply(v uint32, edits ...Edit) uint32 {
	for _, e := range edits {
		v = e.Field.Insert(v, e.Value)
	}
	return v
}

// Modify applies edits to r with a single read and a single write, so the
// hardware never sees an intermediate combination of fields.
//
// Not interrupt safe: a register shared with an interrupt handler needs a
// critical section around the call.
func Modify(r Register, edits ...Edit) {
	r.Set(Apply(r.Get(), edits...))
}

// ModifyChecked validates every edit before touching r. On error nothing is
// read or written.
func ModifyChecked(r Register, edits ...Edit) error {
	for _, e := range edits {
		if err := e.Field.Check(e.Value); err != nil {
			return err
		}
	}
	Modify(r, edits...)
	return nil
}

// SetBits ORs mask into r. Bits already set stay set.
func SetBits(r Register, mask uint32) { r.Set(r.Get() | mask) }

// ClearBits clears mask in r.
func ClearBits(r Register, mask uint32) { r.Set(r.Get() &^ mask) }

// HasBits reports whether every bit of mask is set in r.
func HasBits(r Register, mask uint32) bool { return r.Get()&mask == mask }

// Block is a peripheral register block: a base address on a bus.
type Block struct {
	Mem  Mem
	Base uintptr
}

// At returns the register at offset off from the block base.
func (b Block) At(off uintptr) Register { return b.Mem.Reg(b.Base + off) }
