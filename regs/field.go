// Package regs edits bit-fields inside fixed-width hardware registers
// without disturbing the bits around them.
//
// Everything here is pure except Modify and the bit helpers, which perform
// exactly one read and one write on the register they are given.
package regs

import (
	"unsafe"

	"golang.org/x/exp/constraints"

	"nucleo-go/errcode"
)

// Word is the width of every register on the Cortex-M peripheral bus.
const Word = 32

func bitsOf[T constraints.Unsigned](v T) uint { return uint(unsafe.Sizeof(v)) * 8 }

// mask returns width low ones in T. A width of the full register yields all ones.
func mask[T constraints.Unsigned](width uint) T {
	var zero T
	n := bitsOf(zero)
	if width == 0 {
		return 0
	}
	if width >= n {
		return ^zero
	}
	return ^zero >> (n - width)
}

// Insert returns reg with bits [offset, offset+width) replaced by v.
//
// v is masked to width bits; overflow is dropped the way the hardware drops
// it. Bits of the field that fall beyond the register width are lost.
func Insert[T constraints.Unsigned](reg T, offset, width uint, v T) T {
	m := mask[T](width)
	return (reg &^ (m << offset)) | ((v & m) << offset)
}

// Extract returns the value of bits [offset, offset+width) of reg.
func Extract[T constraints.Unsigned](reg T, offset, width uint) T {
	return (reg >> offset) & mask[T](width)
}

// Field is a contiguous sub-range of a 32-bit register.
type Field struct {
	Offset uint8
	Width  uint8
}

// Bit is a one-bit field at pos.
func Bit(pos uint8) Field { return Field{Offset: pos, Width: 1} }

// Valid reports whether the field fits inside a 32-bit register.
func (f Field) Valid() bool {
	return f.Width >= 1 && uint(f.Offset)+uint(f.Width) <= Word
}

// Mask returns the in-place mask of the field.
func (f Field) Mask() uint32 { return mask[uint32](uint(f.Width)) << f.Offset }

// Max is the largest value the field can hold.
func (f Field) Max() uint32 { return mask[uint32](uint(f.Width)) }

func (f Field) Insert(reg, v uint32) uint32 { return Insert(reg, uint(f.Offset), uint(f.Width), v) }
func (f Field) Extract(reg uint32) uint32   { return Extract(reg, uint(f.Offset), uint(f.Width)) }

// Check validates the field geometry and that v fits.
func (f Field) Check(v uint32) error {
	if !f.Valid() {
		return errcode.InvalidField
	}
	if v > f.Max() {
		return errcode.FieldOverflow
	}
	return nil
}

// InsertChecked is Insert with the contract enforced instead of truncated.
func (f Field) InsertChecked(reg, v uint32) (uint32, error) {
	if err := f.Check(v); err != nil {
		return reg, err
	}
	return f.Insert(reg, v), nil
}

// Split is a field stored as several non-contiguous pieces. Value bits are
// handed out low piece first: the first piece takes the lowest Width bits of
// the value, the next piece the following ones, and so on.
type Split []Field

// Width is the total number of value bits.
func (s Split) Width() uint {
	var n uint
	for _, f := range s {
		n += uint(f.Width)
	}
	return n
}

// Edits expands v into one Edit per piece. The pieces touch disjoint bits,
// so the edits may be applied in any order.
func (s Split) Edits(v uint32) []Edit {
	out := make([]Edit, 0, len(s))
	for _, f := range s {
		out = append(out, Edit{Field: f, Value: v & f.Max()})
		v >>= f.Width
	}
	return out
}

// Insert applies every piece to reg.
func (s Split) Insert(reg, v uint32) uint32 {
	for _, e := range s.Edits(v) {
		reg = e.Field.Insert(reg, e.Value)
	}
	return reg
}

// Extract gathers the pieces back into one value.
func (s Split) Extract(reg uint32) uint32 {
	var v uint32
	var shift uint
	for _, f := range s {
		v |= f.Extract(reg) << shift
		shift += uint(f.Width)
	}
	return v
}
