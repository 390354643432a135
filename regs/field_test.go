package regs

import (
	"testing"

	"nucleo-go/errcode"
)

func TestInsertExtractRoundTrip32(t *testing.T) {
	seeds := []uint32{0, 0xFFFFFFFF, 0xA5A5A5A5, 0x12345678}
	vals := []uint32{0, 1, 0x5, 0xFF, 0xDEADBEEF}
	for _, reg := range seeds {
		for off := uint(0); off < 32; off++ {
			for width := uint(1); off+width <= 32; width++ {
				for _, v := range vals {
					got := Insert(reg, off, width, v)
					m := mask[uint32](width)
					if e := Extract(got, off, width); e != v&m {
						t.Fatalf("Extract(Insert(%#x,%d,%d,%#x)) = %#x, want %#x", reg, off, width, v, e, v&m)
					}
					outside := ^(m << off)
					if got&outside != reg&outside {
						t.Fatalf("Insert(%#x,%d,%d,%#x) = %#x disturbed bits outside the field", reg, off, width, v, got)
					}
				}
			}
		}
	}
}

func TestInsertNarrowRegisters(t *testing.T) {
	if got := Insert[uint8](0xFF, 2, 3, 0); got != 0xE3 {
		t.Fatalf("uint8 insert = %#x, want 0xe3", got)
	}
	if got := Extract[uint8](0xE3, 5, 3); got != 0x7 {
		t.Fatalf("uint8 extract = %#x, want 0x7", got)
	}
	if got := Insert[uint16](0x0000, 12, 4, 0x1F); got != 0xF000 {
		t.Fatalf("uint16 insert = %#x, want 0xf000 (overflow truncated)", got)
	}
	if got := Insert[uint16](0x1234, 0, 16, 0xBEEF); got != 0xBEEF {
		t.Fatalf("uint16 full-width insert = %#x, want 0xbeef", got)
	}
}

func TestFieldGeometry(t *testing.T) {
	cases := []struct {
		f     Field
		valid bool
		mask  uint32
	}{
		{Field{0, 1}, true, 0x1},
		{Field{28, 4}, true, 0xF0000000},
		{Field{0, 32}, true, 0xFFFFFFFF},
		{Field{31, 2}, false, 0},
		{Field{4, 0}, false, 0},
	}
	for _, c := range cases {
		if c.f.Valid() != c.valid {
			t.Fatalf("%+v Valid() = %v, want %v", c.f, c.f.Valid(), c.valid)
		}
		if c.valid && c.f.Mask() != c.mask {
			t.Fatalf("%+v Mask() = %#x, want %#x", c.f, c.f.Mask(), c.mask)
		}
	}
}

func TestInsertChecked(t *testing.T) {
	f := Field{Offset: 4, Width: 2}
	if _, err := f.InsertChecked(0, 4); err != errcode.FieldOverflow {
		t.Fatalf("InsertChecked overflow err = %v, want field_overflow", err)
	}
	if _, err := (Field{Offset: 31, Width: 2}).InsertChecked(0, 1); err != errcode.InvalidField {
		t.Fatalf("InsertChecked geometry err = %v, want invalid_field", err)
	}
	got, err := f.InsertChecked(0xFF, 1)
	if err != nil {
		t.Fatalf("InsertChecked: %v", err)
	}
	if got != 0xDF {
		t.Fatalf("InsertChecked = %#x, want 0xdf", got)
	}
}

func TestSplitField(t *testing.T) {
	// USART word length: M0 at bit 12, M1 at bit 28.
	m := Split{Bit(12), Bit(28)}
	if m.Width() != 2 {
		t.Fatalf("Width = %d", m.Width())
	}
	for v := uint32(0); v < 4; v++ {
		reg := m.Insert(0x0000_0F0F, v)
		if got := m.Extract(reg); got != v {
			t.Fatalf("split round trip %d -> %d", v, got)
		}
		if reg&^(1<<12|1<<28) != 0x0000_0F0F {
			t.Fatalf("split insert disturbed other bits: %#x", reg)
		}
	}
	if got := m.Insert(0, 2); got != 1<<28 {
		t.Fatalf("M=2 -> %#x, want M1 only", got)
	}

	// Pieces are disjoint: applying the edits in reverse gives the same result.
	edits := m.Edits(3)
	fwd := Apply(0, edits...)
	rev := Apply(0, edits[1], edits[0])
	if fwd != rev {
		t.Fatalf("edit order changed result: %#x vs %#x", fwd, rev)
	}
}
