package rcc

import "nucleo-go/regs"

// Group names one clock-enable register.
type Group uint8

const (
	AHB1 Group = iota
	AHB2
	AHB3
	APB1
	APB2
)

func (g Group) String() string {
	switch g {
	case AHB1:
		return "AHB1"
	case AHB2:
		return "AHB2"
	case AHB3:
		return "AHB3"
	case APB1:
		return "APB1"
	case APB2:
		return "APB2"
	default:
		return "?"
	}
}

func (g Group) offset() uintptr {
	switch g {
	case AHB2:
		return OffAHB2ENR
	case AHB3:
		return OffAHB3ENR
	case APB1:
		return OffAPB1ENR
	case APB2:
		return OffAPB2ENR
	default:
		return OffAHB1ENR
	}
}

// RCC is a handle over the clock-control block.
type RCC struct {
	b regs.Block
}

// New returns the RCC at base on mem.
func New(mem regs.Mem, base uintptr) *RCC {
	return &RCC{b: regs.Block{Mem: mem, Base: base}}
}

// Enable ungates every peripheral in mask on group. It only ever sets bits:
// peripherals not named stay as they are, and enabling an enabled
// peripheral changes nothing.
//
// There is no error path. A bit that names no peripheral is a caller bug the
// hardware will not report.
func (r *RCC) Enable(g Group, mask uint32) {
	regs.SetBits(r.b.At(g.offset()), mask)
}

// Enabled reports whether every peripheral in mask is clocked.
func (r *RCC) Enabled(g Group, mask uint32) bool {
	return regs.HasBits(r.b.At(g.offset()), mask)
}

func (r *RCC) EnableAHB1(mask uint32) { r.Enable(AHB1, mask) }
func (r *RCC) EnableAHB2(mask uint32) { r.Enable(AHB2, mask) }
func (r *RCC) EnableAHB3(mask uint32) { r.Enable(AHB3, mask) }
func (r *RCC) EnableAPB1(mask uint32) { r.Enable(APB1, mask) }
func (r *RCC) EnableAPB2(mask uint32) { r.Enable(APB2, mask) }
