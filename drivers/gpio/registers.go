// Package gpio drives STM32F7 GPIO ports (RM0410 §6).
package gpio

// Port base addresses. Ports are 0x400 apart starting at GPIOA.
const (
	BaseA    uintptr = 0x4002_0000
	PortSize uintptr = 0x400
)

// PortBase returns the base of port index p (A=0 .. K=10).
func PortBase(p uint8) uintptr { return BaseA + uintptr(p)*PortSize }

// Port indices.
const (
	A uint8 = iota
	B
	C
	D
	E
	F
	G
	H
	I
	J
	K
)

// Register offsets.
const (
	OffMODER   = 0x00
	OffOTYPER  = 0x04
	OffOSPEEDR = 0x08
	OffPUPDR   = 0x0C
	OffIDR     = 0x10
	OffODR     = 0x14
	OffBSRR    = 0x18
	OffLCKR    = 0x1C
	OffAFRL    = 0x20
	OffAFRH    = 0x24
)

const (
	// Pins per port.
	NumPins = 16

	modeWidth  = 2
	speedWidth = 2
	pullWidth  = 2
	afWidth    = 4
	afPerReg   = 8

	// BSRR: writing bit n sets ODRn, writing bit n+16 resets it.
	bsrrResetShift = 16
)
