//go:build tinygo

package regs

import (
	"runtime/volatile"
	"unsafe"
)

// MMIO maps addresses straight onto the device bus.
type MMIO struct{}

func (MMIO) Reg(addr uintptr) Register {
	return (*volatile.Register32)(unsafe.Pointer(addr))
}
