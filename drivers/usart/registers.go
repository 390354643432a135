// Package usart configures STM32F7 U(S)ART peripherals and moves bytes
// through them by polling status flags (RM0410 §34).
package usart

import "nucleo-go/regs"

// Instance base addresses.
const (
	BaseUSART1 uintptr = 0x4001_1000
	BaseUSART2 uintptr = 0x4000_4400
	BaseUSART3 uintptr = 0x4000_4800
	BaseUART4  uintptr = 0x4000_4C00
	BaseUART5  uintptr = 0x4000_5000
	BaseUSART6 uintptr = 0x4001_1400
	BaseUART7  uintptr = 0x4000_7800
	BaseUART8  uintptr = 0x4000_7C00
)

// Register offsets.
const (
	OffCR1  = 0x00
	OffCR2  = 0x04
	OffCR3  = 0x08
	OffBRR  = 0x0C
	OffGTPR = 0x10
	OffRTOR = 0x14
	OffRQR  = 0x18
	OffISR  = 0x1C
	OffICR  = 0x20
	OffRDR  = 0x24
	OffTDR  = 0x28
)

// CR1 bits.
const (
	CR1_UE  uint32 = 1 << 0
	CR1_RE  uint32 = 1 << 2
	CR1_TE  uint32 = 1 << 3
	CR1_PS  uint32 = 1 << 9
	CR1_PCE uint32 = 1 << 10
	CR1_M0  uint32 = 1 << 12
	CR1_M1  uint32 = 1 << 28
)

// ISR bits.
const (
	ISR_PE   uint32 = 1 << 0
	ISR_FE   uint32 = 1 << 1
	ISR_NF   uint32 = 1 << 2
	ISR_ORE  uint32 = 1 << 3
	ISR_IDLE uint32 = 1 << 4
	ISR_RXNE uint32 = 1 << 5
	ISR_TC   uint32 = 1 << 6
	ISR_TXE  uint32 = 1 << 7
)

// ICR bits. Write 1 to clear the matching ISR flag.
const (
	ICR_PECF   uint32 = 1 << 0
	ICR_FECF   uint32 = 1 << 1
	ICR_NCF    uint32 = 1 << 2
	ICR_ORECF  uint32 = 1 << 3
	ICR_IDLECF uint32 = 1 << 4
	ICR_TCCF   uint32 = 1 << 6
)

// Field layout.
var (
	fieldUE  = regs.Bit(0)
	fieldRE  = regs.Bit(2)
	fieldTE  = regs.Bit(3)
	fieldPS  = regs.Bit(9)
	fieldPCE = regs.Bit(10)

	// M[1:0] is split: M0 is CR1 bit 12, M1 is CR1 bit 28.
	fieldM = regs.Split{regs.Bit(12), regs.Bit(28)}

	fieldSTOP = regs.Field{Offset: 12, Width: 2}
	fieldBRR  = regs.Field{Offset: 0, Width: 16}
	fieldRDR  = regs.Field{Offset: 0, Width: 9}
)

// Word length codes for M[1:0]. The length counts the parity bit.
const (
	word8 uint32 = 0b00
	word9 uint32 = 0b01
	word7 uint32 = 0b10
)

// MinDivisor is the smallest BRR value allowed with 16x oversampling.
const MinDivisor = 16

const lineErrors = ISR_PE | ISR_FE | ISR_NF | ISR_ORE
