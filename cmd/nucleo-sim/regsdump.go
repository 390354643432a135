package main

import (
	"fmt"
	"io"

	"nucleo-go/drivers/gpio"
	"nucleo-go/drivers/rcc"
	"nucleo-go/drivers/usart"
	"nucleo-go/sim"
)

type namedReg struct {
	Name string
	Addr uintptr
}

func portReg(p uint8, name string, off uintptr) namedReg {
	return namedReg{Name: fmt.Sprintf("GPIO%c_%s", 'A'+p, name), Addr: gpio.PortBase(p) + off}
}

// Status and data registers (ISR, RDR) are left out: reading them has side
// effects on the model.
var dumpedRegs = []namedReg{
	{"RCC_AHB1ENR", rcc.Base + rcc.OffAHB1ENR},
	{"RCC_APB1ENR", rcc.Base + rcc.OffAPB1ENR},
	portReg(gpio.B, "MODER", gpio.OffMODER),
	portReg(gpio.B, "ODR", gpio.OffODR),
	portReg(gpio.C, "MODER", gpio.OffMODER),
	portReg(gpio.C, "IDR", gpio.OffIDR),
	portReg(gpio.D, "MODER", gpio.OffMODER),
	portReg(gpio.D, "AFRH", gpio.OffAFRH),
	{"USART3_CR1", usart.BaseUSART3 + usart.OffCR1},
	{"USART3_CR2", usart.BaseUSART3 + usart.OffCR2},
	{"USART3_BRR", usart.BaseUSART3 + usart.OffBRR},
}

func dumpRegs(w io.Writer, mem *sim.Memory) {
	for _, r := range dumpedRegs {
		fmt.Fprintf(w, "%-12s 0x%08X = 0x%08X\n", r.Name, r.Addr, mem.Load(r.Addr))
	}
}
