//go:build !tinygo

package nucleof767

import (
	"nucleo-go/drivers/gpio"
	"nucleo-go/drivers/rcc"
	"nucleo-go/sim"
)

// Sim is the board on the host memory model. Every peripheral block is
// gated on its RCC enable bit, so a program that skips a clock enable sees
// dead registers just as it would on silicon.
type Sim struct {
	*Board

	Mem   *sim.Memory
	PortB *sim.GPIO
	PortC *sim.GPIO
	PortD *sim.GPIO
	UART  *sim.USART
}

// NewSim wires a fresh simulated board.
func NewSim() *Sim {
	mem := sim.NewMemory()
	s := &Sim{
		Mem:   mem,
		PortB: sim.NewGPIO(),
		PortC: sim.NewGPIO(),
		PortD: sim.NewGPIO(),
		UART:  sim.NewUSART(),
	}
	ahb1 := rcc.Base + rcc.OffAHB1ENR
	for _, p := range []struct {
		idx uint8
		dev *sim.GPIO
	}{{gpio.B, s.PortB}, {gpio.C, s.PortC}, {gpio.D, s.PortD}} {
		mem.Map(gpio.PortBase(p.idx), sim.GPIOSize, p.dev, &sim.Gate{Addr: ahb1, Mask: rcc.GPIOEN(p.idx)})
	}
	mem.Map(ConsoleBase, sim.USARTSize, s.UART, &sim.Gate{Addr: rcc.Base + rcc.OffAPB1ENR, Mask: ConsoleClock})
	s.Board = Open(mem)
	return s
}

// Press drives the user button line.
func (s *Sim) Press(down bool) { s.PortC.Drive(Button.Line, down) }

// LEDState reports green, blue and red.
func (s *Sim) LEDState() (green, blue, red bool) {
	out := s.PortB.Output()
	return out&LEDGreen.Mask() != 0, out&LEDBlue.Mask() != 0, out&LEDRed.Mask() != 0
}
