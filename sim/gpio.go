package sim

import (
	"sync"

	"nucleo-go/drivers/gpio"
)

// GPIO models one port: BSRR set/reset into ODR, IDR showing the output
// latch for output pins and the externally driven level otherwise.
type GPIO struct {
	mu     sync.Mutex
	moder  uint32
	odr    uint32
	inputs uint32
}

func NewGPIO() *GPIO { return &GPIO{} }

// Size of the register block.
const GPIOSize = gpio.PortSize

// Drive sets the external level seen on pin when it is not an output.
func (d *GPIO) Drive(pin uint8, high bool) {
	d.mu.Lock()
	if high {
		d.inputs |= 1 << pin
	} else {
		d.inputs &^= 1 << pin
	}
	d.mu.Unlock()
}

// Output is the output latch.
func (d *GPIO) Output() uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return uint16(d.odr)
}

// Mode is the configured mode of pin.
func (d *GPIO) Mode(pin uint8) gpio.Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return gpio.Mode(d.moder >> (2 * pin) & 3)
}

func (d *GPIO) idr() uint32 {
	var outs uint32
	for pin := uint8(0); pin < gpio.NumPins; pin++ {
		if gpio.Mode(d.moder>>(2*pin)&3) == gpio.ModeOutput {
			outs |= 1 << pin
		}
	}
	return (d.odr & outs) | (d.inputs &^ outs)
}

func (d *GPIO) Load(off uintptr, stored uint32) uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch off {
	case gpio.OffIDR:
		return d.idr()
	case gpio.OffODR:
		return d.odr
	case gpio.OffBSRR:
		return 0
	}
	return stored
}

func (d *GPIO) Store(off uintptr, old, v uint32) uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch off {
	case gpio.OffMODER:
		d.moder = v
	case gpio.OffIDR:
		return old
	case gpio.OffODR:
		d.odr = v & 0xFFFF
		return d.odr
	case gpio.OffBSRR:
		set, reset := v&0xFFFF, v>>16
		// Set wins when both bits of a pin are written.
		d.odr = (d.odr &^ reset) | set
		return 0
	}
	return v
}
