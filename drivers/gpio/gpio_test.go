package gpio_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nucleo-go/drivers/gpio"
	"nucleo-go/sim"
)

var portD = gpio.PortBase(gpio.D)

func TestPortBase(t *testing.T) {
	require.Equal(t, uintptr(0x4002_0000), gpio.PortBase(gpio.A))
	require.Equal(t, uintptr(0x4002_0400), gpio.PortBase(gpio.B))
	require.Equal(t, uintptr(0x4002_0C00), gpio.PortBase(gpio.D))
	require.Equal(t, "D", gpio.Open(sim.NewMemory(), gpio.D).Name())
}

func TestAltFuncSlot(t *testing.T) {
	for pin := uint8(0); pin < gpio.NumPins; pin++ {
		idx, off := gpio.AltFuncSlot(pin)
		require.Equal(t, int(pin/8), idx, "pin %d", pin)
		require.Equal(t, uint(pin%8)*4, off, "pin %d", pin)
	}
	idx, off := gpio.AltFuncSlot(8)
	require.Equal(t, 1, idx)
	require.Equal(t, uint(0), off)
	idx, off = gpio.AltFuncSlot(9)
	require.Equal(t, 1, idx)
	require.Equal(t, uint(4), off)
}

func TestModeRoundTripEveryPin(t *testing.T) {
	mem := sim.NewMemory()
	p := gpio.New(mem, portD, gpio.D)
	for pin := uint8(0); pin < gpio.NumPins; pin++ {
		for _, m := range []gpio.Mode{gpio.ModeAnalog, gpio.ModeOutput, gpio.ModeAltFunc, gpio.ModeInput} {
			require.NoError(t, p.SetMode(pin, m))
			got, err := p.Mode(pin)
			require.NoError(t, err)
			require.Equal(t, m, got, "pin %d", pin)
		}
	}
	// Every pin ended as input.
	require.Equal(t, uint32(0), mem.Peek(portD+gpio.OffMODER))
}

func TestSetModeLeavesOtherPins(t *testing.T) {
	mem := sim.NewMemory()
	p := gpio.New(mem, portD, gpio.D)
	mem.Poke(portD+gpio.OffMODER, 0xFFFF_FFFF)
	require.NoError(t, p.SetMode(8, gpio.ModeAltFunc))
	require.Equal(t, uint32(0xFFFE_FFFF), mem.Peek(portD+gpio.OffMODER))

	// Idempotent.
	require.NoError(t, p.SetMode(8, gpio.ModeAltFunc))
	require.Equal(t, uint32(0xFFFE_FFFF), mem.Peek(portD+gpio.OffMODER))
}

func TestAltFuncRoundTrip(t *testing.T) {
	mem := sim.NewMemory()
	p := gpio.New(mem, portD, gpio.D)
	for pin := uint8(0); pin < gpio.NumPins; pin++ {
		af := (pin + 3) % 16
		require.NoError(t, p.SetAltFunc(pin, af))
	}
	for pin := uint8(0); pin < gpio.NumPins; pin++ {
		af, err := p.AltFunc(pin)
		require.NoError(t, err)
		require.Equal(t, (pin+3)%16, af, "pin %d", pin)
	}
}

func TestAltFuncPin7DoesNotTouchPin8(t *testing.T) {
	mem := sim.NewMemory()
	p := gpio.New(mem, portD, gpio.D)
	require.NoError(t, p.SetAltFunc(8, 7))
	require.NoError(t, p.SetAltFunc(7, 0xF))
	require.Equal(t, uint32(0xF000_0000), mem.Peek(portD+gpio.OffAFRL))
	require.Equal(t, uint32(0x0000_0007), mem.Peek(portD+gpio.OffAFRH))
	af, err := p.AltFunc(8)
	require.NoError(t, err)
	require.Equal(t, uint8(7), af)
}

func TestRejects(t *testing.T) {
	mem := sim.NewMemory()
	p := gpio.New(mem, portD, gpio.D)
	require.Equal(t, gpio.ErrPinRange, p.SetMode(16, gpio.ModeOutput))
	require.Equal(t, gpio.ErrPinRange, p.SetAltFunc(16, 7))
	require.Error(t, p.SetAltFunc(3, 16))
	require.Error(t, p.SetMode(3, gpio.Mode(4)))
	require.Empty(t, mem.Touched())
}

func TestReadersRejectOutOfRangePins(t *testing.T) {
	mem := sim.NewMemory()
	dev := sim.NewGPIO()
	mem.Map(portD, sim.GPIOSize, dev, nil)
	p := gpio.New(mem, portD, gpio.D)
	dev.Drive(0, true)
	mem.ResetCounters()

	_, err := p.Mode(16)
	require.Equal(t, gpio.ErrPinRange, err)
	_, err = p.AltFunc(16)
	require.Equal(t, gpio.ErrPinRange, err)
	// Pin 16 must not alias pin 0.
	require.False(t, p.Get(16))
	require.True(t, p.Get(0))
	require.Equal(t, 1, mem.Reads(portD+gpio.OffIDR))

	require.Equal(t, gpio.Mask(0, 7), gpio.Mask(0, 7, 16, 23))
}

func TestConfigureUSARTPins(t *testing.T) {
	mem := sim.NewMemory()
	p := gpio.New(mem, portD, gpio.D)

	var order []uintptr
	mem.OnAccess(func(a sim.Access) {
		if a.Write {
			order = append(order, a.Addr-portD)
		}
	})
	cfg := gpio.PinConfig{Mode: gpio.ModeAltFunc, AltFunc: 7, Speed: gpio.SpeedVeryHigh, Pull: gpio.PullUp}
	require.NoError(t, p.Configure(8, cfg))
	require.NoError(t, p.Configure(9, cfg))

	require.Equal(t, uint32(0x77), mem.Peek(portD+gpio.OffAFRH))
	require.Equal(t, uint32(0b1010<<16), mem.Peek(portD+gpio.OffMODER))
	require.Equal(t, uint32(0b1111<<16), mem.Peek(portD+gpio.OffOSPEEDR))
	require.Equal(t, uint32(0b0101<<16), mem.Peek(portD+gpio.OffPUPDR))

	// Selector first, mode last.
	require.Equal(t, uintptr(gpio.OffAFRH), order[0])
	require.Equal(t, uintptr(gpio.OffMODER), order[len(order)-1])
}

func TestOutputPaths(t *testing.T) {
	mem := sim.NewMemory()
	dev := sim.NewGPIO()
	mem.Map(portD, sim.GPIOSize, dev, nil)
	p := gpio.New(mem, portD, gpio.D)

	leds := gpio.Mask(0, 7, 14)
	require.Equal(t, uint16(0x4081), leds)
	for _, pin := range []uint8{0, 7, 14} {
		require.NoError(t, p.SetMode(pin, gpio.ModeOutput))
	}

	mem.ResetCounters()
	p.Set(leds)
	require.Equal(t, leds, dev.Output())
	// BSRR is write-only: no read.
	require.Equal(t, 0, mem.Reads(portD+gpio.OffBSRR))
	require.Equal(t, 1, mem.Writes(portD+gpio.OffBSRR))

	p.Clear(gpio.Mask(7))
	require.Equal(t, gpio.Mask(0, 14), dev.Output())
	require.True(t, p.Get(0))
	require.False(t, p.Get(7))

	p.Toggle(leds)
	require.Equal(t, gpio.Mask(7), dev.Output())
	require.Equal(t, gpio.Mask(7), p.Output())
}

func TestInputLevel(t *testing.T) {
	mem := sim.NewMemory()
	dev := sim.NewGPIO()
	mem.Map(portD, sim.GPIOSize, dev, nil)
	p := gpio.New(mem, portD, gpio.D)

	require.False(t, p.Get(13))
	dev.Drive(13, true)
	require.True(t, p.Get(13))
	require.Equal(t, gpio.Mask(13), p.Input())
}
