package rcc_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nucleo-go/drivers/rcc"
	"nucleo-go/sim"
)

func TestEnableIsAdditive(t *testing.T) {
	mem := sim.NewMemory()
	r := rcc.New(mem, rcc.Base)

	mem.Poke(rcc.Base+rcc.OffAHB1ENR, 1<<20) // something already on
	r.EnableAHB1(rcc.GPIOBEN)
	r.EnableAHB1(rcc.GPIODEN)
	require.Equal(t, uint32(1<<20|rcc.GPIOBEN|rcc.GPIODEN), mem.Peek(rcc.Base+rcc.OffAHB1ENR))

	// Idempotent.
	r.EnableAHB1(rcc.GPIOBEN)
	require.Equal(t, uint32(1<<20|rcc.GPIOBEN|rcc.GPIODEN), mem.Peek(rcc.Base+rcc.OffAHB1ENR))
	require.True(t, r.Enabled(rcc.AHB1, rcc.GPIOBEN|rcc.GPIODEN))
	require.False(t, r.Enabled(rcc.AHB1, rcc.GPIOCEN))
}

func TestGroupsMapToRegisters(t *testing.T) {
	mem := sim.NewMemory()
	r := rcc.New(mem, rcc.Base)

	r.EnableAPB1(rcc.USART3EN)
	r.EnableAPB2(rcc.USART1EN)
	r.EnableAHB2(1)
	r.EnableAHB3(1)
	require.Equal(t, uint32(1<<18), mem.Peek(0x4002_3840))
	require.Equal(t, uint32(1<<4), mem.Peek(0x4002_3844))
	require.Equal(t, uint32(1), mem.Peek(0x4002_3834))
	require.Equal(t, uint32(1), mem.Peek(0x4002_3838))
	require.Equal(t, uint32(0), mem.Peek(0x4002_3830))
}

func TestGPIOEN(t *testing.T) {
	require.Equal(t, rcc.GPIOAEN, rcc.GPIOEN(0))
	require.Equal(t, rcc.GPIODEN, rcc.GPIOEN(3))
	require.Equal(t, rcc.GPIOKEN, rcc.GPIOEN(10))
	require.Equal(t, "APB1", rcc.APB1.String())
}
