package nucleof767

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nucleo-go/drivers/gpio"
	"nucleo-go/drivers/usart"
	"nucleo-go/sim"
)

func gatedAccesses(s *Sim) *int {
	var n int
	s.Mem.OnAccess(func(a sim.Access) {
		if a.Gated {
			n++
		}
	})
	return &n
}

func TestInitConsoleClocksFirst(t *testing.T) {
	s := NewSim()
	gated := gatedAccesses(s)

	require.NoError(t, s.InitConsole(ConsoleConfig(true)))
	require.Zero(t, *gated)

	require.Equal(t, uint16(139), s.UART.Divisor())
	require.Equal(t, usart.CR1_UE|usart.CR1_TE|usart.CR1_RE, s.UART.CR1())
	require.Equal(t, gpio.ModeAltFunc, s.PortD.Mode(8))
	require.Equal(t, gpio.ModeAltFunc, s.PortD.Mode(9))
	for _, pin := range []Pin{ConsoleTX, ConsoleRX} {
		af, err := s.GPIOD.AltFunc(pin.Line)
		require.NoError(t, err)
		require.Equal(t, uint8(ConsoleAF), af)
	}
}

func TestInitConsoleTXOnly(t *testing.T) {
	s := NewSim()
	require.NoError(t, s.InitConsole(ConsoleConfig(false)))
	require.Equal(t, gpio.ModeInput, s.PortD.Mode(9))
	require.Equal(t, usart.CR1_UE|usart.CR1_TE, s.UART.CR1())
}

func TestUnclockedConsoleIsDead(t *testing.T) {
	s := NewSim()
	gated := gatedAccesses(s)

	require.NoError(t, s.Console.Configure(ConsoleConfig(true)))
	require.NotZero(t, *gated)
	require.Zero(t, s.UART.Divisor())
	require.False(t, s.Console.Enabled())

	_, err := s.Console.TransmitWithin('x', 50)
	require.Error(t, err)
}

func TestInitLEDsAndButton(t *testing.T) {
	s := NewSim()
	gated := gatedAccesses(s)
	require.NoError(t, s.InitButton())
	require.Zero(t, *gated)

	for _, p := range []Pin{LEDGreen, LEDBlue, LEDRed} {
		require.Equal(t, gpio.ModeOutput, s.PortB.Mode(p.Line))
	}
	require.Equal(t, gpio.ModeInput, s.PortC.Mode(Button.Line))

	s.GPIOB.Set(LEDs)
	g, b, r := s.LEDState()
	require.True(t, g && b && r)

	require.False(t, s.ButtonPressed())
	s.Press(true)
	require.True(t, s.ButtonPressed())
}

func TestLEDMask(t *testing.T) {
	require.Equal(t, uint16(1|1<<7|1<<14), LEDs)
}
