// Package nucleof767 is the NUCLEO-F767ZI wiring: which pins the LEDs,
// button and ST-LINK console sit on, and how each is brought up.
package nucleof767

import (
	"nucleo-go/drivers/gpio"
	"nucleo-go/drivers/rcc"
	"nucleo-go/drivers/usart"
	"nucleo-go/regs"
)

const Name = "nucleo_f767zi"

// ClockHz is the APB1 clock out of reset: HSI at 16 MHz, no PLL, no
// prescalers. Nothing here reprograms the clock tree.
const ClockHz = 16_000_000

// Pin is a port index and line.
type Pin struct {
	Port uint8
	Line uint8
}

func (p Pin) Mask() uint16 { return gpio.Mask(p.Line) }

// On-board user LEDs (UM1974 §6.5) and button (§6.6).
var (
	LEDGreen = Pin{gpio.B, 0}
	LEDBlue  = Pin{gpio.B, 7}
	LEDRed   = Pin{gpio.B, 14}
	Button   = Pin{gpio.C, 13}
)

// LEDs is the port mask of all three user LEDs.
var LEDs = LEDGreen.Mask() | LEDBlue.Mask() | LEDRed.Mask()

// ST-LINK virtual COM port: USART3 on PD8/PD9, AF7.
var (
	ConsoleTX = Pin{gpio.D, 8}
	ConsoleRX = Pin{gpio.D, 9}
)

const (
	ConsoleAF    = 7
	ConsoleBase  = usart.BaseUSART3
	ConsoleClock = rcc.USART3EN
	ConsoleBaud  = 115_200
)

// Board groups the peripheral handles the programs use.
type Board struct {
	RCC     *rcc.RCC
	GPIOB   *gpio.Port
	GPIOC   *gpio.Port
	GPIOD   *gpio.Port
	Console *usart.USART
}

// Open builds handles over mem. It touches no register.
func Open(mem regs.Mem) *Board {
	return &Board{
		RCC:     rcc.New(mem, rcc.Base),
		GPIOB:   gpio.Open(mem, gpio.B),
		GPIOC:   gpio.Open(mem, gpio.C),
		GPIOD:   gpio.Open(mem, gpio.D),
		Console: usart.New(mem, ConsoleBase),
	}
}

// InitLEDs clocks port B and makes the LED pins outputs.
func (b *Board) InitLEDs() error {
	b.RCC.EnableAHB1(rcc.GPIOEN(gpio.B))
	for _, p := range []Pin{LEDGreen, LEDBlue, LEDRed} {
		if err := b.GPIOB.SetMode(p.Line, gpio.ModeOutput); err != nil {
			return err
		}
	}
	return nil
}

// InitButton brings up the LEDs and makes PC13 an input.
func (b *Board) InitButton() error {
	b.RCC.EnableAHB1(rcc.GPIOEN(gpio.C))
	if err := b.InitLEDs(); err != nil {
		return err
	}
	return b.GPIOC.SetMode(Button.Line, gpio.ModeInput)
}

// ButtonPressed reads PC13. The button pulls the line high.
func (b *Board) ButtonPressed() bool { return b.GPIOC.Get(Button.Line) }

// ConsoleConfig is the 115200 8N1 console setup. rx adds the receiver and
// the PD9 pin.
func ConsoleConfig(rx bool) usart.Config {
	return usart.Config{
		ClockHz:  ClockHz,
		BaudRate: ConsoleBaud,
		DataBits: 8,
		Parity:   usart.ParityNone,
		StopBits: usart.Stop1,
		TX:       true,
		RX:       rx,
	}
}

// InitConsole routes USART3 to the ST-LINK pins and configures it.
// Clocks are enabled before any register of the block is written.
func (b *Board) InitConsole(cfg usart.Config) error {
	b.RCC.EnableAHB1(rcc.GPIOEN(gpio.D))

	pin := gpio.PinConfig{Mode: gpio.ModeAltFunc, AltFunc: ConsoleAF}
	if err := b.GPIOD.Configure(ConsoleTX.Line, pin); err != nil {
		return err
	}
	if cfg.RX {
		if err := b.GPIOD.Configure(ConsoleRX.Line, pin); err != nil {
			return err
		}
	}

	b.RCC.EnableAPB1(ConsoleClock)
	return b.Console.Configure(cfg)
}
