// Package rcc ungates peripheral bus clocks on STM32F7 parts (RM0410 §5).
package rcc

// Base address of the RCC block.
const Base uintptr = 0x4002_3800

// Register offsets.
const (
	OffAHB1ENR = 0x30
	OffAHB2ENR = 0x34
	OffAHB3ENR = 0x38
	OffAPB1ENR = 0x40
	OffAPB2ENR = 0x44
)

// AHB1ENR: GPIOAEN..GPIOKEN occupy bits 0..10.
const (
	GPIOAEN uint32 = 1 << iota
	GPIOBEN
	GPIOCEN
	GPIODEN
	GPIOEEN
	GPIOFEN
	GPIOGEN
	GPIOHEN
	GPIOIEN
	GPIOJEN
	GPIOKEN
)

// GPIOEN returns the AHB1ENR bit for port index p (A=0).
func GPIOEN(p uint8) uint32 { return 1 << p }

// APB1ENR.
const (
	USART2EN uint32 = 1 << 17
	USART3EN uint32 = 1 << 18
	UART4EN  uint32 = 1 << 19
	UART5EN  uint32 = 1 << 20
	UART7EN  uint32 = 1 << 30
	UART8EN  uint32 = 1 << 31
)

// APB2ENR.
const (
	USART1EN uint32 = 1 << 4
	USART6EN uint32 = 1 << 5
)
