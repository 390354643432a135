//go:build tinygo

package main

import (
	"context"

	"nucleo-go/boards/nucleof767"
	"nucleo-go/regs"
	"nucleo-go/services/blinky"
)

func main() {
	board := nucleof767.Open(regs.MMIO{})
	if err := board.InitLEDs(); err != nil {
		println("[blinky] led init failed:", err.Error())
		return
	}
	blinky.New(blinky.Config{
		LEDs: board.GPIOB,
		Mask: nucleof767.LEDs,
		Seed: nucleof767.LEDBlue.Mask(),
	}).Run(context.Background())
}
