//go:build tinygo

package main

import (
	"context"

	"nucleo-go/boards/nucleof767"
	"nucleo-go/regs"
	"nucleo-go/services/button"
)

func main() {
	board := nucleof767.Open(regs.MMIO{})
	if err := board.InitButton(); err != nil {
		println("[button] init failed:", err.Error())
		return
	}
	button.New(button.Config{
		LEDs:    board.GPIOB,
		Mask:    nucleof767.LEDs,
		Pressed: board.ButtonPressed,
	}).Run(context.Background())
}
