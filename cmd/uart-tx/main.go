//go:build tinygo

// uart-tx brings up only the USART3 transmitter and prints the banner once
// a second through the putchar hook.
package main

import (
	"context"

	"nucleo-go/boards/nucleof767"
	"nucleo-go/regs"
	"nucleo-go/services/console"
	"nucleo-go/x/fmtx"
)

func main() {
	board := nucleof767.Open(regs.MMIO{})
	if err := board.InitConsole(nucleof767.ConsoleConfig(false)); err != nil {
		println("[uart-tx] init failed:", err.Error())
		return
	}
	out := fmtx.PutcharWriter(board.Console.Putchar)
	(&console.Hello{Out: out}).Run(context.Background())
}
