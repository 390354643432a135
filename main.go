//go:build tinygo

package main

import (
	"context"

	"nucleo-go/boards/nucleof767"
	"nucleo-go/drivers/usart"
	"nucleo-go/regs"
	"nucleo-go/services/console"
	"nucleo-go/x/fmtx"
)

func main() {
	board := nucleof767.Open(regs.MMIO{})
	if err := board.InitConsole(nucleof767.ConsoleConfig(true)); err != nil {
		println("[main] console init failed:", err.Error())
		select {}
	}
	fmtx.SetPutchar(board.Console.Putchar)
	div := board.Console.BaudDivisor()
	fmtx.Printf("\r\n%s USART3 BRR=0x%04x (%d baud)\r\n",
		nucleof767.Name, div, usart.ActualBaud(nucleof767.ClockHz, div))

	console.New(board.Console).Run(context.Background())
}
