package usart

import (
	"io"

	"tinygo.org/x/drivers"
)

// Ensure compile-time conformance with the TinyGo driver interfaces, so a
// USART can stand in for machine.UART wherever a driver expects one.
var (
	_ drivers.UART    = (*USART)(nil)
	_ io.ByteWriter   = (*USART)(nil)
	_ io.StringWriter = (*USART)(nil)
	_ io.ReadWriter   = (*USART)(nil)
)
