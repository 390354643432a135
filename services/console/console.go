// Package console is the ST-LINK serial program: a banner, then one byte
// read per banner, answering g/G.
package console

import (
	"context"
	"io"
	"time"

	"tinygo.org/x/drivers"

	"nucleo-go/errcode"
	"nucleo-go/x/fmtx"
)

const (
	Banner   = "\r\n\r\nHello, world!\r\n"
	Farewell = "Goodbye, cruel world..."
)

// Service runs the interactive console over any UART.
type Service struct {
	port drivers.UART
	buf  [1]byte
}

func New(port drivers.UART) *Service { return &Service{port: port} }

// Step prints the banner, waits for one byte and says goodbye to g or G.
// Read timeouts are retried until ctx ends, so a port configured without a
// spin limit blocks here exactly like the bare loop.
func (s *Service) Step(ctx context.Context) error {
	if _, err := fmtx.Fprint(s.port, Banner); err != nil {
		return err
	}
	c, err := s.readByte(ctx)
	if err != nil {
		return err
	}
	if c == 'g' || c == 'G' {
		_, err = fmtx.Fprint(s.port, Farewell)
	}
	return err
}

func (s *Service) readByte(ctx context.Context) (byte, error) {
	for {
		n, err := s.port.Read(s.buf[:])
		if n == 1 {
			if err != nil {
				println("[console] rx:", err.Error())
			}
			return s.buf[0], nil
		}
		if err != nil && errcode.Of(err) != errcode.Timeout {
			return 0, err
		}
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
	}
}

func (s *Service) Run(ctx context.Context) {
	for ctx.Err() == nil {
		if err := s.Step(ctx); err != nil && ctx.Err() == nil {
			println("[console] error:", err.Error())
		}
	}
	println("[console] stopped")
}

// Hello is the transmit-only variant: the banner on a timer, nothing read.
type Hello struct {
	Out   io.Writer
	Every time.Duration
	Sleep func(time.Duration)
}

func (h *Hello) Run(ctx context.Context) {
	sleep := h.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	every := h.Every
	if every == 0 {
		every = time.Second
	}
	for ctx.Err() == nil {
		if _, err := fmtx.Fprint(h.Out, Banner); err != nil {
			println("[hello] tx:", err.Error())
		}
		sleep(every)
	}
}
