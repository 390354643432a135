package usart

import (
	"nucleo-go/errcode"
	"nucleo-go/x/poll"
)

// EOF is what Putchar returns when a character could not be sent.
const EOF = -1

// LineError reports a receive-side line condition. The byte that was in
// RDR when the condition was seen is returned with it; the flags have
// already been cleared.
type LineError struct {
	Code errcode.Code
	Byte byte
}

func (e *LineError) Error() string { return "usart: " + string(e.Code) }
func (e *LineError) Unwrap() error { return e.Code }

func lineCode(isr uint32) errcode.Code {
	switch {
	case isr&ISR_ORE != 0:
		return errcode.Overrun
	case isr&ISR_FE != 0:
		return errcode.Framing
	case isr&ISR_PE != 0:
		return errcode.Parity
	default:
		return errcode.Noise
	}
}

// Transmit waits for TXE and writes b to TDR. It returns the number of
// status reads it took.
//
// There is no timeout: if the transmitter never drains (peripheral not
// clocked, TE off, hardware fault) this never returns.
func (u *USART) Transmit(b byte) uint32 {
	n, _ := u.TransmitWithin(b, poll.Forever)
	return n
}

// TransmitWithin is Transmit bounded to limit status reads. On timeout
// nothing is written and errcode.Timeout is returned.
func (u *USART) TransmitWithin(b byte, limit uint32) (uint32, error) {
	isr := u.isr()
	n, err := poll.Until(poll.Flag(isr.Get, ISR_TXE), limit)
	if err != nil {
		return n, err
	}
	u.b.At(OffTDR).Set(uint32(b))
	return n, nil
}

// Receive waits for RXNE and returns RDR masked to the data width. Line
// errors are not examined. It blocks forever if nothing arrives.
func (u *USART) Receive() byte {
	b, _, _ := u.receive(poll.Forever, false)
	return b
}

// ReceiveWithin is Receive bounded to limit status reads. With
// Config.DetectErrors set, line errors come back as *LineError.
func (u *USART) ReceiveWithin(limit uint32) (byte, uint32, error) {
	return u.receive(limit, u.detect)
}

func (u *USART) receive(limit uint32, detect bool) (byte, uint32, error) {
	isr := u.isr()
	var last uint32
	n, err := poll.Until(func() bool {
		last = isr.Get()
		return last&ISR_RXNE != 0
	}, limit)
	if err != nil {
		return 0, n, err
	}
	b := byte(u.b.At(OffRDR).Get() & u.dataMask)
	if detect && last&lineErrors != 0 {
		u.b.At(OffICR).Set(last & lineErrors)
		return b, n, &LineError{Code: lineCode(last), Byte: b}
	}
	return b, n, nil
}

// Putchar sends one character and returns it, or EOF if the configured
// spin limit ran out first. It is the hook a formatted-output facility
// binds to.
func (u *USART) Putchar(ch int) int {
	if _, err := u.TransmitWithin(byte(ch), u.spinLimit); err != nil {
		return EOF
	}
	return ch
}

// WriteByte implements io.ByteWriter.
func (u *USART) WriteByte(c byte) error {
	_, err := u.TransmitWithin(c, u.spinLimit)
	return err
}

// Write sends p byte by byte.
func (u *USART) Write(p []byte) (int, error) {
	for i, c := range p {
		if _, err := u.TransmitWithin(c, u.spinLimit); err != nil {
			return i, err
		}
	}
	return len(p), nil
}

// WriteString sends s byte by byte.
func (u *USART) WriteString(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		if _, err := u.TransmitWithin(s[i], u.spinLimit); err != nil {
			return i, err
		}
	}
	return len(s), nil
}

// Read waits for the first byte, then takes whatever else is already
// waiting, up to len(p).
func (u *USART) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	b, _, err := u.ReceiveWithin(u.spinLimit)
	if err != nil {
		if le, ok := err.(*LineError); ok {
			p[0] = le.Byte
			return 1, err
		}
		return 0, err
	}
	p[0] = b
	n := 1
	for n < len(p) && u.Buffered() > 0 {
		b, _, err = u.ReceiveWithin(1)
		if err != nil {
			if le, ok := err.(*LineError); ok {
				p[n] = le.Byte
				n++
			}
			return n, err
		}
		p[n] = b
		n++
	}
	return n, nil
}

// Buffered reports 1 when RDR holds an unread byte.
func (u *USART) Buffered() int {
	if u.isr().Get()&ISR_RXNE != 0 {
		return 1
	}
	return 0
}

// Flush waits for the last frame to leave the shift register (TC).
func (u *USART) Flush() error {
	_, err := poll.Until(poll.Flag(u.isr().Get, ISR_TC), u.spinLimit)
	return err
}
