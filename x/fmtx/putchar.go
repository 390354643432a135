package fmtx

import (
	"io"

	"nucleo-go/errcode"
)

// EOF is the putchar failure value.
const EOF = -1

// ErrPutchar is returned when the hook reports EOF.
var ErrPutchar = &errcode.E{C: errcode.Timeout, Op: "fmtx.putchar", Msg: "character not sent"}

type putcharWriter func(int) int

func (f putcharWriter) Write(p []byte) (int, error) {
	for i, c := range p {
		if f(int(c)) == EOF {
			return i, ErrPutchar
		}
	}
	return len(p), nil
}

// PutcharWriter turns a C-style putchar hook (returns the character, or
// EOF on failure) into an io.Writer. Each byte is one call.
func PutcharWriter(putchar func(int) int) io.Writer { return putcharWriter(putchar) }

// SetPutchar points DefaultOutput at putchar.
func SetPutchar(putchar func(int) int) { DefaultOutput = PutcharWriter(putchar) }
