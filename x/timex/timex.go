package timex

import (
	"time"

	"nucleo-go/x/mathx"
)

// PeriodFromHz returns a nanosecond period for a requested frequency.
// freqHz==0 is coerced to 1 to avoid division by zero.
func PeriodFromHz(freqHz uint32) uint64 {
	if freqHz == 0 {
		freqHz = 1
	}
	return uint64(1_000_000_000 / uint64(freqHz))
}

// FrameTime is how long one character takes on the wire: start bit, data,
// parity and stop bits at baud, rounded up to the next nanosecond.
func FrameTime(baud uint32, bitsPerFrame int) time.Duration {
	if baud == 0 {
		baud = 1
	}
	return time.Duration(mathx.CeilDiv(uint64(bitsPerFrame)*1_000_000_000, uint64(baud)))
}

// ResetTimer stops t, drains a pending fire and re-arms it for d.
func ResetTimer(t *time.Timer, d time.Duration) {
	if d < 0 {
		d = 0
	}
	if !t.Stop() {
		DrainTimer(t)
	}
	t.Reset(d)
}

func DrainTimer(t *time.Timer) {
	select {
	case <-t.C:
	default:
	}
}
