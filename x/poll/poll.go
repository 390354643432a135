// Package poll is the one place firmware busy-waits on hardware flags.
package poll

import "nucleo-go/errcode"

// Forever disables the bound. A wait with no bound can block indefinitely if
// the hardware never reports ready (no peer attached, peripheral unclocked,
// fault); that is the baseline contract for polled I/O on this board.
const Forever uint32 = 0

// Until evaluates ready until it returns true or limit evaluations have
// failed. polls counts every evaluation, including the successful one, and
// saturates at the maximum uint32.
//
// With a non-zero limit that runs out, Until returns errcode.Timeout and
// polls == limit. Nothing is undone on timeout.
func Until(ready func() bool, limit uint32) (polls uint32, err error) {
	for {
		if polls != ^uint32(0) {
			polls++
		}
		if ready() {
			return polls, nil
		}
		if limit != Forever && polls >= limit {
			return polls, errcode.Timeout
		}
	}
}

// Flag adapts a status-register read into a ready predicate.
func Flag(get func() uint32, mask uint32) func() bool {
	return func() bool { return get()&mask != 0 }
}
