// Package monitor turns a byte stream coming out of the simulated console
// into framed events: raw chunks, or text lines split on LF.
package monitor

import (
	"context"
	"time"

	"nucleo-go/x/mathx"
	"nucleo-go/x/timex"
)

// Port is a readable byte source with a readiness signal. sim.Tap is one.
type Port interface {
	Readable() <-chan struct{}
	Buffered() int
	RecvSomeContext(ctx context.Context, p []byte) (int, error)
}

type Mode string

const (
	Bytes Mode = "bytes"
	Lines Mode = "lines"
)

type Event struct {
	Source string
	Data   []byte
	TS     time.Time
}

type Config struct {
	Source    string
	Port      Port
	Mode      Mode
	MaxFrame  int           // clamp 16..256, 0 means 256
	IdleFlush time.Duration // clamp 0..2s (lines mode)
}

type Monitor struct {
	outQ chan Event
}

func New(outBuf int) *Monitor {
	if outBuf <= 0 {
		outBuf = 64
	}
	return &Monitor{outQ: make(chan Event, outBuf)}
}

func (m *Monitor) Events() <-chan Event { return m.outQ }

func (m *Monitor) emit(ev Event) {
	select {
	case m.outQ <- ev:
	default:
		// drop if consumer is slow
	}
}

// Watch starts a reader goroutine for cfg.Port. Returns cancel.
func (m *Monitor) Watch(ctx context.Context, cfg Config) func() {
	max := cfg.MaxFrame
	if max == 0 {
		max = 256
	}
	max = mathx.Clamp(max, 16, 256)
	idle := mathx.Clamp(cfg.IdleFlush, 0, 2*time.Second)
	cctx, cancel := context.WithCancel(ctx)

	go func() {
		buf := make([]byte, max)
		var line []byte

		timer := time.NewTimer(time.Hour)
		if !timer.Stop() {
			timex.DrainTimer(timer)
		}
		defer timer.Stop()

		flush := func(now time.Time) {
			if len(line) == 0 {
				return
			}
			payload := append([]byte(nil), line...)
			line = line[:0]
			m.emit(Event{Source: cfg.Source, Data: payload, TS: now})
		}

		for {
			if cfg.Mode == Lines && len(line) > 0 && idle > 0 {
				timex.ResetTimer(timer, idle)
			} else {
				timex.ResetTimer(timer, time.Hour)
			}
			select {
			case <-cctx.Done():
				return
			case <-cfg.Port.Readable():
				for {
					// Bound the blocking wait to assist shutdown.
					rctx, rcancel := context.WithTimeout(cctx, 250*time.Millisecond)
					n, _ := cfg.Port.RecvSomeContext(rctx, buf)
					rcancel()
					if n <= 0 {
						break
					}
					now := time.Now()
					if cfg.Mode != Lines {
						m.emit(Event{Source: cfg.Source, Data: append([]byte(nil), buf[:n]...), TS: now})
					} else {
						// CR is dropped, LF ends a line, long lines are truncated.
						for _, b := range buf[:n] {
							switch b {
							case '\n':
								flush(now)
							case '\r':
							default:
								if len(line) < max {
									line = append(line, b)
								}
							}
						}
					}
					if cfg.Port.Buffered() == 0 {
						break
					}
				}
			case <-timer.C:
				flush(time.Now())
			}
		}
	}()

	return cancel
}
