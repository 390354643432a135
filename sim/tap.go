package sim

import (
	"context"
	"sync"
)

// Tap buffers a byte stream (typically a USART's transmit side) and exposes
// it as a readable port with a readiness channel.
type Tap struct {
	mu  sync.Mutex
	buf []byte
	max int
	rd  chan struct{}
}

// NewTap keeps at most max unread bytes; older bytes are discarded first.
func NewTap(max int) *Tap {
	if max <= 0 {
		max = 4096
	}
	return &Tap{max: max, rd: make(chan struct{}, 1)}
}

// Put appends one byte. It never blocks.
func (t *Tap) Put(b byte) {
	t.mu.Lock()
	t.buf = append(t.buf, b)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = t.buf[over:]
	}
	t.mu.Unlock()
	select {
	case t.rd <- struct{}{}:
	default:
	}
}

func (t *Tap) Buffered() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buf)
}

func (t *Tap) Read(p []byte) (int, error) {
	t.mu.Lock()
	n := copy(p, t.buf)
	t.buf = t.buf[n:]
	t.mu.Unlock()
	return n, nil
}

// Readable is signalled (coalesced) after Put.
func (t *Tap) Readable() <-chan struct{} { return t.rd }

// RecvSomeContext returns buffered bytes, waiting for some if none are
// buffered, until ctx ends.
func (t *Tap) RecvSomeContext(ctx context.Context, p []byte) (int, error) {
	for {
		if t.Buffered() > 0 {
			return t.Read(p)
		}
		select {
		case <-t.rd:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}
