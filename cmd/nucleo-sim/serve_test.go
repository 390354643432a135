package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"nucleo-go/services/console"
	"nucleo-go/services/monitor"
)

// client is the far end of a serveConn: what the server writes collects in
// got, what the test types goes to keys.
type client struct {
	keys *io.PipeWriter

	mu  sync.Mutex
	got bytes.Buffer
}

func dial(t *testing.T, ctx context.Context, cs *consoleServer) *client {
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	c := &client{keys: inW}
	go func() {
		buf := make([]byte, 256)
		for {
			n, err := outR.Read(buf)
			c.mu.Lock()
			c.got.Write(buf[:n])
			c.mu.Unlock()
			if err != nil {
				return
			}
		}
	}()
	go func() {
		cs.serveConn(ctx, struct {
			io.Reader
			io.Writer
		}{inR, outW})
		outW.Close()
	}()
	t.Cleanup(func() { inW.Close() })
	return c
}

func (c *client) waitFor(t *testing.T, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		ok := strings.Contains(c.got.String(), want)
		c.mu.Unlock()
		if ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	t.Fatalf("client never saw %q, got %q", want, c.got.String())
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func clients(cs *consoleServer) func() int {
	return func() int {
		cs.mu.Lock()
		defer cs.mu.Unlock()
		return len(cs.clients)
	}
}

func TestConsoleServerFansOut(t *testing.T) {
	cs := newConsoleServer(NewSession())
	events := make(chan monitor.Event)
	go cs.broadcast(events)
	defer close(events)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a, b := dial(t, ctx, cs), dial(t, ctx, cs)
	n := clients(cs)

	eventually(t, func() bool { return n() == 2 })

	events <- monitor.Event{Data: []byte("boot\r\n")}
	a.waitFor(t, "boot")
	b.waitFor(t, "boot")

	cancel()
	eventually(t, func() bool { return n() == 0 })
}

func TestConsoleServerTypesIntoProgram(t *testing.T) {
	s := NewSession()
	cs := newConsoleServer(s)
	events, stop := s.Watch(monitor.Bytes)
	defer stop()
	go cs.broadcast(events)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := dial(t, ctx, cs)
	n := clients(cs)
	eventually(t, func() bool { return n() == 1 })

	require.NoError(t, s.Start("console"))
	defer s.Stop()

	c.waitFor(t, "Hello, world!")
	_, err := c.keys.Write([]byte("g"))
	require.NoError(t, err)
	c.waitFor(t, console.Farewell)
}
