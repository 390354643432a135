package console_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"nucleo-go/boards/nucleof767"
	"nucleo-go/services/console"
	"nucleo-go/x/fmtx"
)

func bringUp(t *testing.T) *nucleof767.Sim {
	t.Helper()
	s := nucleof767.NewSim()
	cfg := nucleof767.ConsoleConfig(true)
	cfg.SpinLimit = 1000
	require.NoError(t, s.InitConsole(cfg))
	return s
}

func TestStepBannerAndFarewell(t *testing.T) {
	s := bringUp(t)
	svc := console.New(s.Console)
	ctx := context.Background()

	s.UART.Inject('x', 'G')
	require.NoError(t, svc.Step(ctx))
	require.Equal(t, console.Banner, string(s.UART.TakeTX()))

	require.NoError(t, svc.Step(ctx))
	require.Equal(t, console.Banner+console.Farewell, string(s.UART.TakeTX()))
}

func TestStepWaitsForInput(t *testing.T) {
	s := bringUp(t)
	svc := console.New(s.Console)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := svc.Step(ctx)
	require.Equal(t, context.DeadlineExceeded, err)
	require.Equal(t, console.Banner, string(s.UART.TX()))
}

func TestRunStopsOnCancel(t *testing.T) {
	s := bringUp(t)
	svc := console.New(s.Console)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	s.UART.Inject('g')
	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(string(s.UART.TX()), console.Farewell) {
		require.True(t, time.Now().Before(deadline), "no farewell")
		time.Sleep(time.Millisecond)
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestHelloRepeats(t *testing.T) {
	var out bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	n := 0
	h := &console.Hello{Out: &out, Sleep: func(time.Duration) {
		n++
		if n == 3 {
			cancel()
		}
	}}
	h.Run(ctx)
	require.Equal(t, strings.Repeat(console.Banner, 3), out.String())
}

func TestHelloOverPutchar(t *testing.T) {
	s := nucleof767.NewSim()
	require.NoError(t, s.InitConsole(nucleof767.ConsoleConfig(false)))

	ctx, cancel := context.WithCancel(context.Background())
	h := &console.Hello{Out: fmtx.PutcharWriter(s.Console.Putchar), Sleep: func(time.Duration) { cancel() }}
	h.Run(ctx)
	require.Equal(t, console.Banner, string(s.UART.TX()))
}
