package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"nucleo-go/services/console"
	"nucleo-go/services/monitor"
)

func TestBaudTable(t *testing.T) {
	rows := baudTable(16_000_000, []uint32{115200, 9600, 100, 0})
	require.Len(t, rows, 4)

	require.NoError(t, rows[0].Err)
	require.Equal(t, uint16(139), rows[0].Divisor)
	require.Equal(t, uint32(115108), rows[0].Actual)
	require.True(t, rows[0].ErrPct < 0 && rows[0].ErrPct > -0.1)

	require.Equal(t, uint16(1667), rows[1].Divisor)
	require.Error(t, rows[2].Err)
	require.Error(t, rows[3].Err)

	var out bytes.Buffer
	require.NoError(t, writeBaudTable(&out, 16_000_000, rows))
	require.Contains(t, out.String(), "115108")
}

func TestUnescape(t *testing.T) {
	require.Equal(t, []byte("g\r\n"), unescape(`g\r\n`))
	require.Equal(t, []byte(`a\qb\`), unescape(`a\qb\`))
	require.Equal(t, []byte("\\"), unescape(`\\`))
}

func TestRunScript(t *testing.T) {
	src := `
# bring the console up
start console
send 'g\r'   # shlex keeps quoted escapes
wait 10ms
`
	var got [][]string
	err := runScript(strings.NewReader(src), func(args []string) error {
		got = append(got, args)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, [][]string{{"start", "console"}, {"send", `g\r`}, {"wait", "10ms"}}, got)
}

func TestRunScriptStopsAtFailure(t *testing.T) {
	calls := 0
	err := runScript(strings.NewReader("leds\nbogus\nleds\n"), func(args []string) error {
		calls++
		if args[0] == "bogus" {
			return errors.New("nope")
		}
		return nil
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "line 2")
	require.Equal(t, 2, calls)
}

func TestExecuteUnknownAndUsage(t *testing.T) {
	s := NewSession()
	var out bytes.Buffer
	require.Error(t, execute(s, []string{"fly"}, &out))

	err := execute(s, []string{"start"}, &out)
	require.Error(t, err)
	require.Contains(t, err.Error(), "usage")

	require.Error(t, execute(s, []string{"start", "doom"}, &out))
	require.Error(t, execute(s, []string{"stop"}, &out))
}

func TestSessionBlinky(t *testing.T) {
	s := NewSession()
	s.Every = time.Millisecond
	var out bytes.Buffer

	require.NoError(t, execute(s, []string{"start", "blinky"}, &out))
	require.Error(t, execute(s, []string{"start", "blinky"}, &out))
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, execute(s, []string{"stop"}, &out))

	require.NoError(t, execute(s, []string{"leds"}, &out))
	require.Contains(t, out.String(), "green=")

	out.Reset()
	require.NoError(t, execute(s, []string{"regs"}, &out))
	require.Contains(t, out.String(), "GPIOB_MODER")
	// PB0, PB7, PB14 outputs.
	require.Contains(t, out.String(), "0x10004001")
}

func TestSessionConsole(t *testing.T) {
	s := NewSession()
	events, stop := s.Watch(monitor.Lines)
	defer stop()

	var out bytes.Buffer
	require.NoError(t, execute(s, []string{"start", "console"}, &out))
	defer s.Stop()

	waitLine := func(want string) {
		t.Helper()
		deadline := time.After(2 * time.Second)
		for {
			select {
			case ev := <-events:
				if string(ev.Data) == want {
					return
				}
			case <-deadline:
				t.Fatalf("no %q line", want)
			}
		}
	}
	waitLine("Hello, world!")
	require.NoError(t, execute(s, []string{"send", `G`}, &out))
	// The next banner's line feed ends the farewell line.
	waitLine(console.Farewell)
}

func TestBaudCommand(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, execute(nil, []string{"baud", "16000000", "115200"}, &out))
	require.Contains(t, out.String(), "139")
	require.Error(t, execute(nil, []string{"baud", "fast"}, &out))
}
