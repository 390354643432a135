package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"nucleo-go/boards/nucleof767"
)

// command is one shell/script verb. Output goes to w.
type command struct {
	name string
	help string
	run  func(s *Session, args []string, w io.Writer) error
}

var errUsage = errors.New("usage")

var commands = []command{
	{"start", "start PROGRAM  run blinky, button, hello or console", func(s *Session, args []string, w io.Writer) error {
		if len(args) != 1 {
			return errUsage
		}
		return s.Start(args[0])
	}},
	{"stop", "stop  stop the running program", func(s *Session, _ []string, w io.Writer) error {
		return s.Stop()
	}},
	{"status", "status  show the running program", func(s *Session, _ []string, w io.Writer) error {
		name := s.Running()
		if name == "" {
			name = "(none)"
		}
		fmt.Fprintln(w, name)
		return nil
	}},
	{"send", `send TEXT...  type TEXT on the console; single-quote \r \n escapes`, func(s *Session, args []string, w io.Writer) error {
		if len(args) == 0 {
			return errUsage
		}
		s.Send(unescape(strings.Join(args, " ")))
		return nil
	}},
	{"press", "press  hold the user button", func(s *Session, _ []string, w io.Writer) error {
		s.Board.Press(true)
		return nil
	}},
	{"release", "release  let go of the user button", func(s *Session, _ []string, w io.Writer) error {
		s.Board.Press(false)
		return nil
	}},
	{"leds", "leds  show the LED state", func(s *Session, _ []string, w io.Writer) error {
		fmt.Fprintln(w, s.LEDs())
		return nil
	}},
	{"regs", "regs  dump board registers", func(s *Session, _ []string, w io.Writer) error {
		dumpRegs(w, s.Board.Mem)
		return nil
	}},
	{"baud", "baud [CLOCK [RATE...]]  divisor table", func(s *Session, args []string, w io.Writer) error {
		clock := uint32(nucleof767.ClockHz)
		rates := standardRates
		if len(args) > 0 {
			v, err := strconv.ParseUint(args[0], 0, 32)
			if err != nil {
				return err
			}
			clock = uint32(v)
		}
		if len(args) > 1 {
			rates = nil
			for _, a := range args[1:] {
				v, err := strconv.ParseUint(a, 0, 32)
				if err != nil {
					return err
				}
				rates = append(rates, uint32(v))
			}
		}
		return writeBaudTable(w, clock, baudTable(clock, rates))
	}},
	{"wait", "wait DURATION  pause, e.g. wait 500ms", func(s *Session, args []string, w io.Writer) error {
		if len(args) != 1 {
			return errUsage
		}
		d, err := time.ParseDuration(args[0])
		if err != nil {
			return err
		}
		time.Sleep(d)
		return nil
	}},
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// execute runs one already-split command line.
func execute(s *Session, args []string, w io.Writer) error {
	if len(args) == 0 {
		return nil
	}
	c, ok := lookup(args[0])
	if !ok {
		return fmt.Errorf("unknown command %q", args[0])
	}
	if err := c.run(s, args[1:], w); err != nil {
		if err == errUsage {
			return fmt.Errorf("usage: %s", c.help)
		}
		return err
	}
	return nil
}

// unescape turns \r, \n, \t and \\ into their bytes; anything else is kept.
func unescape(s string) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			out = append(out, s[i])
			continue
		}
		i++
		switch s[i] {
		case 'r':
			out = append(out, '\r')
		case 'n':
			out = append(out, '\n')
		case 't':
			out = append(out, '\t')
		case '\\':
			out = append(out, '\\')
		default:
			out = append(out, '\\', s[i])
		}
	}
	return out
}
