package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/golang/glog"

	"nucleo-go/boards/nucleof767"
	"nucleo-go/services/blinky"
	"nucleo-go/services/button"
	"nucleo-go/services/console"
	"nucleo-go/services/monitor"
	"nucleo-go/sim"
	"nucleo-go/x/fmtx"
)

// simSpinLimit bounds console reads so a stopped program notices its
// context; the firmware itself runs unbounded.
const simSpinLimit = 10_000

// program brings up what it needs on the board and runs until ctx ends.
type program func(ctx context.Context, b *nucleof767.Sim, every time.Duration) error

var programs = map[string]program{
	"blinky": func(ctx context.Context, b *nucleof767.Sim, every time.Duration) error {
		if err := b.InitLEDs(); err != nil {
			return err
		}
		blinky.New(blinky.Config{
			LEDs:  b.GPIOB,
			Mask:  nucleof767.LEDs,
			Seed:  nucleof767.LEDBlue.Mask(),
			Every: every,
		}).Run(ctx)
		return nil
	},
	"button": func(ctx context.Context, b *nucleof767.Sim, every time.Duration) error {
		if err := b.InitButton(); err != nil {
			return err
		}
		button.New(button.Config{
			LEDs:    b.GPIOB,
			Mask:    nucleof767.LEDs,
			Pressed: heldBackoff(b.ButtonPressed),
			Every:   every,
		}).Run(ctx)
		return nil
	},
	"hello": func(ctx context.Context, b *nucleof767.Sim, every time.Duration) error {
		cfg := nucleof767.ConsoleConfig(false)
		cfg.SpinLimit = simSpinLimit
		if err := b.InitConsole(cfg); err != nil {
			return err
		}
		(&console.Hello{Out: fmtx.PutcharWriter(b.Console.Putchar), Every: every}).Run(ctx)
		return nil
	},
	"console": func(ctx context.Context, b *nucleof767.Sim, _ time.Duration) error {
		cfg := nucleof767.ConsoleConfig(true)
		cfg.SpinLimit = simSpinLimit
		if err := b.InitConsole(cfg); err != nil {
			return err
		}
		console.New(b.Console).Run(ctx)
		return nil
	},
}

// heldBackoff wraps a button read. A held button makes the loop spin with
// no sleep at all; pausing briefly keeps the shell responsive.
func heldBackoff(pressed func() bool) func() bool {
	return func() bool {
		if pressed() {
			time.Sleep(time.Millisecond)
			return true
		}
		return false
	}
}

func programNames() []string {
	names := make([]string, 0, len(programs))
	for n := range programs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

var (
	errRunning    = errors.New("a program is already running")
	errNotRunning = errors.New("no program running")
)

// Session is one simulated board and at most one program running on it.
type Session struct {
	Board *nucleof767.Sim
	Tap   *sim.Tap
	Every time.Duration

	mu     sync.Mutex
	name   string
	cancel context.CancelFunc
	done   chan error
}

func NewSession() *Session {
	s := &Session{
		Board: nucleof767.NewSim(),
		Tap:   sim.NewTap(4096),
		Every: blinky.DefaultInterval,
	}
	s.Board.UART.OnTransmit(func(b byte) {
		if glog.V(3) {
			glog.Infof("usart3 tx %q", b)
		}
		s.Tap.Put(b)
	})
	return s
}

// Start runs program name in the background.
func (s *Session) Start(name string) error {
	p, ok := programs[name]
	if !ok {
		return fmt.Errorf("unknown program %q (have %v)", name, programNames())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return errRunning
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	s.name, s.cancel, s.done = name, cancel, done
	go func() {
		err := p(ctx, s.Board, s.Every)
		if err != nil {
			glog.Errorf("%s: %v", name, err)
		}
		done <- err
	}()
	glog.Infof("started %s", name)
	return nil
}

// Stop cancels the running program and waits for it.
func (s *Session) Stop() error {
	s.mu.Lock()
	cancel, done, name := s.cancel, s.done, s.name
	s.cancel, s.done, s.name = nil, nil, ""
	s.mu.Unlock()
	if cancel == nil {
		return errNotRunning
	}
	cancel()
	err := <-done
	glog.Infof("stopped %s", name)
	return err
}

// Running names the current program, or "".
func (s *Session) Running() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// Send queues text on the console receive line.
func (s *Session) Send(text []byte) { s.Board.UART.Inject(text...) }

// Watch frames console output into events until the returned stop is
// called.
func (s *Session) Watch(mode monitor.Mode) (<-chan monitor.Event, func()) {
	m := monitor.New(64)
	stop := m.Watch(context.Background(), monitor.Config{
		Source:    "usart3",
		Port:      s.Tap,
		Mode:      mode,
		MaxFrame:  256,
		IdleFlush: 200 * time.Millisecond,
	})
	return m.Events(), stop
}

var (
	greenOn = color.New(color.FgGreen, color.Bold).SprintFunc()
	blueOn  = color.New(color.FgBlue, color.Bold).SprintFunc()
	redOn   = color.New(color.FgRed, color.Bold).SprintFunc()
)

// LEDs formats the LED latch. Lit LEDs are coloured on a terminal.
func (s *Session) LEDs() string {
	g, b, r := s.Board.LEDState()
	return fmt.Sprintf("green=%s blue=%s red=%s", onOff(g, greenOn), onOff(b, blueOn), onOff(r, redOn))
}

func onOff(v bool, lit func(...interface{}) string) string {
	if v {
		return lit("on")
	}
	return "off"
}
