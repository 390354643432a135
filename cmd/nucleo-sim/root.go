package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"nucleo-go/boards/nucleof767"
	"nucleo-go/services/bridge"
	"nucleo-go/services/monitor"
)

var (
	runOpts = struct {
		duration  time.Duration
		input     string
		delay     time.Duration
		every     time.Duration
		raw       bool
		brokerURL string
		prefix    string
	}{}

	baudClock uint32

	rootCmd = &cobra.Command{
		Use:          "nucleo-sim",
		Short:        "Run NUCLEO-F767ZI programs on a simulated board",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// glog wants flag.Parsed; cobra already parsed our copy.
			flag.CommandLine.Parse(nil)
		},
	}

	runCmd = &cobra.Command{
		Use:       "run PROGRAM",
		Short:     "Run a program and print its console output",
		Args:      cobra.ExactArgs(1),
		ValidArgs: programNames(),
		RunE:      runProgram,
	}

	shellCmd = &cobra.Command{
		Use:   "shell",
		Short: "Interactive shell around a simulated board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := NewSession()
			sh := newShell(s)
			events, stop := s.Watch(monitor.Lines)
			defer stop()
			go func() {
				for ev := range events {
					sh.Println("[usart3] " + string(ev.Data))
				}
			}()
			sh.Run()
			if s.Running() != "" {
				s.Stop()
			}
			return nil
		},
	}

	scriptCmd = &cobra.Command{
		Use:   "script FILE",
		Short: "Run shell commands from a file, one per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			s := NewSession()
			events, stop := s.Watch(monitor.Lines)
			defer stop()
			go printEvents(events, nil)

			err = runScript(f, func(argv []string) error {
				glog.V(1).Infof("script: %s", strings.Join(argv, " "))
				return execute(s, argv, os.Stdout)
			})
			if s.Running() != "" {
				s.Stop()
			}
			return err
		},
	}

	baudCmd = &cobra.Command{
		Use:   "baud [RATE...]",
		Short: "Print BRR divisors and rate error for a peripheral clock",
		RunE: func(cmd *cobra.Command, args []string) error {
			argv := append([]string{"baud", fmt.Sprint(baudClock)}, args...)
			return execute(nil, argv, os.Stdout)
		},
	}
)

func init() {
	runCmd.Flags().DurationVarP(&runOpts.duration, "duration", "d", 2*time.Second, "How long to run; 0 runs until interrupted")
	runCmd.Flags().StringVarP(&runOpts.input, "input", "i", "", `Bytes typed on the console after start-up; \r \n escapes allowed`)
	runCmd.Flags().DurationVar(&runOpts.delay, "input-delay", 100*time.Millisecond, "Delay before typing --input")
	runCmd.Flags().DurationVar(&runOpts.every, "every", 250*time.Millisecond, "LED and banner period")
	runCmd.Flags().BoolVar(&runOpts.raw, "raw", false, "Print console output as raw chunks instead of lines")
	runCmd.Flags().StringVar(&runOpts.brokerURL, "broker", "", "Bridge the console to a broker: mqtt://localhost:1883/nucleo or redis://localhost:6379/0/nucleo")
	runCmd.Flags().StringVar(&runOpts.prefix, "prefix", "", "MQTT topic prefix (default: URL path, else nucleo)")

	baudCmd.Flags().Uint32VarP(&baudClock, "clock", "c", nucleof767.ClockHz, "Peripheral clock in Hz")

	rootCmd.AddCommand(runCmd, shellCmd, scriptCmd, baudCmd)
}

func runProgram(cmd *cobra.Command, args []string) error {
	s := NewSession()
	s.Every = runOpts.every

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if runOpts.duration > 0 {
		var c2 context.CancelFunc
		ctx, c2 = context.WithTimeout(ctx, runOpts.duration)
		defer c2()
	}

	mode := monitor.Lines
	if runOpts.raw {
		mode = monitor.Bytes
	}
	events, stop := s.Watch(mode)
	defer stop()

	var fwd chan monitor.Event
	if runOpts.brokerURL != "" {
		prefix := runOpts.prefix
		if prefix == "" {
			prefix = bridge.TopicPrefixFromURL(runOpts.brokerURL)
		}
		fwd = make(chan monitor.Event, 64)
		br := bridge.New(bridge.Config{URL: runOpts.brokerURL, Prefix: prefix}, s.Send)
		go func() {
			if err := br.Run(ctx, fwd); err != nil && ctx.Err() == nil {
				glog.Errorf("bridge: %v", err)
			}
		}()
	}
	go printEvents(events, fwd)

	if err := s.Start(args[0]); err != nil {
		return err
	}
	if runOpts.input != "" {
		go func() {
			select {
			case <-ctx.Done():
			case <-time.After(runOpts.delay):
				s.Send(unescape(runOpts.input))
			}
		}()
	}

	<-ctx.Done()
	err := s.Stop()
	glog.V(1).Info(s.LEDs())
	return err
}

// printEvents writes console events to stdout and, if fwd is set, passes
// them on without blocking.
func printEvents(events <-chan monitor.Event, fwd chan<- monitor.Event) {
	for ev := range events {
		fmt.Printf("%s\n", ev.Data)
		if fwd == nil {
			continue
		}
		select {
		case fwd <- ev:
		default:
			glog.Warning("bridge: dropping console event")
		}
	}
}

func newShell(s *Session) *ishell.Shell {
	sh := ishell.New()
	sh.SetPrompt("nucleo> ")
	for _, c := range commands {
		c := c
		sh.AddCmd(&ishell.Cmd{
			Name: c.name,
			Help: c.help,
			Func: func(ctx *ishell.Context) {
				var out bytes.Buffer
				if err := execute(s, append([]string{c.name}, ctx.Args...), &out); err != nil {
					ctx.Err(err)
					return
				}
				ctx.Print(out.String())
			},
		})
	}
	return sh
}
