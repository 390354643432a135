package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"

	"github.com/gliderlabs/ssh"
	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"nucleo-go/services/monitor"
)

var serveOpts = struct {
	addr     string
	password string
}{}

var serveCmd = &cobra.Command{
	Use:   "serve [PROGRAM]",
	Short: "Serve the simulated console over SSH, like a serial console server",
	Args:  cobra.MaximumNArgs(1),
	RunE:  serveConsole,
}

func init() {
	serveCmd.Flags().StringVarP(&serveOpts.addr, "addr", "a", "localhost:2222", "SSH listen address")
	serveCmd.Flags().StringVar(&serveOpts.password, "password", "", "Require this password; empty accepts any client")
	rootCmd.AddCommand(serveCmd)
}

// consoleServer fans the console transmit stream out to every attached
// client. Keystrokes from any client go to the console receive line.
type consoleServer struct {
	s *Session

	mu      sync.Mutex
	clients map[int]chan []byte
	next    int
}

func newConsoleServer(s *Session) *consoleServer {
	return &consoleServer{s: s, clients: map[int]chan []byte{}}
}

func (c *consoleServer) attach() (int, <-chan []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.next
	c.next++
	ch := make(chan []byte, 64)
	c.clients[id] = ch
	return id, ch
}

func (c *consoleServer) detach(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.clients, id)
}

// broadcast runs until events closes. A client that falls behind loses
// chunks rather than stalling the others.
func (c *consoleServer) broadcast(events <-chan monitor.Event) {
	for ev := range events {
		c.mu.Lock()
		for id, ch := range c.clients {
			select {
			case ch <- ev.Data:
			default:
				glog.Warningf("serve: client %d too slow, dropped %d bytes", id, len(ev.Data))
			}
		}
		c.mu.Unlock()
	}
}

// serveConn attaches rw until ctx ends or a write fails.
func (c *consoleServer) serveConn(ctx context.Context, rw io.ReadWriter) {
	id, out := c.attach()
	defer c.detach(id)
	glog.V(1).Infof("serve: client %d attached", id)

	go func() {
		buf := make([]byte, 64)
		for {
			n, err := rw.Read(buf)
			if n > 0 {
				c.s.Send(append([]byte(nil), buf[:n]...))
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			glog.V(1).Infof("serve: client %d detached", id)
			return
		case p := <-out:
			if _, err := rw.Write(p); err != nil {
				glog.V(1).Infof("serve: client %d: %v", id, err)
				return
			}
		}
	}
}

func serveConsole(cmd *cobra.Command, args []string) error {
	name := "console"
	if len(args) == 1 {
		name = args[0]
	}
	s := NewSession()
	cs := newConsoleServer(s)
	events, stop := s.Watch(monitor.Bytes)
	defer stop()
	go cs.broadcast(events)

	srv := &ssh.Server{
		Addr: serveOpts.addr,
		Handler: func(sess ssh.Session) {
			fmt.Fprintf(sess, "[nucleo-sim] %s on usart3, user %s\r\n", name, sess.User())
			cs.serveConn(sess.Context(), sess)
		},
	}
	if serveOpts.password != "" {
		srv.PasswordHandler = func(_ ssh.Context, pw string) bool { return pw == serveOpts.password }
	}

	if err := s.Start(name); err != nil {
		return err
	}
	defer s.Stop()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	glog.Infof("serve: %s console on ssh://%s", name, serveOpts.addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return srv.Close()
	}
}
