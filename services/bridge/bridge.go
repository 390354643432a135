// Package bridge links the simulated console to a pub/sub broker (MQTT or
// Redis): whatever the firmware transmits is published, whatever arrives on
// the rx topic is fed to the receiver.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/jpillora/backoff"

	"nucleo-go/services/monitor"
)

// Config selects the broker and topic prefix.
type Config struct {
	URL    string `json:"url"`    // mqtt://host:1883?client-id=sim or redis://host:6379
	Prefix string `json:"prefix"` // topics are <prefix>/tx, <prefix>/rx, <prefix>/state

	// Backoff bounds for reconnects.
	MinBackoff time.Duration `json:"min_backoff,omitempty"`
	MaxBackoff time.Duration `json:"max_backoff,omitempty"`
}

// Broker is the slice of a pub/sub client the bridge needs.
type Broker interface {
	Connect(ctx context.Context) error
	Publish(topic string, payload []byte, retained bool) error
	Subscribe(topic string, fn func(topic string, payload []byte)) error
	// Lost delivers the error that ended an established link. Close does
	// not signal it.
	Lost() <-chan error
	Close()
}

// Dial builds the broker for a config, by URL scheme. Tests replace it.
var Dial = func(cfg Config) (Broker, error) {
	if isRedisURL(cfg.URL) {
		return DialRedis(cfg.URL)
	}
	return DialMQTT(cfg.URL)
}

// Service forwards console traffic. Rx receives bytes from the broker.
type Service struct {
	cfg Config
	rx  func([]byte)
}

func New(cfg Config, rx func([]byte)) *Service {
	if cfg.Prefix == "" {
		cfg.Prefix = "nucleo"
	}
	if cfg.MinBackoff <= 0 {
		cfg.MinBackoff = 250 * time.Millisecond
	}
	if cfg.MaxBackoff < cfg.MinBackoff {
		cfg.MaxBackoff = 5 * time.Second
		if cfg.MaxBackoff < cfg.MinBackoff {
			cfg.MaxBackoff = cfg.MinBackoff
		}
	}
	return &Service{cfg: cfg, rx: rx}
}

func (s *Service) topic(leaf string) string { return s.cfg.Prefix + "/" + leaf }

// Run supervises the broker link until ctx ends. events is the console
// transmit stream, usually from a monitor.
func (s *Service) Run(ctx context.Context, events <-chan monitor.Event) error {
	b, err := Dial(s.cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	retry := s.newBackoff()
	for {
		if err := b.Connect(ctx); err != nil {
			delay := retry.Duration()
			glog.Warningf("bridge: connect failed: %v (retry in %s)", err, delay)
			if !sleep(ctx, delay) {
				return ctx.Err()
			}
			continue
		}
		retry.Reset()
		s.publishState(b, "up", "link_established", nil)

		err := s.handleLink(ctx, b, events)
		if ctx.Err() != nil {
			s.publishState(b, "idle", "stopped", nil)
			return nil
		}
		delay := retry.Duration()
		glog.Warningf("bridge: link lost: %v (retry in %s)", err, delay)
		if !sleep(ctx, delay) {
			return ctx.Err()
		}
	}
}

func (s *Service) handleLink(ctx context.Context, b Broker, events <-chan monitor.Event) error {
	err := b.Subscribe(s.topic("rx"), func(topic string, payload []byte) {
		glog.V(2).Infof("bridge: rx %q", payload)
		if s.rx != nil {
			s.rx(payload)
		}
	})
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-b.Lost():
			return err
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			glog.V(2).Infof("bridge: tx %q", ev.Data)
			if err := b.Publish(s.topic("tx"), ev.Data, false); err != nil {
				return err
			}
		}
	}
}

func (s *Service) publishState(b Broker, level, status string, err error) {
	payload := map[string]any{
		"level":  level,
		"status": status,
		"ts_ms":  time.Now().UnixMilli(),
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	p, _ := json.Marshal(payload)
	if err := b.Publish(s.topic("state"), p, true); err != nil {
		glog.Warningf("bridge: state publish: %v", err)
	}
}

var errNotConnected = errors.New("bridge: not connected")

// lostSignal holds at most one pending link loss.
type lostSignal chan error

func newLostSignal() lostSignal { return make(lostSignal, 1) }

func (l lostSignal) raise(err error) {
	select {
	case l <- err:
	default:
	}
}

// clear drops a loss left over from a previous link.
func (l lostSignal) clear() {
	select {
	case <-l:
	default:
	}
}

// DecodeConfig reads a JSON config.
func DecodeConfig(p []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(p, &cfg); err != nil {
		return cfg, fmt.Errorf("bridge config: %w", err)
	}
	if cfg.URL == "" {
		return cfg, errors.New("bridge config: url required")
	}
	return cfg, nil
}

// newBackoff doubles from MinBackoff up to MaxBackoff, without jitter.
func (s *Service) newBackoff() *backoff.Backoff {
	return &backoff.Backoff{Min: s.cfg.MinBackoff, Max: s.cfg.MaxBackoff, Factor: 2}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
