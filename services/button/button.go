// Package button flashes the LEDs while the user button is released and
// freezes them while it is held.
package button

import (
	"context"
	"time"

	"nucleo-go/drivers/gpio"
)

const DefaultInterval = 250 * time.Millisecond

type Config struct {
	LEDs    *gpio.Port
	Mask    uint16
	Pressed func() bool
	Every   time.Duration
	Sleep   func(time.Duration)
}

type Service struct {
	cfg Config
}

func New(cfg Config) *Service {
	if cfg.Every == 0 {
		cfg.Every = DefaultInterval
	}
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}
	return &Service{cfg: cfg}
}

// Step is one on/off cycle. The button is sampled before each half, and a
// held button skips that half without waiting.
func (s *Service) Step() {
	if !s.cfg.Pressed() {
		s.cfg.LEDs.Set(s.cfg.Mask)
		s.cfg.Sleep(s.cfg.Every)
	}
	if !s.cfg.Pressed() {
		s.cfg.LEDs.Clear(s.cfg.Mask)
		s.cfg.Sleep(s.cfg.Every)
	}
}

func (s *Service) Run(ctx context.Context) {
	for ctx.Err() == nil {
		s.Step()
	}
	println("[button] stopped")
}
