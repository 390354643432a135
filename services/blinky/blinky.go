// Package blinky toggles the user LEDs forever.
package blinky

import (
	"context"
	"time"

	"nucleo-go/drivers/gpio"
)

// DefaultInterval is roughly what the million-iteration spin of the bare
// loop takes at 16 MHz.
const DefaultInterval = 250 * time.Millisecond

type Config struct {
	LEDs  *gpio.Port
	Mask  uint16 // pins toggled each step
	Seed  uint16 // pins flipped once before the loop, so the LEDs alternate
	Every time.Duration

	// Sleep defaults to time.Sleep.
	Sleep func(time.Duration)
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

// Step toggles once and waits.
func (s *Service) Step() {
	s.cfg.LEDs.Toggle(s.cfg.Mask)
	s.cfg.Sleep(s.cfg.Every)
}

// Run seeds the pattern and steps until ctx ends.
func (s *Service) Run(ctx context.Context) {
	if s.cfg.Seed != 0 {
		s.cfg.LEDs.Toggle(s.cfg.Seed)
	}
	for ctx.Err() == nil {
		s.Step()
	}
	println("[blinky] stopped")
}
