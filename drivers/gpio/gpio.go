package gpio

import (
	"nucleo-go/errcode"
	"nucleo-go/regs"
)

// Mode is the 2-bit MODER value.
type Mode uint8

const (
	ModeInput Mode = iota
	ModeOutput
	ModeAltFunc
	ModeAnalog
)

func (m Mode) String() string {
	switch m {
	case ModeInput:
		return "input"
	case ModeOutput:
		return "output"
	case ModeAltFunc:
		return "alt"
	case ModeAnalog:
		return "analog"
	default:
		return "?"
	}
}

// OutputType is the OTYPER bit.
type OutputType uint8

const (
	PushPull OutputType = iota
	OpenDrain
)

// Speed is the 2-bit OSPEEDR value.
type Speed uint8

const (
	SpeedLow Speed = iota
	SpeedMedium
	SpeedHigh
	SpeedVeryHigh
)

// Pull is the 2-bit PUPDR value.
type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// PinConfig is everything Configure applies to one pin.
type PinConfig struct {
	Mode       Mode
	AltFunc    uint8 // AF0..AF15, used when Mode == ModeAltFunc
	OutputType OutputType
	Speed      Speed
	Pull       Pull
}

var ErrPinRange = &errcode.E{C: errcode.InvalidParams, Op: "gpio", Msg: "pin out of range"}

// Port is a handle over one GPIO port.
type Port struct {
	b     regs.Block
	index uint8
}

// New returns the port at base on mem. index is informational (A=0).
func New(mem regs.Mem, base uintptr, index uint8) *Port {
	return &Port{b: regs.Block{Mem: mem, Base: base}, index: index}
}

// Open returns port p at its standard address.
func Open(mem regs.Mem, p uint8) *Port { return New(mem, PortBase(p), p) }

// Index is the port letter as an index (A=0).
func (p *Port) Index() uint8 { return p.index }

// Name is the port letter, e.g. "D".
func (p *Port) Name() string { return string(rune('A' + p.index)) }

func modeField(pin uint8) regs.Field  { return regs.Field{Offset: pin * modeWidth, Width: modeWidth} }
func speedField(pin uint8) regs.Field { return regs.Field{Offset: pin * speedWidth, Width: speedWidth} }
func pullField(pin uint8) regs.Field  { return regs.Field{Offset: pin * pullWidth, Width: pullWidth} }

// AltFuncSlot locates the alternate-function selector of pin: AFRL (index 0)
// holds pins 0-7, AFRH (index 1) pins 8-15, and the field sits at
// (pin mod 8) * 4 inside the chosen register.
func AltFuncSlot(pin uint8) (index int, offset uint) {
	return int(pin / afPerReg), uint(pin%afPerReg) * afWidth
}

func (p *Port) afr(pin uint8) (regs.Register, regs.Field) {
	idx, off := AltFuncSlot(pin)
	r := p.b.At(OffAFRL)
	if idx == 1 {
		r = p.b.At(OffAFRH)
	}
	return r, regs.Field{Offset: uint8(off), Width: afWidth}
}

func checkPin(pin uint8) error {
	if pin >= NumPins {
		return ErrPinRange
	}
	return nil
}

// SetMode writes the MODER field of pin. Repeating it is harmless.
func (p *Port) SetMode(pin uint8, m Mode) error {
	if err := checkPin(pin); err != nil {
		return err
	}
	return regs.ModifyChecked(p.b.At(OffMODER), regs.Edit{Field: modeField(pin), Value: uint32(m)})
}

// Mode reads back the MODER field of pin.
func (p *Port) Mode(pin uint8) (Mode, error) {
	if err := checkPin(pin); err != nil {
		return 0, err
	}
	return Mode(modeField(pin).Extract(p.b.At(OffMODER).Get())), nil
}

// SetAltFunc selects which alternate function is routed to pin. It does
// not change the pin mode.
func (p *Port) SetAltFunc(pin uint8, af uint8) error {
	if err := checkPin(pin); err != nil {
		return err
	}
	r, f := p.afr(pin)
	return regs.ModifyChecked(r, regs.Edit{Field: f, Value: uint32(af)})
}

// AltFunc reads back the alternate-function selector of pin.
func (p *Port) AltFunc(pin uint8) (uint8, error) {
	if err := checkPin(pin); err != nil {
		return 0, err
	}
	r, f := p.afr(pin)
	return uint8(f.Extract(r.Get())), nil
}

// Configure applies cfg to pin. For alternate-function pins the selector is
// written before the mode so the pin never routes the wrong function.
func (p *Port) Configure(pin uint8, cfg PinConfig) error {
	if err := checkPin(pin); err != nil {
		return err
	}
	if cfg.Mode == ModeAltFunc {
		if err := p.SetAltFunc(pin, cfg.AltFunc); err != nil {
			return err
		}
	}
	if cfg.Mode == ModeOutput || cfg.Mode == ModeAltFunc {
		if err := regs.ModifyChecked(p.b.At(OffOTYPER), regs.Edit{Field: regs.Bit(pin), Value: uint32(cfg.OutputType)}); err != nil {
			return err
		}
		if err := regs.ModifyChecked(p.b.At(OffOSPEEDR), regs.Edit{Field: speedField(pin), Value: uint32(cfg.Speed)}); err != nil {
			return err
		}
	}
	if err := regs.ModifyChecked(p.b.At(OffPUPDR), regs.Edit{Field: pullField(pin), Value: uint32(cfg.Pull)}); err != nil {
		return err
	}
	return p.SetMode(pin, cfg.Mode)
}

// Set drives the pins in mask high. BSRR is write-only: no read-modify-write.
func (p *Port) Set(mask uint16) { p.b.At(OffBSRR).Set(uint32(mask)) }

// Clear drives the pins in mask low.
func (p *Port) Clear(mask uint16) { p.b.At(OffBSRR).Set(uint32(mask) << bsrrResetShift) }

// Toggle inverts the output latch of the pins in mask.
func (p *Port) Toggle(mask uint16) {
	r := p.b.At(OffODR)
	r.Set(r.Get() ^ uint32(mask))
}

// Get reads the input level of pin. A pin outside the port reads low and
// IDR is not touched.
func (p *Port) Get(pin uint8) bool {
	if checkPin(pin) != nil {
		return false
	}
	return regs.Bit(pin).Extract(p.b.At(OffIDR).Get()) != 0
}

// Input returns the whole input data register.
func (p *Port) Input() uint16 { return uint16(p.b.At(OffIDR).Get()) }

// Output returns the output latch.
func (p *Port) Output() uint16 { return uint16(p.b.At(OffODR).Get()) }

// Mask returns the port bits for pins. Pins outside the port are skipped.
func Mask(pins ...uint8) uint16 {
	var m uint16
	for _, pin := range pins {
		if pin < NumPins {
			m |= 1 << pin
		}
	}
	return m
}
