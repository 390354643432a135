package usart

import (
	"nucleo-go/errcode"
	"nucleo-go/regs"
	"nucleo-go/x/mathx"
)

// Parity selects the parity bit appended to each frame.
type Parity uint8

const (
	ParityNone Parity = iota
	ParityEven
	ParityOdd
)

func (p Parity) String() string {
	switch p {
	case ParityEven:
		return "even"
	case ParityOdd:
		return "odd"
	default:
		return "none"
	}
}

// StopBits is the CR2 STOP code.
type StopBits uint8

const (
	Stop1 StopBits = iota
	Stop0_5
	Stop2
	Stop1_5
)

// Sequence orders the final enable step of Configure.
type Sequence uint8

const (
	// EnableThenTransfer sets UE first, then TE/RE. RM0410 asks for TE after
	// UE so the idle frame goes out on the configured line.
	EnableThenTransfer Sequence = iota
	// TransferThenEnable sets TE/RE first, then UE.
	TransferThenEnable
)

// Config describes one USART bring-up.
type Config struct {
	ClockHz  uint32 // peripheral (bus) clock feeding the USART
	BaudRate uint32
	DataBits uint8 // payload bits, 7..9 including parity must fit a 7/8/9-bit frame
	Parity   Parity
	StopBits StopBits
	TX, RX   bool
	Sequence Sequence

	// SpinLimit bounds Putchar and the io adaptors. poll.Forever (0) keeps
	// the unbounded baseline.
	SpinLimit uint32
	// DetectErrors makes ReceiveWithin report overrun/framing/parity/noise.
	DetectErrors bool
}

const (
	DefaultBaud     = 115200
	DefaultDataBits = 8
)

var (
	ErrBaudZero     = &errcode.E{C: errcode.InvalidParams, Op: "usart.divisor", Msg: "baud rate is zero"}
	ErrDivisorRange = &errcode.E{C: errcode.InvalidParams, Op: "usart.divisor", Msg: "divisor outside BRR range"}
	ErrWordLength   = &errcode.E{C: errcode.InvalidParams, Op: "usart.format", Msg: "unsupported word length"}
	ErrStopBits     = &errcode.E{C: errcode.InvalidParams, Op: "usart.format", Msg: "unsupported stop bits"}
	ErrParity       = &errcode.E{C: errcode.InvalidParams, Op: "usart.format", Msg: "unsupported parity"}
)

// ComputeDivisor returns round(clock/baud), rounding half up, using 64-bit
// intermediates so large clocks and small rates do not overflow.
// A zero baud yields zero.
func ComputeDivisor(clockHz, baud uint32) uint32 {
	return uint32(mathx.RoundDiv(uint64(clockHz), uint64(baud)))
}

// Divisor is ComputeDivisor checked against the 16-bit BRR.
func Divisor(clockHz, baud uint32) (uint16, error) {
	if baud == 0 {
		return 0, ErrBaudZero
	}
	d := ComputeDivisor(clockHz, baud)
	if !mathx.Between(d, MinDivisor, uint32(fieldBRR.Max())) {
		return 0, ErrDivisorRange
	}
	return uint16(d), nil
}

// ActualBaud is the rate a divisor really produces.
func ActualBaud(clockHz uint32, div uint16) uint32 {
	if div == 0 {
		return 0
	}
	return uint32(mathx.RoundDiv(uint64(clockHz), uint64(div)))
}

func wordLength(dataBits uint8, p Parity) (uint32, error) {
	frame := dataBits
	if p != ParityNone {
		frame++
	}
	switch frame {
	case 7:
		return word7, nil
	case 8:
		return word8, nil
	case 9:
		return word9, nil
	}
	return 0, ErrWordLength
}

// USART is a handle over one U(S)ART instance. All transport calls go
// through it; there is no package-level state.
type USART struct {
	b regs.Block

	dataMask  uint32
	spinLimit uint32
	detect    bool
}

// New returns the USART at base on mem.
func New(mem regs.Mem, base uintptr) *USART {
	return &USART{b: regs.Block{Mem: mem, Base: base}, dataMask: 0xFF}
}

func (u *USART) cr1() regs.Register { return u.b.At(OffCR1) }
func (u *USART) cr2() regs.Register { return u.b.At(OffCR2) }
func (u *USART) isr() regs.Register { return u.b.At(OffISR) }

// SetFormat programs word length and parity with one masked update of CR1,
// and stop bits with one masked update of CR2. The peripheral should be
// disabled (UE=0) while this runs.
func (u *USART) SetFormat(dataBits uint8, p Parity, stop StopBits) error {
	mask, err := u.writeFormat(dataBits, p, stop)
	if err != nil {
		return err
	}
	u.dataMask = mask
	return nil
}

// writeFormat programs CR1/CR2 and returns the receive data mask for the
// frame. Nothing is written on error.
func (u *USART) writeFormat(dataBits uint8, p Parity, stop StopBits) (uint32, error) {
	m, err := wordLength(dataBits, p)
	if err != nil {
		return 0, err
	}
	if p > ParityOdd {
		return 0, ErrParity
	}
	if uint32(stop) > fieldSTOP.Max() {
		return 0, ErrStopBits
	}
	pce, ps := uint32(0), uint32(0)
	if p != ParityNone {
		pce = 1
		if p == ParityOdd {
			ps = 1
		}
	}
	edits := append(fieldM.Edits(m),
		regs.Edit{Field: fieldPCE, Value: pce},
		regs.Edit{Field: fieldPS, Value: ps},
	)
	regs.Modify(u.cr1(), edits...)
	regs.Modify(u.cr2(), regs.Edit{Field: fieldSTOP, Value: uint32(stop)})
	return fieldRDR.Max() >> (9 - dataBits), nil
}

// SetBaudRate derives the divisor for clockHz/baud and writes BRR. It is
// not re-derived if the clock changes later; call again.
func (u *USART) SetBaudRate(clockHz, baud uint32) error {
	div, err := Divisor(clockHz, baud)
	if err != nil {
		return err
	}
	u.b.At(OffBRR).Set(uint32(div))
	return nil
}

// BaudDivisor reads back BRR.
func (u *USART) BaudDivisor() uint16 { return uint16(fieldBRR.Extract(u.b.At(OffBRR).Get())) }

// SetTransferEnable sets TE and RE together in one masked update.
func (u *USART) SetTransferEnable(tx, rx bool) {
	regs.Modify(u.cr1(),
		regs.Edit{Field: fieldTE, Value: b2u(tx)},
		regs.Edit{Field: fieldRE, Value: b2u(rx)},
	)
}

// Enable sets UE. Format and baud must already be programmed.
func (u *USART) Enable() { regs.Modify(u.cr1(), regs.Edit{Field: fieldUE, Value: 1}) }

// Disable clears UE.
func (u *USART) Disable() { regs.Modify(u.cr1(), regs.Edit{Field: fieldUE, Value: 0}) }

// Enabled reports UE.
func (u *USART) Enabled() bool { return regs.HasBits(u.cr1(), CR1_UE) }

// Configure brings the USART up: UE off, format, baud, then UE and TE/RE in
// the order cfg.Sequence names. Zero DataBits and BaudRate take defaults.
// On error the peripheral is left disabled and the handle keeps its
// previous data width, spin limit and error detection.
func (u *USART) Configure(cfg Config) error {
	if cfg.DataBits == 0 {
		cfg.DataBits = DefaultDataBits
	}
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaud
	}

	u.Disable()
	div, err := Divisor(cfg.ClockHz, cfg.BaudRate)
	if err != nil {
		return err
	}
	mask, err := u.writeFormat(cfg.DataBits, cfg.Parity, cfg.StopBits)
	if err != nil {
		return err
	}
	u.b.At(OffBRR).Set(uint32(div))
	u.dataMask, u.spinLimit, u.detect = mask, cfg.SpinLimit, cfg.DetectErrors

	switch cfg.Sequence {
	case TransferThenEnable:
		u.SetTransferEnable(cfg.TX, cfg.RX)
		u.Enable()
	default:
		u.Enable()
		u.SetTransferEnable(cfg.TX, cfg.RX)
	}
	return nil
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
