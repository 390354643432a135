package sim

import (
	"sync"

	"nucleo-go/drivers/usart"
)

// USART models the polled paths of an STM32F7 USART: TXE/TC after a
// configurable number of status reads, RXNE fed from an injected queue,
// write-1-to-clear error flags, and frames dropped while UE/TE/RE are off.
type USART struct {
	mu sync.Mutex

	cr1 uint32
	brr uint32

	txLatency uint32
	txWait    uint32
	tx        []byte
	dropped   int
	onTX      func(byte)

	rxLatency uint32
	rxWait    uint32
	rxq       []uint32
	rdr       uint32
	rxFull    bool
	faults    uint32 // raised with the next latched byte
	flags     uint32 // PE/FE/NF/ORE currently set
}

func NewUSART() *USART { return &USART{} }

// Size of the register block.
const USARTSize = 0x400

// SetTxLatency makes TXE appear on the n-th status read after each TDR
// write. It also arms the next wait, so a Transmit issued right after sees
// exactly n polls. n <= 1 means ready on the first read.
func (d *USART) SetTxLatency(n uint32) {
	d.mu.Lock()
	d.txLatency = n
	d.txWait = n
	d.mu.Unlock()
}

// SetRxLatency makes RXNE appear on the n-th status read once a byte is
// waiting.
func (d *USART) SetRxLatency(n uint32) {
	d.mu.Lock()
	d.rxLatency = n
	d.mu.Unlock()
}

// OnTransmit registers fn to receive every transmitted byte. fn runs with
// the bus locked and must not touch the Memory.
func (d *USART) OnTransmit(fn func(byte)) {
	d.mu.Lock()
	d.onTX = fn
	d.mu.Unlock()
}

// Inject queues bytes on the receive line.
func (d *USART) Inject(p ...byte) {
	d.mu.Lock()
	for _, b := range p {
		d.rxq = append(d.rxq, uint32(b))
	}
	d.mu.Unlock()
}

// InjectFault raises the given ISR line-error flags together with the
// next received byte.
func (d *USART) InjectFault(flags uint32) {
	d.mu.Lock()
	d.faults |= flags & (usart.ISR_PE | usart.ISR_FE | usart.ISR_NF | usart.ISR_ORE)
	d.mu.Unlock()
}

// TX returns a copy of everything transmitted so far.
func (d *USART) TX() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]byte(nil), d.tx...)
}

// TakeTX returns and forgets everything transmitted so far.
func (d *USART) TakeTX() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := d.tx
	d.tx = nil
	return out
}

// Dropped counts TDR writes made while the transmitter was off.
func (d *USART) Dropped() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}

// Pending is the number of injected bytes not yet received.
func (d *USART) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := len(d.rxq)
	if d.rxFull {
		n++
	}
	return n
}

// Divisor is the last value written to BRR.
func (d *USART) Divisor() uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return uint16(d.brr)
}

// CR1 is the last value written to CR1.
func (d *USART) CR1() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cr1
}

func (d *USART) on(mask uint32) bool { return d.cr1&(usart.CR1_UE|mask) == usart.CR1_UE|mask }

func (d *USART) Load(off uintptr, stored uint32) uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch off {
	case usart.OffISR:
		return d.status()
	case usart.OffRDR:
		d.rxFull = false
		return d.rdr
	case usart.OffICR, usart.OffTDR:
		return 0
	}
	return stored
}

func (d *USART) status() uint32 {
	if d.txWait > 0 {
		d.txWait--
	}
	var isr uint32
	if d.txWait == 0 {
		isr |= usart.ISR_TXE | usart.ISR_TC
	}
	if !d.rxFull && len(d.rxq) > 0 && d.on(usart.CR1_RE) {
		if d.rxWait == 0 {
			d.rxWait = d.rxLatency
			if d.rxWait == 0 {
				d.rxWait = 1
			}
		}
		d.rxWait--
		if d.rxWait == 0 {
			d.rdr, d.rxq = d.rxq[0], d.rxq[1:]
			d.rxFull = true
			d.flags |= d.faults
			d.faults = 0
		}
	}
	if d.rxFull {
		isr |= usart.ISR_RXNE
	}
	return isr | d.flags
}

func (d *USART) Store(off uintptr, old, v uint32) uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch off {
	case usart.OffCR1:
		d.cr1 = v
	case usart.OffBRR:
		d.brr = v & 0xFFFF
		return d.brr
	case usart.OffISR:
		return old
	case usart.OffICR:
		d.flags &^= v
		return 0
	case usart.OffTDR:
		if !d.on(usart.CR1_TE) {
			d.dropped++
			return 0
		}
		b := byte(v)
		d.tx = append(d.tx, b)
		d.txWait = d.txLatency
		if d.onTX != nil {
			d.onTX(b)
		}
		return 0
	}
	return v
}
