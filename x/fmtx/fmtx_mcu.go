//go:build tinygo

package fmtx

import (
	"io"
	"unicode/utf8"

	"nucleo-go/x/strconvx"
)

// DefaultOutput is used by Print/Printf on MCU builds. Board bring-up
// points it at the console, usually through PutcharWriter.
var DefaultOutput io.Writer = discard{}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// Verbs: %d %x %X %b %o %c %s %q %v %t %%, flags '0' and '-', width, and
// precision for strings. %x also hex-dumps strings and byte slices.
// No floats. Output to a writer is streamed through a fixed chunk, so a
// Printf over a putchar hook allocates nothing per call.

func Sprintf(format string, a ...any) string {
	var p printer
	p.printf(format, a)
	return string(p.buf)
}

func Sprint(a ...any) string {
	var p printer
	p.print(a)
	return string(p.buf)
}

func Fprintf(w io.Writer, format string, a ...any) (int, error) {
	p := printer{w: w}
	p.buf = p.chunk[:0]
	p.printf(format, a)
	return p.flush()
}

func Fprint(w io.Writer, a ...any) (int, error) {
	p := printer{w: w}
	p.buf = p.chunk[:0]
	p.print(a)
	return p.flush()
}

func Printf(format string, a ...any) (int, error) { return Fprintf(DefaultOutput, format, a...) }
func Print(a ...any) (int, error)                 { return Fprint(DefaultOutput, a...) }

func Errorf(format string, a ...any) error { return &stringError{Sprintf(format, a...)} }

type stringError struct{ s string }

func (e *stringError) Error() string { return e.s }

const chunkSize = 64

// printer appends to buf. With a writer, buf is a window on chunk that is
// drained whenever it fills; without one it grows.
type printer struct {
	w     io.Writer
	chunk [chunkSize]byte
	buf   []byte
	n     int
	err   error
}

type fmtFlags struct {
	width, prec    int
	hasPrec        bool
	zero, leftJust bool
}

func (p *printer) drain() {
	if p.err == nil && len(p.buf) > 0 {
		var n int
		n, p.err = p.w.Write(p.buf)
		p.n += n
	}
	p.buf = p.buf[:0]
}

func (p *printer) flush() (int, error) {
	p.drain()
	return p.n, p.err
}

func (p *printer) byte(c byte) {
	if p.w != nil && len(p.buf) == cap(p.buf) {
		p.drain()
	}
	if p.err == nil {
		p.buf = append(p.buf, c)
	}
}

func (p *printer) write(b []byte) {
	if p.w == nil {
		p.buf = append(p.buf, b...)
		return
	}
	for len(b) > 0 {
		if len(p.buf) == cap(p.buf) {
			p.drain()
		}
		if p.err != nil {
			return
		}
		k := copy(p.buf[len(p.buf):cap(p.buf)], b)
		p.buf = p.buf[:len(p.buf)+k]
		b = b[k:]
	}
}

func (p *printer) writeString(s string) {
	if p.w == nil {
		p.buf = append(p.buf, s...)
		return
	}
	for len(s) > 0 {
		if len(p.buf) == cap(p.buf) {
			p.drain()
		}
		if p.err != nil {
			return
		}
		k := copy(p.buf[len(p.buf):cap(p.buf)], s)
		p.buf = p.buf[:len(p.buf)+k]
		s = s[k:]
	}
}

func (p *printer) pad(n int, c byte) {
	for ; n > 0; n-- {
		p.byte(c)
	}
}

func (p *printer) bad(verb byte, why string) {
	p.writeString("%!")
	p.byte(verb)
	p.writeString(why)
}

func (p *printer) print(a []any) {
	for i, v := range a {
		if i > 0 && !isString(v) && !isString(a[i-1]) {
			p.byte(' ')
		}
		p.value(v, 'v', fmtFlags{})
	}
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func (p *printer) printf(format string, args []any) {
	ai := 0
	for i := 0; i < len(format); {
		if format[i] != '%' {
			j := i
			for j < len(format) && format[j] != '%' {
				j++
			}
			p.writeString(format[i:j])
			i = j
			continue
		}
		i++
		var f fmtFlags
	flags:
		for ; i < len(format); i++ {
			switch format[i] {
			case '0':
				f.zero = true
			case '-':
				f.leftJust = true
			default:
				break flags
			}
		}
		i = parseNum(format, i, &f.width)
		if i < len(format) && format[i] == '.' {
			f.hasPrec = true
			i = parseNum(format, i+1, &f.prec)
		}
		if i >= len(format) {
			p.writeString("%!(NOVERB)")
			return
		}
		verb := format[i]
		i++
		if verb == '%' {
			p.byte('%')
			continue
		}
		if ai >= len(args) {
			p.bad(verb, "(MISSING)")
			continue
		}
		p.arg(args[ai], verb, f)
		ai++
	}
}

func (p *printer) arg(v any, verb byte, f fmtFlags) {
	switch verb {
	case 'd', 'b', 'o', 'x', 'X':
		if u, neg, ok := integer(v); ok {
			p.number(neg, u, baseOf(verb), verb == 'X', f)
			return
		}
		if verb == 'x' || verb == 'X' {
			switch x := v.(type) {
			case string:
				p.hexString(x, verb == 'X')
				return
			case []byte:
				p.hexBytes(x, verb == 'X')
				return
			}
		}
	case 'c':
		if u, _, ok := integer(v); ok {
			var s [utf8.UTFMax]byte
			p.write(utf8.AppendRune(s[:0], rune(u)))
			return
		}
	case 's', 'q', 'v', 't':
		p.value(v, verb, f)
		return
	}
	p.bad(verb, "(BADTYPE)")
}

func (p *printer) value(v any, verb byte, f fmtFlags) {
	switch x := v.(type) {
	case nil:
		p.text("<nil>", 's', f)
	case string:
		p.text(x, verb, f)
	case []byte:
		p.text(string(x), verb, f)
	case bool:
		if x {
			p.text("true", 's', f)
		} else {
			p.text("false", 's', f)
		}
	case error:
		p.text(x.Error(), verb, f)
	case interface{ String() string }:
		p.text(x.String(), verb, f)
	default:
		if u, neg, ok := integer(v); ok && verb != 's' && verb != 'q' {
			p.number(neg, u, 10, false, f)
			return
		}
		p.bad(verb, "(BADTYPE)")
	}
}

func (p *printer) text(s string, verb byte, f fmtFlags) {
	if f.hasPrec && f.prec < len(s) {
		s = s[:f.prec]
	}
	if verb == 'q' {
		p.quote(s)
		return
	}
	n := f.width - utf8.RuneCountInString(s)
	if !f.leftJust {
		p.pad(n, ' ')
	}
	p.writeString(s)
	if f.leftJust {
		p.pad(n, ' ')
	}
}

func (p *printer) number(neg bool, u uint64, base int, upper bool, f fmtFlags) {
	var scratch [64]byte
	d := strconvx.AppendUint(scratch[:0], u, base)
	if upper {
		for i, c := range d {
			if 'a' <= c && c <= 'f' {
				d[i] = c - 'a' + 'A'
			}
		}
	}
	n := f.width - len(d)
	if neg {
		n--
	}
	if !f.leftJust && !f.zero {
		p.pad(n, ' ')
	}
	if neg {
		p.byte('-')
	}
	if f.zero && !f.leftJust {
		p.pad(n, '0')
	}
	p.write(d)
	if f.leftJust {
		p.pad(n, ' ')
	}
}

func baseOf(verb byte) int {
	switch verb {
	case 'b':
		return 2
	case 'o':
		return 8
	case 'x', 'X':
		return 16
	}
	return 10
}

const hexLower, hexUpper = "0123456789abcdef", "0123456789ABCDEF"

func (p *printer) hexBytes(b []byte, upper bool) {
	for _, c := range b {
		p.hexByte(c, upper)
	}
}

func (p *printer) hexString(s string, upper bool) {
	for i := 0; i < len(s); i++ {
		p.hexByte(s[i], upper)
	}
}

func (p *printer) hexByte(c byte, upper bool) {
	digits := hexLower
	if upper {
		digits = hexUpper
	}
	p.byte(digits[c>>4])
	p.byte(digits[c&0x0F])
}

// integer reports the magnitude and sign of any built-in integer.
func integer(v any) (u uint64, neg, ok bool) {
	switch x := v.(type) {
	case int:
		return signed(int64(x))
	case int8:
		return signed(int64(x))
	case int16:
		return signed(int64(x))
	case int32:
		return signed(int64(x))
	case int64:
		return signed(x)
	case uint:
		return uint64(x), false, true
	case uint8:
		return uint64(x), false, true
	case uint16:
		return uint64(x), false, true
	case uint32:
		return uint64(x), false, true
	case uint64:
		return x, false, true
	case uintptr:
		return uint64(x), false, true
	}
	return 0, false, false
}

func signed(i int64) (uint64, bool, bool) {
	if i < 0 {
		return uint64(-i), true, true
	}
	return uint64(i), false, true
}

func parseNum(s string, i int, out *int) int {
	n := 0
	start := i
	for i < len(s) && '0' <= s[i] && s[i] <= '9' {
		n = n*10 + int(s[i]-'0')
		i++
	}
	if i > start {
		*out = n
	}
	return i
}

func (p *printer) quote(s string) {
	p.byte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\', '"':
			p.byte('\\')
			p.byte(c)
		case '\n':
			p.writeString(`\n`)
		case '\r':
			p.writeString(`\r`)
		case '\t':
			p.writeString(`\t`)
		default:
			if c < 0x20 || c == 0x7F {
				p.writeString(`\x`)
				p.hexByte(c, false)
			} else {
				p.byte(c)
			}
		}
	}
	p.byte('"')
}
