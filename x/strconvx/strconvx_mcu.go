//go:build tinygo

package strconvx

const digits = "0123456789abcdefghijklmnopqrstuvwxyz"

// AppendUint appends u in base (2..36, anything else is 10) to dst.
// Digits go through a stack buffer so nothing escapes but dst.
func AppendUint(dst []byte, u uint64, base int) []byte {
	if base < 2 || base > 36 {
		base = 10
	}
	var buf [64]byte
	i := len(buf)
	b := uint64(base)
	for {
		i--
		buf[i] = digits[u%b]
		u /= b
		if u == 0 {
			break
		}
	}
	return append(dst, buf[i:]...)
}

func AppendInt(dst []byte, i int64, base int) []byte {
	if i < 0 {
		dst = append(dst, '-')
		// -MinInt64 wraps back to itself; as uint64 it is the right magnitude.
		return AppendUint(dst, uint64(-i), base)
	}
	return AppendUint(dst, uint64(i), base)
}

func FormatUint(u uint64, base int) string { return string(AppendUint(nil, u, base)) }
func FormatInt(i int64, base int) string   { return string(AppendInt(nil, i, base)) }
func Itoa(i int) string                    { return FormatInt(int64(i), 10) }
