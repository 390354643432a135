package strconvx

import (
	"math"
	"testing"
)

func TestFormatUintBases(t *testing.T) {
	for _, c := range []struct {
		u    uint64
		base int
		want string
	}{
		{0, 2, "0"},
		{5, 2, "101"},
		{0x40004800, 16, "40004800"},
		{139, 10, "139"},
		{35, 36, "z"},
		{math.MaxUint64, 16, "ffffffffffffffff"},
	} {
		if got := FormatUint(c.u, c.base); got != c.want {
			t.Fatalf("FormatUint(%d,%d) = %q, want %q", c.u, c.base, got, c.want)
		}
	}
}

func TestFormatInt(t *testing.T) {
	for _, c := range []struct {
		i    int64
		want string
	}{
		{0, "0"},
		{-15, "-15"},
		{115200, "115200"},
		{math.MinInt64, "-9223372036854775808"},
	} {
		if got := FormatInt(c.i, 10); got != c.want {
			t.Fatalf("FormatInt(%d) = %q, want %q", c.i, got, c.want)
		}
	}
	if got := Itoa(-7); got != "-7" {
		t.Fatalf("Itoa(-7) = %q", got)
	}
}

func TestAppendKeepsPrefix(t *testing.T) {
	buf := make([]byte, 0, 16)
	buf = append(buf, "BRR="...)
	buf = AppendUint(buf, 0x8b, 16)
	buf = append(buf, ' ')
	buf = AppendInt(buf, -1, 10)
	if got, want := string(buf), "BRR=8b -1"; got != want {
		t.Fatalf("append chain = %q, want %q", got, want)
	}
}
