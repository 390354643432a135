//go:build !tinygo

package strconvx

import "strconv"

// Same surface as the MCU build; strconv does the work.

func AppendUint(dst []byte, u uint64, base int) []byte { return strconv.AppendUint(dst, u, base) }
func AppendInt(dst []byte, i int64, base int) []byte   { return strconv.AppendInt(dst, i, base) }
func FormatUint(u uint64, base int) string             { return strconv.FormatUint(u, base) }
func FormatInt(i int64, base int) string               { return strconv.FormatInt(i, base) }
func Itoa(i int) string                                { return strconv.Itoa(i) }
