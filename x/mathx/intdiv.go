package mathx

import "golang.org/x/exp/constraints"

// CeilDiv returns ceil(a/b). A zero divisor yields 0.
func CeilDiv[T constraints.Unsigned](a, b T) T {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

// RoundDiv returns floor((a + b/2)/b), i.e. a/b rounded half up.
// A zero divisor yields 0. Callers pick T wide enough that a + b/2
// cannot wrap; clock/baud maths uses uint64.
func RoundDiv[T constraints.Unsigned](a, b T) T {
	if b == 0 {
		return 0
	}
	return (a + b/2) / b
}
