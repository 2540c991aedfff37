package hwutils

import (
	cerrors "github.com/cockroachdb/errors"
)

type Number interface {
	~int | ~uint | ~int32 | ~uint32
}

func CheckPow2[T Number](number T, name string) error {
	if number <= 0 || number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

func AlignUp(value int, alignment uint) int {
	return (value + int(alignment) - 1) & int(^(alignment - 1))
}

// DivideRoundUp returns the number of units of size granularity needed to cover value
func DivideRoundUp(value, granularity int) int {
	if granularity <= 0 {
		return value
	}
	return (value + granularity - 1) / granularity
}

func Max[T Number](a, b T) T {
	if a > b {
		return a
	}
	return b
}
