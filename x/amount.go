package x

import (
	"math"

	"github.com/iov-one/dispenser/errors"
)

// AddAmount returns the sum of two amounts or ErrOverflow if the result does
// not fit into uint64.
func AddAmount(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, errors.Wrapf(errors.ErrOverflow, "%d + %d", a, b)
	}
	return a + b, nil
}

// SubAmount returns a - b or ErrInsufficientAmount if b is greater than a.
func SubAmount(a, b uint64) (uint64, error) {
	if b > a {
		return 0, errors.Wrapf(errors.ErrInsufficientAmount, "%d < %d", a, b)
	}
	return a - b, nil
}

// SumAmounts returns the sum of all amounts, failing with ErrOverflow
// instead of wrapping around.
func SumAmounts(amounts ...uint64) (uint64, error) {
	var total uint64
	for i, a := range amounts {
		next, err := AddAmount(total, a)
		if err != nil {
			return 0, errors.Wrapf(err, "amount %d", i)
		}
		total = next
	}
	return total, nil
}
