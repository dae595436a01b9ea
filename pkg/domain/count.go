package domain

import (
	"strconv"

	dErrors "storefront/pkg/domain-errors"
)

// Count bounds for a single quantity.
const (
	MinCount = 1
	MaxCount = 999
)

// Count is a bounded positive quantity (1-999) used for cart and order line
// quantities. It deliberately has no multiply: multiplying quantities is not
// meaningful in this domain.
type Count struct {
	value int
}

// NewCount validates and returns a Count.
func NewCount(v int) (Count, error) {
	if v < MinCount {
		return Count{}, dErrors.Newf(dErrors.CodeValidation, "quantity must be at least %d", MinCount)
	}
	if v > MaxCount {
		return Count{}, dErrors.Newf(dErrors.CodeValidation, "quantity cannot exceed %d", MaxCount)
	}
	return Count{value: v}, nil
}

// Value returns the quantity as an int.
func (c Count) Value() int {
	return c.value
}

// Equals compares two quantities by value.
func (c Count) Equals(other Count) bool {
	return c.value == other.value
}

// Add returns the sum, failing when the result exceeds MaxCount.
func (c Count) Add(other Count) (Count, error) {
	return NewCount(c.value + other.value)
}

// Sub returns the difference, failing when the result would drop below
// MinCount.
func (c Count) Sub(other Count) (Count, error) {
	return NewCount(c.value - other.value)
}

func (c Count) String() string {
	return strconv.Itoa(c.value)
}
