package dimension

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("dimension not found")
	ErrDuplicateName      = errors.New("dimension name already in use")
	ErrInvalidScaleBounds = errors.New("scale minimum must be less than maximum")
	ErrSystemDimension    = errors.New("system dimensions cannot be modified")
	ErrDimensionInUse     = errors.New("dimension is referenced by a success profile")
)

// OutOfRangeError reports a value outside a dimension's scale or outside the
// 0-100 percentage domain. Values exactly at the bounds are in range.
type OutOfRangeError struct {
	Value float64
	Min   float64
	Max   float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("value %v outside range [%v, %v]", e.Value, e.Min, e.Max)
}
