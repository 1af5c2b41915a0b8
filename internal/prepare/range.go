package prepare

import (
	"errors"
	"fmt"
)

// ErrInvalidRange is returned for ranges that don't start at a positive index
// or end before they start.
var ErrInvalidRange = errors.New("invalid range")

// Range is an inclusive range of repository indices.
type Range struct {
	Start int
	End   int
}

// NewRange validates start > 0 and end >= start.
func NewRange(start, end int) (Range, error) {
	if start <= 0 {
		return Range{}, fmt.Errorf("%w: start must be positive, got %d", ErrInvalidRange, start)
	}
	if end < start {
		return Range{}, fmt.Errorf("%w: end %d is before start %d", ErrInvalidRange, end, start)
	}
	return Range{Start: start, End: end}, nil
}

// Len returns the number of indices in the range.
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// Values returns the indices in ascending order.
func (r Range) Values() []int {
	values := make([]int, 0, r.Len())
	for v := r.Start; v <= r.End; v++ {
		values = append(values, v)
	}
	return values
}

func (r Range) String() string {
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

// Label formats an index the way it appears in directory names.
func Label(index int) string {
	return fmt.Sprintf("%03d", index)
}
