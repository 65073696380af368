// Package interval provides a closed integer range type used by rank-threshold
// logic and other places that reason about inclusive numeric bounds.
package interval

// Interval represents a closed range [Low, High]. Both bounds are inclusive.
type Interval struct {
	Low  int
	High int
}

// New creates an Interval from the given bounds. If the bounds are reversed
// they are swapped so the resulting interval is always well-formed.
func New(low, high int) Interval {
	if low > high {
		low, high = high, low
	}
	return Interval{Low: low, High: high}
}

// Contains reports whether v lies within the interval, bounds included.
func (i Interval) Contains(v int) bool {
	return v >= i.Low && v <= i.High
}

// Clamp returns v limited to the interval's bounds.
func (i Interval) Clamp(v int) int {
	if v < i.Low {
		return i.Low
	}
	if v > i.High {
		return i.High
	}
	return v
}
