// Package interval provides the half-open time range primitive the
// availability and conflict logic is built on.
package interval

import (
	"sort"
	"time"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether the interval is non-empty.
func (iv Interval) Valid() bool {
	return iv.Start.Before(iv.End)
}

// Overlaps reports whether the two half-open intervals intersect.
// Back-to-back intervals (a.End == b.Start) do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Contains reports whether other lies entirely within iv, boundaries included.
func (iv Interval) Contains(other Interval) bool {
	return !other.Start.Before(iv.Start) && !other.End.After(iv.End)
}

// Clip returns the intersection of iv with bound. The second return value is
// false when the intersection is empty.
func (iv Interval) Clip(bound Interval) (Interval, bool) {
	start := iv.Start
	if bound.Start.After(start) {
		start = bound.Start
	}
	end := iv.End
	if bound.End.Before(end) {
		end = bound.End
	}
	if !start.Before(end) {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}

// SortByStart orders intervals by start ascending. The sort is stable so that
// equal starts keep their incoming order within a single computation.
func SortByStart(ivs []Interval) {
	sort.SliceStable(ivs, func(i, j int) bool {
		return ivs[i].Start.Before(ivs[j].Start)
	})
}
