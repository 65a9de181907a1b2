// Package availability computes occupied and free time ranges for a locale's
// operating window. All functions are pure over their inputs; the caller
// fetches the blocking reservations and derives the window beforehand.
package availability

import (
	"time"

	"github.com/reservalocales/api/internal/interval"
)

// Mode selects how free time is reported.
type Mode string

const (
	// ModeContinuous reports maximal free ranges between occupied blocks.
	ModeContinuous Mode = "continuous"
	// ModeDiscrete reports fixed-duration bookable units.
	ModeDiscrete Mode = "discrete"
)

func (m Mode) Valid() bool {
	return m == ModeContinuous || m == ModeDiscrete
}

// Compute clips the blocking intervals to the operating window and returns the
// clipped intervals (one per blocking reservation, ordered by start) together
// with the complementary free ranges.
//
// Free ranges are found with a single left-to-right sweep. The cursor only
// ever advances, so overlapping or touching occupied intervals merge naturally
// without an explicit merge step.
func Compute(window interval.Interval, blocking []interval.Interval) (occupied, free []interval.Interval) {
	occupied = make([]interval.Interval, 0, len(blocking))
	for _, b := range blocking {
		if clipped, ok := b.Clip(window); ok {
			occupied = append(occupied, clipped)
		}
	}
	interval.SortByStart(occupied)

	free = []interval.Interval{}
	cursor := window.Start
	for _, occ := range occupied {
		if cursor.Before(occ.Start) {
			free = append(free, interval.Interval{Start: cursor, End: occ.Start})
		}
		if occ.End.After(cursor) {
			cursor = occ.End
		}
	}
	if cursor.Before(window.End) {
		free = append(free, interval.Interval{Start: cursor, End: window.End})
	}
	return occupied, free
}

// DiscreteSlots steps through the window in fixed slotDuration units and
// returns the units that overlap none of the occupied intervals. A trailing
// partial gap shorter than slotDuration produces no slot.
func DiscreteSlots(window interval.Interval, slotDuration time.Duration, occupied []interval.Interval) []interval.Interval {
	if slotDuration <= 0 {
		return nil
	}
	slots := []interval.Interval{}
	for t := window.Start; !t.Add(slotDuration).After(window.End); t = t.Add(slotDuration) {
		slot := interval.Interval{Start: t, End: t.Add(slotDuration)}
		if overlapsAny(slot, occupied) {
			continue
		}
		slots = append(slots, slot)
	}
	return slots
}

func overlapsAny(slot interval.Interval, occupied []interval.Interval) bool {
	for _, occ := range occupied {
		if slot.Overlaps(occ) {
			return true
		}
	}
	return false
}
