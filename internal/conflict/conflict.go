// Package conflict surfaces pending reservations that compete for the same
// time at the same locale. Detection is decision support only: resolution is
// an explicit administrator overwrite of status and priority, and nothing here
// prevents two overlapping reservations from both ending up approved.
package conflict

import (
	"github.com/reservalocales/api/internal/interval"
	"github.com/reservalocales/api/internal/model"
)

// Find returns every pending reservation that overlaps another pending
// reservation at the same locale. The result is symmetric (both members of a
// pair appear) and flat, preserving input order; non-pending entries are
// ignored.
func Find(reservations []model.Reservation) []model.Reservation {
	pending := make([]model.Reservation, 0, len(reservations))
	for _, r := range reservations {
		if r.Status == model.StatusPending {
			pending = append(pending, r)
		}
	}

	conflicts := []model.Reservation{}
	for i, r := range pending {
		for j, other := range pending {
			if i == j || r.LocaleID != other.LocaleID {
				continue
			}
			a := interval.Interval{Start: r.StartDT, End: r.EndDT}
			b := interval.Interval{Start: other.StartDT, End: other.EndDT}
			if a.Overlaps(b) {
				conflicts = append(conflicts, r)
				break
			}
		}
	}
	return conflicts
}
