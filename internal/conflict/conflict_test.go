package conflict

import (
	"testing"
	"time"

	"github.com/reservalocales/api/internal/model"
)

func res(id, localeID string, status model.ReservationStatus, startH, endH int) model.Reservation {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	return model.Reservation{
		ID:       id,
		LocaleID: localeID,
		Status:   status,
		StartDT:  day.Add(time.Duration(startH) * time.Hour),
		EndDT:    day.Add(time.Duration(endH) * time.Hour),
	}
}

func ids(reservations []model.Reservation) []string {
	out := make([]string, 0, len(reservations))
	for _, r := range reservations {
		out = append(out, r.ID)
	}
	return out
}

func TestFind_OverlappingPendingPairBothAppear(t *testing.T) {
	got := Find([]model.Reservation{
		res("a", "l1", model.StatusPending, 10, 12),
		res("b", "l1", model.StatusPending, 11, 13),
		res("c", "l2", model.StatusPending, 10, 12), // other locale
		res("d", "l1", model.StatusPending, 14, 15), // disjoint
	})

	want := []string{"a", "b"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("expected %v, got %v", want, ids(got))
		}
	}
}

func TestFind_TouchingRangesDoNotConflict(t *testing.T) {
	got := Find([]model.Reservation{
		res("a", "l1", model.StatusPending, 10, 11),
		res("b", "l1", model.StatusPending, 11, 12),
	})
	if len(got) != 0 {
		t.Fatalf("back-to-back reservations must not conflict, got %v", ids(got))
	}
}

func TestFind_NonPendingIgnored(t *testing.T) {
	got := Find([]model.Reservation{
		res("a", "l1", model.StatusPending, 10, 12),
		res("b", "l1", model.StatusApproved, 11, 13),
		res("c", "l1", model.StatusRejected, 10, 12),
		res("d", "l1", model.StatusCancelled, 10, 12),
	})
	if len(got) != 0 {
		t.Fatalf("only pending reservations conflict with each other, got %v", ids(got))
	}
}

func TestFind_ThreeWayOverlap(t *testing.T) {
	got := Find([]model.Reservation{
		res("a", "l1", model.StatusPending, 10, 12),
		res("b", "l1", model.StatusPending, 11, 13),
		res("c", "l1", model.StatusPending, 12, 14), // overlaps b only
	})
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids(got))
	}
}
