package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/reservalocales/api/internal/interval"
	"github.com/reservalocales/api/internal/model"
)

type timeSlot struct {
	StartDT string `json:"start_dt"`
	EndDT   string `json:"end_dt"`
}

func toTimeSlots(ivs []interval.Interval) []timeSlot {
	out := make([]timeSlot, 0, len(ivs))
	for _, iv := range ivs {
		out = append(out, timeSlot{
			StartDT: iv.Start.UTC().Format(time.RFC3339),
			EndDT:   iv.End.UTC().Format(time.RFC3339),
		})
	}
	return out
}

type reservationItem struct {
	ID        string `json:"id"`
	LocaleID  string `json:"locale_id"`
	UserID    string `json:"user_id"`
	StartDT   string `json:"start_dt"`
	EndDT     string `json:"end_dt"`
	Motive    string `json:"motive"`
	Status    string `json:"status"`
	Priority  int    `json:"priority"`
	CreatedAt string `json:"created_at"`
}

func toReservationItem(res model.Reservation) reservationItem {
	return reservationItem{
		ID:        res.ID,
		LocaleID:  res.LocaleID,
		UserID:    res.UserID,
		StartDT:   res.StartDT.UTC().Format(time.RFC3339),
		EndDT:     res.EndDT.UTC().Format(time.RFC3339),
		Motive:    res.Motive,
		Status:    string(res.Status),
		Priority:  res.Priority,
		CreatedAt: res.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toReservationItems(reservations []model.Reservation) []reservationItem {
	items := make([]reservationItem, 0, len(reservations))
	for _, res := range reservations {
		items = append(items, toReservationItem(res))
	}
	return items
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
