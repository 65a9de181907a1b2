package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/reservalocales/api/internal/conflict"
	"github.com/reservalocales/api/internal/model"
	"github.com/reservalocales/api/internal/storage"
)

type AdminStore interface {
	ListPending(ctx context.Context, localeID string) ([]model.Reservation, error)
	UpdateStatusAndPriority(ctx context.Context, id string, status model.ReservationStatus, priority int) (model.Reservation, error)
}

type AdminHandler struct {
	reservations AdminStore
	logger       *slog.Logger
}

func NewAdminHandler(reservations AdminStore, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{reservations: reservations, logger: logger}
}

// Conflicts lists pending reservations that overlap another pending
// reservation at the same locale. Both sides of each overlapping pair appear
// in the result.
func (h *AdminHandler) Conflicts(w http.ResponseWriter, r *http.Request) {
	localeID := r.URL.Query().Get("locale_id")
	if localeID != "" {
		if _, err := uuid.Parse(localeID); err != nil {
			http.Error(w, "invalid locale_id", http.StatusBadRequest)
			return
		}
	}

	pending, err := h.reservations.ListPending(r.Context(), localeID)
	if err != nil {
		h.logger.Error("failed to list pending reservations", "err", err)
		http.Error(w, "failed to list pending reservations", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toReservationItems(conflict.Find(pending)))
}

type resolveRequest struct {
	Status   string `json:"status"`
	Priority *int   `json:"priority"`
}

// Resolve overwrites a reservation's status and priority with the
// administrator's decision. Any reservation can be re-resolved; the write is
// unconditional on the current status.
func (h *AdminHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		http.Error(w, "invalid reservation id", http.StatusBadRequest)
		return
	}

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	status := model.ReservationStatus(req.Status)
	if !status.Valid() {
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}
	priority := model.DefaultPriority
	if req.Priority != nil {
		if *req.Priority < 0 {
			http.Error(w, "priority must be non-negative", http.StatusBadRequest)
			return
		}
		priority = *req.Priority
	}

	resolved, err := h.reservations.UpdateStatusAndPriority(r.Context(), id, status, priority)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "reservation not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to resolve reservation", "err", err)
		http.Error(w, "failed to resolve reservation", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toReservationItem(resolved))
}
