package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/reservalocales/api/internal/booking"
	"github.com/reservalocales/api/internal/httpx"
	"github.com/reservalocales/api/internal/model"
	"github.com/reservalocales/api/internal/schedule"
	"github.com/reservalocales/api/internal/storage"
)

type ReservationStore interface {
	Create(ctx context.Context, res model.Reservation) (model.Reservation, error)
	Get(ctx context.Context, id string) (model.Reservation, error)
	ListByUser(ctx context.Context, userID string) ([]model.Reservation, error)
	Cancel(ctx context.Context, id string) (model.Reservation, error)
}

type ReservationHandler struct {
	validator    *booking.Validator
	reservations ReservationStore
	logger       *slog.Logger
	now          func() time.Time
}

func NewReservationHandler(validator *booking.Validator, reservations ReservationStore, logger *slog.Logger) *ReservationHandler {
	return &ReservationHandler{
		validator:    validator,
		reservations: reservations,
		logger:       logger,
		now:          time.Now,
	}
}

type createReservationRequest struct {
	LocaleID string `json:"locale_id"`
	StartDT  string `json:"start_dt"`
	EndDT    string `json:"end_dt"`
	Motive   string `json:"motive"`
}

// Create validates the requested interval against the locale's operating
// window and stores the reservation as pending. It does not check for
// overlapping reservations; conflicting requests are accepted and settled
// later by an administrator.
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := httpx.ClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, "missing bearer token", http.StatusUnauthorized)
		return
	}

	var req createReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if _, err := uuid.Parse(req.LocaleID); err != nil {
		http.Error(w, "invalid locale_id", http.StatusBadRequest)
		return
	}
	start, err := time.Parse(time.RFC3339, req.StartDT)
	if err != nil {
		http.Error(w, "invalid start_dt, expected RFC3339", http.StatusBadRequest)
		return
	}
	end, err := time.Parse(time.RFC3339, req.EndDT)
	if err != nil {
		http.Error(w, "invalid end_dt, expected RFC3339", http.StatusBadRequest)
		return
	}
	start = start.UTC()
	end = end.UTC()

	res, err := h.validator.Validate(r.Context(), req.LocaleID, start, end)
	if err != nil {
		h.writeValidationError(w, err)
		return
	}
	res.UserID = claims.Sub
	res.Motive = strings.TrimSpace(req.Motive)

	created, err := h.reservations.Create(r.Context(), res)
	if err != nil {
		h.logger.Error("failed to create reservation", "err", err)
		http.Error(w, "failed to create reservation", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, toReservationItem(created))
}

func (h *ReservationHandler) writeValidationError(w http.ResponseWriter, err error) {
	var outOfHours *booking.OutOfHoursError
	switch {
	case errors.Is(err, booking.ErrInvalidRange):
		http.Error(w, "end_dt must be after start_dt", http.StatusBadRequest)
	case errors.Is(err, booking.ErrLocaleNotFound):
		http.Error(w, "locale not found", http.StatusNotFound)
	case errors.As(err, &outOfHours):
		http.Error(w, outOfHours.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, schedule.ErrMalformedHours):
		h.logger.Error("locale has malformed operating hours", "err", err)
		http.Error(w, "locale operating hours misconfigured", http.StatusInternalServerError)
	default:
		h.logger.Error("failed to validate reservation", "err", err)
		http.Error(w, "failed to validate reservation", http.StatusInternalServerError)
	}
}

func (h *ReservationHandler) My(w http.ResponseWriter, r *http.Request) {
	claims := httpx.ClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, "missing bearer token", http.StatusUnauthorized)
		return
	}

	reservations, err := h.reservations.ListByUser(r.Context(), claims.Sub)
	if err != nil {
		h.logger.Error("failed to list reservations", "err", err)
		http.Error(w, "failed to list reservations", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toReservationItems(reservations))
}

// Cancel lets the owner cancel a pending reservation before it starts.
// Cancelling an already-cancelled reservation is a no-op success; approved and
// rejected reservations can only be changed by an administrator resolution.
func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims := httpx.ClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, "missing bearer token", http.StatusUnauthorized)
		return
	}

	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		http.Error(w, "invalid reservation id", http.StatusBadRequest)
		return
	}

	res, err := h.reservations.Get(r.Context(), id)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "reservation not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load reservation", "err", err)
		http.Error(w, "failed to load reservation", http.StatusInternalServerError)
		return
	}
	if res.UserID != claims.Sub {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if res.Status == model.StatusCancelled {
		writeJSON(w, http.StatusOK, toReservationItem(res))
		return
	}
	if res.Status != model.StatusPending {
		http.Error(w, "reservation cannot be cancelled", http.StatusConflict)
		return
	}
	if !res.StartDT.After(h.now()) {
		http.Error(w, "reservation already started", http.StatusConflict)
		return
	}

	cancelled, err := h.reservations.Cancel(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to cancel reservation", "err", err)
		http.Error(w, "failed to cancel reservation", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toReservationItem(cancelled))
}
