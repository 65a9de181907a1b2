package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/reservalocales/api/internal/availability"
	"github.com/reservalocales/api/internal/interval"
	"github.com/reservalocales/api/internal/model"
	"github.com/reservalocales/api/internal/schedule"
)

type LocaleStore interface {
	ListActive(ctx context.Context) ([]model.Locale, error)
	FetchLocale(ctx context.Context, id string) (model.Locale, bool, error)
}

type BlockingReader interface {
	ListBlocking(ctx context.Context, localeID string, windowStart, windowEnd time.Time) ([]model.Reservation, error)
}

type LocaleHandler struct {
	locales      LocaleStore
	reservations BlockingReader
	logger       *slog.Logger
	slotDuration time.Duration
}

func NewLocaleHandler(locales LocaleStore, reservations BlockingReader, logger *slog.Logger, slotDuration time.Duration) *LocaleHandler {
	if slotDuration <= 0 {
		slotDuration = time.Hour
	}
	return &LocaleHandler{locales: locales, reservations: reservations, logger: logger, slotDuration: slotDuration}
}

type localeItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Capacity    int    `json:"capacity"`
	Location    string `json:"location"`
	OpenTime    string `json:"open_time"`
	CloseTime   string `json:"close_time"`
}

func toLocaleItem(l model.Locale) localeItem {
	return localeItem{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		Capacity:    l.Capacity,
		Location:    l.Location,
		OpenTime:    l.OpenTime,
		CloseTime:   l.CloseTime,
	}
}

func (h *LocaleHandler) List(w http.ResponseWriter, r *http.Request) {
	locales, err := h.locales.ListActive(r.Context())
	if err != nil {
		h.logger.Error("failed to list locales", "err", err)
		http.Error(w, "failed to list locales", http.StatusInternalServerError)
		return
	}
	items := make([]localeItem, 0, len(locales))
	for _, l := range locales {
		items = append(items, toLocaleItem(l))
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *LocaleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		http.Error(w, "invalid locale id", http.StatusBadRequest)
		return
	}

	locale, found, err := h.locales.FetchLocale(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to load locale", "err", err)
		http.Error(w, "failed to load locale", http.StatusInternalServerError)
		return
	}
	if !found || !locale.Active {
		http.Error(w, "locale not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toLocaleItem(locale))
}

type availabilityResponse struct {
	LocaleID       string     `json:"locale_id"`
	Date           string     `json:"date"`
	Mode           string     `json:"mode"`
	WindowStart    string     `json:"window_start"`
	WindowEnd      string     `json:"window_end"`
	OccupiedSlots  []timeSlot `json:"occupied_slots"`
	AvailableSlots []timeSlot `json:"available_slots"`
}

// Availability reports the occupied and free time for one locale on one day.
// Free time comes out either as maximal gaps (continuous mode) or as
// fixed-duration bookable slots (discrete mode).
func (h *LocaleHandler) Availability(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		http.Error(w, "invalid locale id", http.StatusBadRequest)
		return
	}

	day := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		day = parsed
	}

	mode := availability.ModeContinuous
	if raw := r.URL.Query().Get("mode"); raw != "" {
		mode = availability.Mode(raw)
		if !mode.Valid() {
			http.Error(w, "invalid mode, expected continuous or discrete", http.StatusBadRequest)
			return
		}
	}

	slotDuration := h.slotDuration
	if raw := r.URL.Query().Get("slot_minutes"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 || minutes > 24*60 {
			http.Error(w, "invalid slot_minutes", http.StatusBadRequest)
			return
		}
		slotDuration = time.Duration(minutes) * time.Minute
	}

	locale, found, err := h.locales.FetchLocale(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to load locale", "err", err)
		http.Error(w, "failed to load locale", http.StatusInternalServerError)
		return
	}
	if !found || !locale.Active {
		http.Error(w, "locale not found", http.StatusNotFound)
		return
	}

	window, err := schedule.WindowFor(locale.OpenTime, locale.CloseTime, day)
	if err != nil {
		if errors.Is(err, schedule.ErrMalformedHours) {
			h.logger.Error("locale has malformed operating hours",
				"locale_id", locale.ID, "open_time", locale.OpenTime, "close_time", locale.CloseTime)
			http.Error(w, "locale operating hours misconfigured", http.StatusInternalServerError)
			return
		}
		http.Error(w, "failed to compute operating window", http.StatusInternalServerError)
		return
	}

	blocking, err := h.reservations.ListBlocking(r.Context(), id, window.Start, window.End)
	if err != nil {
		h.logger.Error("failed to list reservations", "err", err)
		http.Error(w, "failed to list reservations", http.StatusInternalServerError)
		return
	}
	intervals := make([]interval.Interval, 0, len(blocking))
	for _, res := range blocking {
		intervals = append(intervals, interval.Interval{Start: res.StartDT, End: res.EndDT})
	}

	occupied, free := availability.Compute(window, intervals)
	if mode == availability.ModeDiscrete {
		free = availability.DiscreteSlots(window, slotDuration, occupied)
	}

	writeJSON(w, http.StatusOK, availabilityResponse{
		LocaleID:       locale.ID,
		Date:           day.Format("2006-01-02"),
		Mode:           string(mode),
		WindowStart:    window.Start.UTC().Format(time.RFC3339),
		WindowEnd:      window.End.UTC().Format(time.RFC3339),
		OccupiedSlots:  toTimeSlots(occupied),
		AvailableSlots: toTimeSlots(free),
	})
}
