// Package booking validates reservation requests against a locale's operating
// window. Overlap with existing reservations is deliberately not checked here:
// competing pending requests are allowed to coexist and are settled later by
// an administrator.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/reservalocales/api/internal/interval"
	"github.com/reservalocales/api/internal/model"
	"github.com/reservalocales/api/internal/schedule"
)

var (
	// ErrInvalidRange marks a request whose start is not before its end.
	ErrInvalidRange = errors.New("start must be before end")
	// ErrLocaleNotFound marks a locale that is absent or inactive.
	ErrLocaleNotFound = errors.New("locale not found")
)

// OutOfHoursError carries the computed operating window so callers can tell
// the client when the venue is actually open.
type OutOfHoursError struct {
	Window interval.Interval
}

func (e *OutOfHoursError) Error() string {
	return fmt.Sprintf("requested time is outside operating hours (%s to %s)",
		e.Window.Start.Format("15:04"), e.Window.End.Format("15:04"))
}

// LocaleSource fetches a locale snapshot. found is false when no such locale
// exists.
type LocaleSource interface {
	FetchLocale(ctx context.Context, id string) (locale model.Locale, found bool, err error)
}

type Validator struct {
	locales LocaleSource
}

func NewValidator(locales LocaleSource) *Validator {
	return &Validator{locales: locales}
}

// Validate checks a proposed reservation and, on acceptance, returns the
// reservation skeleton to persist: status pending, default priority. The
// caller fills in identity, requester and motive.
func (v *Validator) Validate(ctx context.Context, localeID string, start, end time.Time) (model.Reservation, error) {
	if !start.Before(end) {
		return model.Reservation{}, ErrInvalidRange
	}

	locale, found, err := v.locales.FetchLocale(ctx, localeID)
	if err != nil {
		return model.Reservation{}, err
	}
	if !found || !locale.Active {
		return model.Reservation{}, ErrLocaleNotFound
	}

	window, err := schedule.WindowFor(locale.OpenTime, locale.CloseTime, start)
	if err != nil {
		return model.Reservation{}, err
	}
	if !window.Contains(interval.Interval{Start: start, End: end}) {
		return model.Reservation{}, &OutOfHoursError{Window: window}
	}

	return model.Reservation{
		LocaleID: localeID,
		StartDT:  start,
		EndDT:    end,
		Status:   model.StatusPending,
		Priority: model.DefaultPriority,
	}, nil
}
