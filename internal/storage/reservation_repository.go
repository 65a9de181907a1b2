package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/reservalocales/api/internal/db"
	"github.com/reservalocales/api/internal/model"
	"github.com/reservalocales/api/internal/outbox"
)

// ReservationRepository persists reservations and emits outbox events in the
// same transaction as the row mutation, so an event exists iff the change does.
type ReservationRepository struct {
	pool   *db.Pool
	outbox *outbox.Repository
}

func NewReservationRepository(pool *db.Pool, outboxRepo *outbox.Repository) *ReservationRepository {
	return &ReservationRepository{pool: pool, outbox: outboxRepo}
}

const reservationColumns = `id, locale_id, user_id, start_dt, end_dt, COALESCE(motive, ''), status, priority, created_at`

func scanReservation(row pgx.Row) (model.Reservation, error) {
	var res model.Reservation
	err := row.Scan(
		&res.ID,
		&res.LocaleID,
		&res.UserID,
		&res.StartDT,
		&res.EndDT,
		&res.Motive,
		&res.Status,
		&res.Priority,
		&res.CreatedAt,
	)
	if err != nil {
		return model.Reservation{}, err
	}
	return res, nil
}

// Create inserts the reservation and a reservation.created event. No overlap
// check happens here: concurrent requests for the same slot may both land as
// pending, and the administrator settles them later.
func (r *ReservationRepository) Create(ctx context.Context, res model.Reservation) (model.Reservation, error) {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.Reservation{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	created, err := scanReservation(tx.QueryRow(ctx, `
		INSERT INTO reservations (id, locale_id, user_id, start_dt, end_dt, motive, status, priority)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+reservationColumns+`
	`, res.ID, res.LocaleID, res.UserID, res.StartDT, res.EndDT, res.Motive, res.Status, res.Priority))
	if err != nil {
		return model.Reservation{}, err
	}

	if err := r.insertEvent(ctx, tx, outbox.EventReservationCreated, created); err != nil {
		return model.Reservation{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Reservation{}, err
	}
	return created, nil
}

func (r *ReservationRepository) Get(ctx context.Context, id string) (model.Reservation, error) {
	return scanReservation(r.pool.QueryRow(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE id = $1
	`, id))
}

// ListBlocking returns the reservations occupying capacity at the locale
// within the window: status pending or approved, interval intersecting
// [windowStart, windowEnd), ordered by start.
func (r *ReservationRepository) ListBlocking(ctx context.Context, localeID string, windowStart, windowEnd time.Time) ([]model.Reservation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE locale_id = $1
			AND status IN ('pending', 'approved')
			AND start_dt < $3
			AND end_dt > $2
		ORDER BY start_dt ASC, id ASC
	`, localeID, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

func (r *ReservationRepository) ListByUser(ctx context.Context, userID string) ([]model.Reservation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE user_id = $1
		ORDER BY start_dt DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

// ListPending returns pending reservations, optionally restricted to one
// locale, ordered by start then id so conflict listings are deterministic.
func (r *ReservationRepository) ListPending(ctx context.Context, localeID string) ([]model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE status = 'pending'
	`
	args := []any{}
	if localeID != "" {
		query += ` AND locale_id = $1`
		args = append(args, localeID)
	}
	query += ` ORDER BY start_dt ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

// Cancel marks the reservation cancelled and emits a reservation.cancelled
// event. Ownership and lifecycle checks are the caller's responsibility.
func (r *ReservationRepository) Cancel(ctx context.Context, id string) (model.Reservation, error) {
	return r.mutate(ctx, outbox.EventReservationCancelled, `
		UPDATE reservations
		SET status = 'cancelled'
		WHERE id = $1
		RETURNING `+reservationColumns+`
	`, id)
}

// UpdateStatusAndPriority applies an administrator resolution: a direct
// overwrite of both fields, whatever the current status.
func (r *ReservationRepository) UpdateStatusAndPriority(ctx context.Context, id string, status model.ReservationStatus, priority int) (model.Reservation, error) {
	return r.mutate(ctx, outbox.EventReservationResolved, `
		UPDATE reservations
		SET status = $2, priority = $3
		WHERE id = $1
		RETURNING `+reservationColumns+`
	`, id, status, priority)
}

func (r *ReservationRepository) mutate(ctx context.Context, eventType, query string, args ...any) (model.Reservation, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.Reservation{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	updated, err := scanReservation(tx.QueryRow(ctx, query, args...))
	if err != nil {
		return model.Reservation{}, err
	}
	if err := r.insertEvent(ctx, tx, eventType, updated); err != nil {
		return model.Reservation{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Reservation{}, err
	}
	return updated, nil
}

func (r *ReservationRepository) insertEvent(ctx context.Context, tx pgx.Tx, eventType string, res model.Reservation) error {
	payload, err := json.Marshal(map[string]any{
		"reservation_id": res.ID,
		"locale_id":      res.LocaleID,
		"user_id":        res.UserID,
		"start_dt":       res.StartDT.UTC().Format(time.RFC3339),
		"end_dt":         res.EndDT.UTC().Format(time.RFC3339),
		"status":         res.Status,
		"priority":       res.Priority,
	})
	if err != nil {
		return err
	}
	return r.outbox.Insert(ctx, tx, outbox.Event{
		AggregateType: "reservation",
		AggregateID:   res.ID,
		EventType:     eventType,
		Payload:       payload,
	})
}

func collectReservations(rows pgx.Rows) ([]model.Reservation, error) {
	defer rows.Close()

	var reservations []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return reservations, nil
}
