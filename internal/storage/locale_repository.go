package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/reservalocales/api/internal/db"
	"github.com/reservalocales/api/internal/model"
)

type LocaleRepository struct {
	pool *db.Pool
}

func NewLocaleRepository(pool *db.Pool) *LocaleRepository {
	return &LocaleRepository{pool: pool}
}

func (r *LocaleRepository) ListActive(ctx context.Context) ([]model.Locale, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, COALESCE(description, ''), COALESCE(capacity, 0), COALESCE(location, ''),
			open_time, close_time, active
		FROM locales
		WHERE active
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locales []model.Locale
	for rows.Next() {
		var l model.Locale
		if err := rows.Scan(&l.ID, &l.Name, &l.Description, &l.Capacity, &l.Location,
			&l.OpenTime, &l.CloseTime, &l.Active); err != nil {
			return nil, err
		}
		locales = append(locales, l)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return locales, nil
}

func (r *LocaleRepository) Get(ctx context.Context, id string) (model.Locale, error) {
	var l model.Locale
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(description, ''), COALESCE(capacity, 0), COALESCE(location, ''),
			open_time, close_time, active
		FROM locales
		WHERE id = $1
	`, id).Scan(&l.ID, &l.Name, &l.Description, &l.Capacity, &l.Location,
		&l.OpenTime, &l.CloseTime, &l.Active)
	if err != nil {
		return model.Locale{}, err
	}
	return l, nil
}

// FetchLocale adapts Get to the booking validator's collaborator contract:
// a missing row is reported through the found flag rather than an error.
func (r *LocaleRepository) FetchLocale(ctx context.Context, id string) (model.Locale, bool, error) {
	locale, err := r.Get(ctx, id)
	if IsNotFound(err) {
		return model.Locale{}, false, nil
	}
	if err != nil {
		return model.Locale{}, false, err
	}
	return locale, true, nil
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
