package storage

import (
	"context"

	"github.com/reservalocales/api/internal/db"
	"github.com/reservalocales/api/internal/model"
)

type UserRepository struct {
	pool *db.Pool
}

func NewUserRepository(pool *db.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user model.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, full_name, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, user.ID, user.Email, user.PasswordHash, user.FullName, user.Role, user.Active)
	return err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.get(ctx, `WHERE email = $1`, email)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.get(ctx, `WHERE id = $1`, id)
}

func (r *UserRepository) get(ctx context.Context, where string, arg any) (model.User, error) {
	var user model.User
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, full_name, role, is_active
		FROM users
	`+where, arg).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.Role, &user.Active)
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}
