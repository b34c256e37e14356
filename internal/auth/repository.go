package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigbite/backend/internal/models"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new user with its seeded starting balance.
func (r *Repository) Create(ctx context.Context, u *models.User) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, role, password_hash, coin_balance)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, u.Email, u.Name, u.Role, u.PasswordHash, u.CoinBalance).Scan(&u.CreatedAt, &u.UpdatedAt)
}

// GetByEmail returns the user for login, or nil if the email is unknown.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, `
		SELECT email, name, role, password_hash, coin_balance, created_at, updated_at
		FROM users WHERE email = $1
	`, email).Scan(&u.Email, &u.Name, &u.Role, &u.PasswordHash, &u.CoinBalance, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
