package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigbite/backend/internal/models"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, role, password_hash, coin_balance)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, u.Email, u.Name, u.Role, u.PasswordHash, u.CoinBalance).Scan(&u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, `
		SELECT email, name, role, password_hash, coin_balance, created_at, updated_at
		FROM users WHERE email = $1
	`, email).Scan(&u.Email, &u.Name, &u.Role, &u.PasswordHash, &u.CoinBalance, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmailForUpdate locks the user row. Call within a transaction.
func (r *UserRepo) GetByEmailForUpdate(ctx context.Context, tx pgx.Tx, email string) (*models.User, error) {
	var u models.User
	err := tx.QueryRow(ctx, `
		SELECT email, name, role, password_hash, coin_balance, created_at, updated_at
		FROM users WHERE email = $1 FOR UPDATE
	`, email).Scan(&u.Email, &u.Name, &u.Role, &u.PasswordHash, &u.CoinBalance, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// AdjustBalanceTx applies a signed delta to the user's balance and returns the
// new balance. The CHECK constraint is a backstop; the ledger pre-checks
// before debiting. Call after GetByEmailForUpdate in the same tx.
func (r *UserRepo) AdjustBalanceTx(ctx context.Context, tx pgx.Tx, email string, delta int64) (newBalance int64, err error) {
	err = tx.QueryRow(ctx, `
		UPDATE users SET coin_balance = coin_balance + $1, updated_at = now()
		WHERE email = $2
		RETURNING coin_balance
	`, delta, email).Scan(&newBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return newBalance, err
}

func (r *UserRepo) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT email, name, role, password_hash, coin_balance, created_at, updated_at
		FROM users ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.Email, &u.Name, &u.Role, &u.PasswordHash, &u.CoinBalance, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &u)
	}
	return list, rows.Err()
}

func (r *UserRepo) SetRole(ctx context.Context, email, role string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET role = $2, updated_at = now() WHERE email = $1
	`, email, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, email string) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM users WHERE email = $1", email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByRole returns user counts grouped by role.
func (r *UserRepo) CountByRole(ctx context.Context) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int64)
	for rows.Next() {
		var role string
		var n int64
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		counts[role] = n
	}
	return counts, rows.Err()
}

// SumBalances returns the total coins currently held on user accounts.
func (r *UserRepo) SumBalances(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(coin_balance), 0) FROM users`).Scan(&total)
	return total, err
}
