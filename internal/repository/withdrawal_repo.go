package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigbite/backend/internal/models"
)

type WithdrawalRepo struct {
	pool *pgxpool.Pool
}

func NewWithdrawalRepo(pool *pgxpool.Pool) *WithdrawalRepo {
	return &WithdrawalRepo{pool: pool}
}

const withdrawalCols = "id, worker_email, coins, amount_cents, status, created_at, updated_at"

func (r *WithdrawalRepo) Create(ctx context.Context, w *models.Withdrawal) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO withdrawals (id, worker_email, coins, amount_cents, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, w.ID, w.WorkerEmail, w.Coins, w.AmountCents, w.Status).Scan(&w.CreatedAt, &w.UpdatedAt)
}

// ApproveTx is the guarded pending -> approved transition. Re-approving an
// already-approved withdrawal returns ErrAlreadyFinal, so the paired debit can
// never run twice. Returns the approved withdrawal.
func (r *WithdrawalRepo) ApproveTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Withdrawal, error) {
	var w models.Withdrawal
	err := tx.QueryRow(ctx, `
		UPDATE withdrawals SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3
		RETURNING `+withdrawalCols+`
	`, id, models.WithdrawalStatusApproved, models.WithdrawalStatusPending).Scan(&w.ID, &w.WorkerEmail, &w.Coins, &w.AmountCents, &w.Status, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM withdrawals WHERE id = $1)", id).Scan(&exists); err != nil {
				return nil, err
			}
			if !exists {
				return nil, ErrNotFound
			}
			return nil, ErrAlreadyFinal
		}
		return nil, err
	}
	return &w, nil
}

func (r *WithdrawalRepo) ListPending(ctx context.Context) ([]*models.Withdrawal, error) {
	return r.list(ctx, `
		SELECT `+withdrawalCols+` FROM withdrawals WHERE status = $1 ORDER BY created_at ASC
	`, models.WithdrawalStatusPending)
}

func (r *WithdrawalRepo) ListByWorker(ctx context.Context, email string) ([]*models.Withdrawal, error) {
	return r.list(ctx, `
		SELECT `+withdrawalCols+` FROM withdrawals WHERE worker_email = $1 ORDER BY created_at DESC
	`, email)
}

func (r *WithdrawalRepo) list(ctx context.Context, sql string, args ...any) ([]*models.Withdrawal, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Withdrawal
	for rows.Next() {
		var w models.Withdrawal
		if err := rows.Scan(&w.ID, &w.WorkerEmail, &w.Coins, &w.AmountCents, &w.Status, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &w)
	}
	return list, rows.Err()
}

// SumPendingByWorker returns the coins the worker has requested but not yet
// been paid out.
func (r *WithdrawalRepo) SumPendingByWorker(ctx context.Context, email string) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(coins), 0) FROM withdrawals
		WHERE worker_email = $1 AND status = $2
	`, email, models.WithdrawalStatusPending).Scan(&total)
	return total, err
}
