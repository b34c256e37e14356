package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigbite/backend/internal/models"
)

type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{pool: pool}
}

func (r *TaskRepo) CreateTx(ctx context.Context, tx pgx.Tx, t *models.Task) error {
	return tx.QueryRow(ctx, `
		INSERT INTO tasks (id, buyer_email, title, detail, category, total_cost, required_workers, payable_amount, deadline)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`, t.ID, t.BuyerEmail, t.Title, t.Detail, t.Category, t.TotalCost, t.RequiredWorkers, t.PayableAmount, t.Deadline).Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (r *TaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return r.get(ctx, r.pool, id, false)
}

// GetByIDForUpdateTx locks the task row so slot and cost mutations in the same
// transaction see a stable snapshot.
func (r *TaskRepo) GetByIDForUpdateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Task, error) {
	return r.get(ctx, tx, id, true)
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *TaskRepo) get(ctx context.Context, q querier, id uuid.UUID, forUpdate bool) (*models.Task, error) {
	sql := `
		SELECT id, buyer_email, title, detail, category, total_cost, required_workers, payable_amount, deadline, created_at, updated_at
		FROM tasks WHERE id = $1`
	if forUpdate {
		sql += " FOR UPDATE"
	}
	var t models.Task
	err := q.QueryRow(ctx, sql, id).Scan(&t.ID, &t.BuyerEmail, &t.Title, &t.Detail, &t.Category, &t.TotalCost, &t.RequiredWorkers, &t.PayableAmount, &t.Deadline, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ClaimSlotTx consumes one worker slot. The condition clamps the counter at
// zero: a task with no open slots returns ErrNoSlots instead of going
// negative.
func (r *TaskRepo) ClaimSlotTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, `
		UPDATE tasks SET required_workers = required_workers - 1, updated_at = now()
		WHERE id = $1 AND required_workers > 0
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if exists, err := r.existsTx(ctx, tx, id); err != nil {
			return err
		} else if !exists {
			return ErrNotFound
		}
		return ErrNoSlots
	}
	return nil
}

// ReleaseSlotTx restores the slot consumed at submission time. Used on
// rejection.
func (r *TaskRepo) ReleaseSlotTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, `
		UPDATE tasks SET required_workers = required_workers + 1, updated_at = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReduceCostTx moves amount out of the task's escrow. The condition guarantees
// remaining escrow never goes negative: approving past the budget returns
// ErrEscrowExhausted.
func (r *TaskRepo) ReduceCostTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int64) error {
	tag, err := tx.Exec(ctx, `
		UPDATE tasks SET total_cost = total_cost - $2, updated_at = now()
		WHERE id = $1 AND total_cost >= $2
	`, id, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if exists, err := r.existsTx(ctx, tx, id); err != nil {
			return err
		} else if !exists {
			return ErrNotFound
		}
		return ErrEscrowExhausted
	}
	return nil
}

func (r *TaskRepo) DeleteTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListOpen returns tasks that still have open worker slots.
func (r *TaskRepo) ListOpen(ctx context.Context) ([]*models.Task, error) {
	return r.list(ctx, `
		SELECT id, buyer_email, title, detail, category, total_cost, required_workers, payable_amount, deadline, created_at, updated_at
		FROM tasks WHERE required_workers > 0 ORDER BY created_at DESC
	`)
}

// ListByBuyer returns the buyer's tasks ordered by deadline descending.
func (r *TaskRepo) ListByBuyer(ctx context.Context, email string) ([]*models.Task, error) {
	return r.list(ctx, `
		SELECT id, buyer_email, title, detail, category, total_cost, required_workers, payable_amount, deadline, created_at, updated_at
		FROM tasks WHERE buyer_email = $1 ORDER BY deadline DESC
	`, email)
}

func (r *TaskRepo) list(ctx context.Context, sql string, args ...any) ([]*models.Task, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.BuyerEmail, &t.Title, &t.Detail, &t.Category, &t.TotalCost, &t.RequiredWorkers, &t.PayableAmount, &t.Deadline, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

func (r *TaskRepo) existsTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

// CountByBuyer returns how many tasks the buyer has posted.
func (r *TaskRepo) CountByBuyer(ctx context.Context, email string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM tasks WHERE buyer_email = $1", email).Scan(&n)
	return n, err
}

// SumEscrow returns the total coins currently escrowed across all tasks.
func (r *TaskRepo) SumEscrow(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, "SELECT COALESCE(SUM(total_cost), 0) FROM tasks").Scan(&total)
	return total, err
}
