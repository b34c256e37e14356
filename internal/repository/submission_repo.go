package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigbite/backend/internal/models"
)

type SubmissionRepo struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepo(pool *pgxpool.Pool) *SubmissionRepo {
	return &SubmissionRepo{pool: pool}
}

const submissionCols = "id, task_id, task_title, worker_email, buyer_email, payable_amount, proof, status, created_at, updated_at"

func (r *SubmissionRepo) CreateTx(ctx context.Context, tx pgx.Tx, s *models.Submission) error {
	return tx.QueryRow(ctx, `
		INSERT INTO submissions (id, task_id, task_title, worker_email, buyer_email, payable_amount, proof, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, s.ID, s.TaskID, s.TaskTitle, s.WorkerEmail, s.BuyerEmail, s.PayableAmount, s.Proof, s.Status).Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *SubmissionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	var s models.Submission
	err := r.pool.QueryRow(ctx, `
		SELECT `+submissionCols+` FROM submissions WHERE id = $1
	`, id).Scan(&s.ID, &s.TaskID, &s.TaskTitle, &s.WorkerEmail, &s.BuyerEmail, &s.PayableAmount, &s.Proof, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// SetStatusTx is the guarded pending -> terminal transition. The WHERE clause
// is the compare-and-set: a second approval or rejection of the same
// submission finds zero rows and returns ErrAlreadyFinal.
func (r *SubmissionRepo) SetStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string) error {
	tag, err := tx.Exec(ctx, `
		UPDATE submissions SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3
	`, id, status, models.SubmissionStatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM submissions WHERE id = $1)", id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrAlreadyFinal
	}
	return nil
}

// ListByWorker returns one page of the worker's submissions, newest first,
// along with the total count.
func (r *SubmissionRepo) ListByWorker(ctx context.Context, email string, page, limit int) ([]*models.Submission, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM submissions WHERE worker_email = $1", email).Scan(&total); err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	items, err := r.list(ctx, `
		SELECT `+submissionCols+` FROM submissions
		WHERE worker_email = $1 ORDER BY created_at DESC OFFSET $2 LIMIT $3
	`, email, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *SubmissionRepo) ListPendingByBuyer(ctx context.Context, email string) ([]*models.Submission, error) {
	return r.list(ctx, `
		SELECT `+submissionCols+` FROM submissions
		WHERE buyer_email = $1 AND status = $2 ORDER BY created_at DESC
	`, email, models.SubmissionStatusPending)
}

// ListApprovedByWorker returns the worker's approved submissions, the
// earnings history backing the worker read surface.
func (r *SubmissionRepo) ListApprovedByWorker(ctx context.Context, email string) ([]*models.Submission, error) {
	return r.list(ctx, `
		SELECT `+submissionCols+` FROM submissions
		WHERE worker_email = $1 AND status = $2 ORDER BY created_at DESC
	`, email, models.SubmissionStatusApproved)
}

func (r *SubmissionRepo) list(ctx context.Context, sql string, args ...any) ([]*models.Submission, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Submission
	for rows.Next() {
		var s models.Submission
		if err := rows.Scan(&s.ID, &s.TaskID, &s.TaskTitle, &s.WorkerEmail, &s.BuyerEmail, &s.PayableAmount, &s.Proof, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// CountPendingByTaskTx counts pending submissions inside the delete-task
// transaction so the guard and the delete see the same state.
func (r *SubmissionRepo) CountPendingByTaskTx(ctx context.Context, tx pgx.Tx, taskID uuid.UUID) (int64, error) {
	var n int64
	err := tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM submissions WHERE task_id = $1 AND status = $2
	`, taskID, models.SubmissionStatusPending).Scan(&n)
	return n, err
}

// CountByWorkerAndStatus returns the worker's submission count per status.
func (r *SubmissionRepo) CountByWorkerAndStatus(ctx context.Context, email string) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*) FROM submissions WHERE worker_email = $1 GROUP BY status
	`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// CountPendingByBuyer counts submissions awaiting the buyer's review.
func (r *SubmissionRepo) CountPendingByBuyer(ctx context.Context, email string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM submissions WHERE buyer_email = $1 AND status = $2
	`, email, models.SubmissionStatusPending).Scan(&n)
	return n, err
}

// SumApprovedByWorker returns the worker's total approved earnings.
func (r *SubmissionRepo) SumApprovedByWorker(ctx context.Context, email string) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(payable_amount), 0) FROM submissions
		WHERE worker_email = $1 AND status = $2
	`, email, models.SubmissionStatusApproved).Scan(&total)
	return total, err
}
