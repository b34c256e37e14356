package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigbite/backend/internal/models"
)

type PaymentRepo struct {
	pool *pgxpool.Pool
}

func NewPaymentRepo(pool *pgxpool.Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

func (r *PaymentRepo) CreateTx(ctx context.Context, tx pgx.Tx, p *models.Payment) error {
	return tx.QueryRow(ctx, `
		INSERT INTO payments (id, buyer_email, coins, amount_cents, intent_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, p.ID, p.BuyerEmail, p.Coins, p.AmountCents, p.IntentID).Scan(&p.CreatedAt)
}

func (r *PaymentRepo) ListByBuyer(ctx context.Context, email string) ([]*models.Payment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, buyer_email, coins, amount_cents, intent_id, created_at
		FROM payments WHERE buyer_email = $1 ORDER BY created_at DESC
	`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Payment
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.BuyerEmail, &p.Coins, &p.AmountCents, &p.IntentID, &p.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// SumCoinsByBuyer returns the total coins the buyer has ever purchased.
func (r *PaymentRepo) SumCoinsByBuyer(ctx context.Context, email string) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(coins), 0) FROM payments WHERE buyer_email = $1
	`, email).Scan(&total)
	return total, err
}

// TotalVolumeCents returns the platform's lifetime payment volume.
func (r *PaymentRepo) TotalVolumeCents(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(amount_cents), 0) FROM payments`).Scan(&total)
	return total, err
}
