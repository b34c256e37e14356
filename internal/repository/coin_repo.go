package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigbite/backend/internal/models"
)

// CoinEntryRepo appends audit entries to the coin ledger. Entries are
// immutable once written.
type CoinEntryRepo struct {
	pool *pgxpool.Pool
}

func NewCoinEntryRepo(pool *pgxpool.Pool) *CoinEntryRepo {
	return &CoinEntryRepo{pool: pool}
}

func (r *CoinEntryRepo) CreateTx(ctx context.Context, tx pgx.Tx, e *models.CoinEntry) error {
	return tx.QueryRow(ctx, `
		INSERT INTO coin_ledger (id, email, ref_id, entry_type, amount, balance_after)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, e.ID, e.Email, e.RefID, e.EntryType, e.Amount, e.BalanceAfter).Scan(&e.CreatedAt)
}

func (r *CoinEntryRepo) ListByEmail(ctx context.Context, email string, limit int) ([]*models.CoinEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, email, ref_id, entry_type, amount, balance_after, created_at
		FROM coin_ledger WHERE email = $1 ORDER BY created_at DESC LIMIT $2
	`, email, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.CoinEntry
	for rows.Next() {
		var e models.CoinEntry
		if err := rows.Scan(&e.ID, &e.Email, &e.RefID, &e.EntryType, &e.Amount, &e.BalanceAfter, &e.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
