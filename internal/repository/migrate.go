package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates all marketplace tables if they do not exist. Safe to
// run on every start.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			email VARCHAR(255) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			role VARCHAR(16) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			coin_balance BIGINT NOT NULL DEFAULT 0 CHECK (coin_balance >= 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id UUID PRIMARY KEY,
			buyer_email VARCHAR(255) NOT NULL REFERENCES users(email),
			title VARCHAR(255) NOT NULL,
			detail TEXT NOT NULL DEFAULT '',
			category VARCHAR(64) NOT NULL,
			total_cost BIGINT NOT NULL CHECK (total_cost >= 0),
			required_workers INT NOT NULL CHECK (required_workers >= 0),
			payable_amount BIGINT NOT NULL,
			deadline TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS submissions (
			id UUID PRIMARY KEY,
			task_id UUID NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
			task_title VARCHAR(255) NOT NULL DEFAULT '',
			worker_email VARCHAR(255) NOT NULL REFERENCES users(email),
			buyer_email VARCHAR(255) NOT NULL,
			payable_amount BIGINT NOT NULL,
			proof JSONB,
			status VARCHAR(16) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS withdrawals (
			id UUID PRIMARY KEY,
			worker_email VARCHAR(255) NOT NULL REFERENCES users(email),
			coins BIGINT NOT NULL,
			amount_cents BIGINT NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS payments (
			id UUID PRIMARY KEY,
			buyer_email VARCHAR(255) NOT NULL REFERENCES users(email),
			coins BIGINT NOT NULL,
			amount_cents BIGINT NOT NULL,
			intent_id VARCHAR(255) NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id UUID PRIMARY KEY,
			email VARCHAR(255) NOT NULL,
			message TEXT NOT NULL,
			action_path VARCHAR(255) NOT NULL DEFAULT '',
			read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS coin_ledger (
			id UUID PRIMARY KEY,
			email VARCHAR(255) NOT NULL,
			ref_id UUID,
			entry_type VARCHAR(32) NOT NULL,
			amount BIGINT NOT NULL,
			balance_after BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_task ON submissions(task_id)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_worker ON submissions(worker_email)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_email ON notifications(email)`,
		`CREATE INDEX IF NOT EXISTS idx_coin_ledger_email ON coin_ledger(email)`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
