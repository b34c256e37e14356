package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gigbite/backend/internal/models"
	"github.com/gigbite/backend/internal/repository"
)

// ErrInsufficientFunds is returned when a debit would drive a balance
// negative. The debit is rejected before any mutation.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrNoSuchAccount is returned when the email does not resolve to a user.
var ErrNoSuchAccount = errors.New("no such account")

// AccountStore is the minimal user repository interface the ledger needs.
type AccountStore interface {
	GetByEmailForUpdate(ctx context.Context, tx pgx.Tx, email string) (*models.User, error)
	AdjustBalanceTx(ctx context.Context, tx pgx.Tx, email string, delta int64) (newBalance int64, err error)
}

// EntryStore appends immutable audit entries.
type EntryStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, e *models.CoinEntry) error
}

// Ledger is the only component allowed to mutate a coin balance. Every
// movement goes through ApplyDelta inside the caller's transaction and leaves
// an audit entry behind.
type Ledger struct {
	Accounts AccountStore
	Entries  EntryStore
}

func New(accounts AccountStore, entries EntryStore) *Ledger {
	return &Ledger{Accounts: accounts, Entries: entries}
}

// ApplyDelta adjusts the user's balance by amount (positive = credit,
// negative = debit) and appends a coin_ledger entry typed entryType with the
// optional refID (task, withdrawal or payment id). It locks the account row
// first, so concurrent deltas against the same account serialize, and rejects
// a debit that would go negative before touching the balance.
func (l *Ledger) ApplyDelta(ctx context.Context, tx pgx.Tx, email string, amount int64, entryType string, refID *uuid.UUID) error {
	acc, err := l.Accounts.GetByEmailForUpdate(ctx, tx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, pgx.ErrNoRows) {
			return ErrNoSuchAccount
		}
		return err
	}
	if amount < 0 && acc.CoinBalance < -amount {
		return ErrInsufficientFunds
	}
	newBalance, err := l.Accounts.AdjustBalanceTx(ctx, tx, email, amount)
	if err != nil {
		return err
	}
	return l.Entries.CreateTx(ctx, tx, &models.CoinEntry{
		ID:           uuid.New(),
		Email:        email,
		RefID:        refID,
		EntryType:    entryType,
		Amount:       amount,
		BalanceAfter: newBalance,
	})
}
