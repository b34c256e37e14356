package models

import (
	"time"

	"github.com/google/uuid"
)

// Coin ledger entry types. Every balance change writes exactly one entry, so
// the ledger is a complete audit trail of coin movement.
const (
	CoinEntryEscrowLock    = "escrow_lock"
	CoinEntryEscrowRelease = "escrow_release"
	CoinEntryTaskEarning   = "task_earning"
	CoinEntryPurchase      = "purchase"
	CoinEntryWithdrawal    = "withdrawal"
)

type CoinEntry struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	RefID        *uuid.UUID `json:"ref_id,omitempty"`
	EntryType    string     `json:"entry_type"`
	Amount       int64      `json:"amount"`
	BalanceAfter int64      `json:"balance_after"`
	CreatedAt    time.Time  `json:"created_at"`
}
