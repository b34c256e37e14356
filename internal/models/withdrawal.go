package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	WithdrawalStatusPending  = "pending"
	WithdrawalStatusApproved = "approved"
)

// Coin/cash exchange rate and the smallest withdrawable amount.
const (
	CoinsPerDollar     int64 = 20
	MinWithdrawalCoins int64 = 200
)

// Withdrawal is a worker's request to cash out coins. The worker's balance is
// debited at approval time, not at request time.
type Withdrawal struct {
	ID          uuid.UUID `json:"id"`
	WorkerEmail string    `json:"worker_email"`
	Coins       int64     `json:"coins"`
	AmountCents int64     `json:"amount_cents"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
