package models

import (
	"time"
)

// User roles. Admin is never self-assignable at registration.
const (
	RoleWorker = "worker"
	RoleBuyer  = "buyer"
	RoleAdmin  = "admin"
)

// Starting coin balances seeded at registration, per role.
const (
	StartingBalanceWorker int64 = 10
	StartingBalanceBuyer  int64 = 50
)

// User is identified by email. CoinBalance is only ever mutated through the
// ledger; nothing else writes it.
type User struct {
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CoinBalance  int64     `json:"coin_balance"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
