package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment is an immutable record of a completed coin purchase. Creating one is
// always paired with a credit to the buyer's balance in the same transaction.
type Payment struct {
	ID          uuid.UUID `json:"id"`
	BuyerEmail  string    `json:"buyer_email"`
	Coins       int64     `json:"coins"`
	AmountCents int64     `json:"amount_cents"`
	IntentID    string    `json:"intent_id"`
	CreatedAt   time.Time `json:"created_at"`
}
