package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is append-only; Read is the only field that ever changes, and
// it flips unread -> read once.
type Notification struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Message    string    `json:"message"`
	ActionPath string    `json:"action_path"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}
