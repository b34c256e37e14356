package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Submission status enum. Transitions exactly once, pending -> approved or
// pending -> rejected; terminal states are immutable.
const (
	SubmissionStatusPending  = "pending"
	SubmissionStatusApproved = "approved"
	SubmissionStatusRejected = "rejected"
)

type Submission struct {
	ID            uuid.UUID       `json:"id"`
	TaskID        uuid.UUID       `json:"task_id"`
	TaskTitle     string          `json:"task_title"`
	WorkerEmail   string          `json:"worker_email"`
	BuyerEmail    string          `json:"buyer_email"`
	PayableAmount int64           `json:"payable_amount"`
	Proof         json.RawMessage `json:"proof"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
