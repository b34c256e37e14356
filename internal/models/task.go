package models

import (
	"time"

	"github.com/google/uuid"
)

// Task categories the platform accepts. Each category has a proof schema in
// the schemas directory that worker submissions are validated against.
const (
	CategorySocialShare    = "social_share"
	CategoryAppReview      = "app_review"
	CategorySurvey         = "survey"
	CategoryContentWriting = "content_writing"
)

// Task is a paid micro-task posted by a buyer. TotalCost is escrowed from the
// buyer's balance at creation and stays equal to the coins still held for
// unapproved slots: every approval reduces it by exactly PayableAmount, and
// deleting the task refunds whatever remains.
type Task struct {
	ID              uuid.UUID `json:"id"`
	BuyerEmail      string    `json:"buyer_email"`
	Title           string    `json:"title"`
	Detail          string    `json:"detail"`
	Category        string    `json:"category"`
	TotalCost       int64     `json:"total_cost"`
	RequiredWorkers int32     `json:"required_workers"`
	PayableAmount   int64     `json:"payable_amount"`
	Deadline        time.Time `json:"deadline"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
