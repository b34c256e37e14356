package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/gigbite/backend/internal/models"
)

// AppendArgs is the queued notification append. Delivery is asynchronous and
// retried by the queue; its failure never affects the transition that
// produced it.
type AppendArgs struct {
	Email      string `json:"email"`
	Message    string `json:"message"`
	ActionPath string `json:"action_path"`
}

func (AppendArgs) Kind() string { return "append_notification" }

// NotificationStore is the contract the worker needs to persist a
// notification.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
}

// AppendWorker writes queued notifications to the store.
type AppendWorker struct {
	river.WorkerDefaults[AppendArgs]
	store NotificationStore
}

func NewAppendWorker(store NotificationStore) *AppendWorker {
	return &AppendWorker{store: store}
}

func (w *AppendWorker) Work(ctx context.Context, job *river.Job[AppendArgs]) error {
	args := job.Args
	n := &models.Notification{
		ID:         uuid.New(),
		Email:      args.Email,
		Message:    args.Message,
		ActionPath: args.ActionPath,
	}
	if err := w.store.Create(ctx, n); err != nil {
		return fmt.Errorf("append notification for %s: %w", args.Email, err)
	}
	return nil
}
