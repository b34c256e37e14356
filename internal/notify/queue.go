package notify

import (
	"context"
)

// InsertFunc enqueues an AppendArgs job. Provided by main as a closure over
// river.Client.Insert (breaks the init cycle between queue and client).
type InsertFunc func(ctx context.Context, args AppendArgs) error

// Queue is the coordinator-facing notification sink backed by the job queue.
type Queue struct {
	insert InsertFunc
}

func NewQueue(insert InsertFunc) *Queue {
	return &Queue{insert: insert}
}

// Notify enqueues a notification append. The caller treats a failure here as
// recoverable and never fatal.
func (q *Queue) Notify(ctx context.Context, email, message, actionPath string) error {
	return q.insert(ctx, AppendArgs{Email: email, Message: message, ActionPath: actionPath})
}
