package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigbite/backend/internal/models"
)

type NotificationRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationRepo(pool *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

func (r *NotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO notifications (id, email, message, action_path, read)
		VALUES ($1, $2, $3, $4, FALSE)
		RETURNING created_at
	`, n.ID, n.Email, n.Message, n.ActionPath).Scan(&n.CreatedAt)
}

func (r *NotificationRepo) ListByEmail(ctx context.Context, email string) ([]*models.Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, email, message, action_path, read, created_at
		FROM notifications WHERE email = $1 ORDER BY created_at DESC
	`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.Email, &n.Message, &n.ActionPath, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &n)
	}
	return list, rows.Err()
}

// MarkRead flips unread -> read once. The email condition stops users marking
// someone else's notification.
func (r *NotificationRepo) MarkRead(ctx context.Context, id uuid.UUID, email string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications SET read = TRUE WHERE id = $1 AND email = $2 AND read = FALSE
	`, id, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
