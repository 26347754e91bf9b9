// internal/repository/notification_repository.go
package repository

import (
	"context"
	"time"
)

// ============================================
// PostgreSQL Notification Repository
// ============================================

type pgNotificationRepository struct {
	pool Pool
}

func (r *pgNotificationRepository) Create(ctx context.Context, notification *Notification) error {
	query := `
		INSERT INTO notifications (account_id, type, title, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, read, created_at`
	return r.pool.QueryRow(ctx, query,
		notification.AccountID, notification.Type, notification.Title, notification.Message,
	).Scan(&notification.ID, &notification.Read, &notification.CreatedAt)
}

func (r *pgNotificationRepository) FindByAccount(ctx context.Context, accountID string, unreadOnly bool) ([]*Notification, error) {
	query := `
		SELECT id, account_id, type, title, message, read, created_at
		FROM notifications
		WHERE account_id = $1`
	if unreadOnly {
		query += ` AND read = FALSE`
	}
	query += ` ORDER BY created_at DESC LIMIT 100`

	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*Notification
	for rows.Next() {
		var n Notification
		err := rows.Scan(&n.ID, &n.AccountID, &n.Type, &n.Title, &n.Message, &n.Read, &n.CreatedAt)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

func (r *pgNotificationRepository) MarkAsRead(ctx context.Context, id, accountID string) (bool, error) {
	// The account match keeps one user from acking another user's rows.
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND account_id = $2`,
		id, accountID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *pgNotificationRepository) CountByAccount(ctx context.Context, accountID string) (int, int, error) {
	var total, unread int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE read = FALSE)
		FROM notifications
		WHERE account_id = $1`, accountID,
	).Scan(&total, &unread)
	if err != nil {
		return 0, 0, err
	}
	return total, unread, nil
}

func (r *pgNotificationRepository) DeleteOlderThan(ctx context.Context, olderThan time.Time, readOnly bool) (int, error) {
	query := `DELETE FROM notifications WHERE created_at < $1`
	if readOnly {
		query += ` AND read = TRUE`
	}
	tag, err := r.pool.Exec(ctx, query, olderThan)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
