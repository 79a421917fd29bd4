package repository

import (
	"context"
	"database/sql"
	"fmt"

	"medihealth-portal/internal/domain"

	"github.com/google/uuid"
)

// PostgresNotificationsRepository 站内通知 Repository 实现
type PostgresNotificationsRepository struct {
	db *sql.DB
}

// NewPostgresNotificationsRepository 创建通知 Repository
func NewPostgresNotificationsRepository(db *sql.DB) *PostgresNotificationsRepository {
	return &PostgresNotificationsRepository{db: db}
}

// 确保实现了接口
var _ NotificationsRepository = (*PostgresNotificationsRepository)(nil)

// ListByUser 用户的通知
func (r *PostgresNotificationsRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	query := `
		SELECT
			id::text,
			user_id::text,
			title,
			message,
			type,
			priority,
			is_read,
			read_at,
			COALESCE(action_url, '') as action_url,
			created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	out := []*domain.Notification{}
	for rows.Next() {
		var n domain.Notification
		var readAt sql.NullTime
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Title,
			&n.Message,
			&n.Type,
			&n.Priority,
			&n.IsRead,
			&readAt,
			&n.ActionURL,
			&n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if readAt.Valid {
			n.ReadAt = &readAt.Time
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

// CountUnread 未读通知数
func (r *PostgresNotificationsRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("user_id is required")
	}

	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}

// CreateNotification 写入通知
func (r *PostgresNotificationsRepository) CreateNotification(ctx context.Context, n *domain.Notification) (string, error) {
	if n.UserID == "" {
		return "", fmt.Errorf("user_id is required")
	}
	if n.Title == "" || n.Message == "" {
		return "", fmt.Errorf("title and message are required")
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Type == "" {
		n.Type = "system"
	}
	if n.Priority == "" {
		n.Priority = "normal"
	}

	query := `
		INSERT INTO notifications (id, user_id, title, message, type, priority, action_url)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
		RETURNING id::text
	`

	var id string
	err := r.db.QueryRowContext(ctx, query,
		n.ID, n.UserID, n.Title, n.Message, n.Type, n.Priority, n.ActionURL,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create notification: %w", err)
	}
	return id, nil
}

// MarkRead 标记单条已读（仅限归属用户，幂等）
func (r *PostgresNotificationsRepository) MarkRead(ctx context.Context, notificationID, userID string) error {
	if notificationID == "" || userID == "" {
		return fmt.Errorf("notification_id and user_id are required")
	}

	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = NOW() WHERE id = $1 AND user_id = $2 AND is_read = FALSE`,
		notificationID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// MarkAllRead 全部标记已读
func (r *PostgresNotificationsRepository) MarkAllRead(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("user_id is required")
	}

	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = NOW() WHERE user_id = $1 AND is_read = FALSE`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
