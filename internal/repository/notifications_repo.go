package repository

import (
	"context"

	"medihealth-portal/internal/domain"
)

// NotificationsRepository 站内通知 Repository 接口
type NotificationsRepository interface {
	// ListByUser 用户的通知（created_at 降序）
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error)

	// CountUnread 未读通知数（通知铃铛角标）
	CountUnread(ctx context.Context, userID string) (int, error)

	// CreateNotification 写入通知，返回新 ID
	CreateNotification(ctx context.Context, n *domain.Notification) (string, error)

	// MarkRead 标记单条已读；只有归属用户可标记
	MarkRead(ctx context.Context, notificationID, userID string) error

	// MarkAllRead 全部标记已读
	MarkAllRead(ctx context.Context, userID string) error
}
