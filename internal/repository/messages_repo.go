package repository

import (
	"context"

	"medihealth-portal/internal/domain"
)

// MessagesRepository 消息 Repository 接口
// 消息按 sender/recipient 归属，不走患者集合过滤
type MessagesRepository interface {
	// ListReceived 收件箱（created_at 降序）
	ListReceived(ctx context.Context, recipientID string, limit int) ([]*domain.Message, error)

	// ListSent 发件箱（created_at 降序）
	ListSent(ctx context.Context, senderID string, limit int) ([]*domain.Message, error)

	// CountUnread 未读消息数
	CountUnread(ctx context.Context, recipientID string) (int, error)

	// CreateMessage 发送消息，返回新 ID
	CreateMessage(ctx context.Context, msg *domain.Message) (string, error)

	// MarkRead 标记已读；只有收件人本人可标记
	MarkRead(ctx context.Context, messageID, recipientID string) error
}
