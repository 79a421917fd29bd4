package repository

import (
	"context"
	"database/sql"
	"fmt"

	"medihealth-portal/internal/domain"

	"github.com/google/uuid"
)

// PostgresMessagesRepository 消息 Repository 实现
type PostgresMessagesRepository struct {
	db *sql.DB
}

// NewPostgresMessagesRepository 创建消息 Repository
func NewPostgresMessagesRepository(db *sql.DB) *PostgresMessagesRepository {
	return &PostgresMessagesRepository{db: db}
}

// 确保实现了接口
var _ MessagesRepository = (*PostgresMessagesRepository)(nil)

const messageSelect = `
	SELECT
		m.id::text,
		m.sender_id::text,
		m.recipient_id::text,
		COALESCE(m.subject, '') as subject,
		m.body,
		m.is_read,
		m.read_at,
		COALESCE(m.parent_message_id::text, '') as parent_message_id,
		COALESCE(m.patient_context_id::text, '') as patient_context_id,
		m.created_at,
		sp.first_name || ' ' || sp.last_name as sender_name,
		sp.role as sender_role,
		rp.first_name || ' ' || rp.last_name as recipient_name
	FROM messages m
	JOIN profiles sp ON sp.id = m.sender_id
	JOIN profiles rp ON rp.id = m.recipient_id
`

// ListReceived 收件箱
func (r *PostgresMessagesRepository) ListReceived(ctx context.Context, recipientID string, limit int) ([]*domain.Message, error) {
	if recipientID == "" {
		return nil, fmt.Errorf("recipient_id is required")
	}
	query := messageSelect + `
		WHERE m.recipient_id = $1
		ORDER BY m.created_at DESC
		LIMIT $2
	`
	return r.queryMessages(ctx, query, recipientID, normalizeLimit(limit))
}

// ListSent 发件箱
func (r *PostgresMessagesRepository) ListSent(ctx context.Context, senderID string, limit int) ([]*domain.Message, error) {
	if senderID == "" {
		return nil, fmt.Errorf("sender_id is required")
	}
	query := messageSelect + `
		WHERE m.sender_id = $1
		ORDER BY m.created_at DESC
		LIMIT $2
	`
	return r.queryMessages(ctx, query, senderID, normalizeLimit(limit))
}

// CountUnread 未读消息数
func (r *PostgresMessagesRepository) CountUnread(ctx context.Context, recipientID string) (int, error) {
	if recipientID == "" {
		return 0, fmt.Errorf("recipient_id is required")
	}

	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE recipient_id = $1 AND is_read = FALSE`,
		recipientID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}

// CreateMessage 发送消息
func (r *PostgresMessagesRepository) CreateMessage(ctx context.Context, msg *domain.Message) (string, error) {
	if msg.SenderID == "" || msg.RecipientID == "" {
		return "", fmt.Errorf("sender_id and recipient_id are required")
	}
	if msg.Body == "" {
		return "", fmt.Errorf("body is required")
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	query := `
		INSERT INTO messages (id, sender_id, recipient_id, subject, body, parent_message_id, patient_context_id)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, '')::uuid, NULLIF($7, '')::uuid)
		RETURNING id::text
	`

	var id string
	err := r.db.QueryRowContext(ctx, query,
		msg.ID, msg.SenderID, msg.RecipientID, msg.Subject, msg.Body, msg.ParentMessageID, msg.PatientContextID,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create message: %w", err)
	}
	return id, nil
}

// MarkRead 标记已读（仅限收件人）
func (r *PostgresMessagesRepository) MarkRead(ctx context.Context, messageID, recipientID string) error {
	if messageID == "" || recipientID == "" {
		return fmt.Errorf("message_id and recipient_id are required")
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE messages SET is_read = TRUE, read_at = NOW() WHERE id = $1 AND recipient_id = $2 AND is_read = FALSE`,
		messageID, recipientID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	// 已读或不属于该收件人都按无事发生处理（幂等）
	_, _ = res.RowsAffected()
	return nil
}

func (r *PostgresMessagesRepository) queryMessages(ctx context.Context, query string, args ...any) ([]*domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	out := []*domain.Message{}
	for rows.Next() {
		var m domain.Message
		var readAt sql.NullTime
		if err := rows.Scan(
			&m.ID,
			&m.SenderID,
			&m.RecipientID,
			&m.Subject,
			&m.Body,
			&m.IsRead,
			&readAt,
			&m.ParentMessageID,
			&m.PatientContextID,
			&m.CreatedAt,
			&m.SenderName,
			&m.SenderRole,
			&m.RecipientName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		if readAt.Valid {
			m.ReadAt = &readAt.Time
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 200 {
		return 50
	}
	return limit
}
