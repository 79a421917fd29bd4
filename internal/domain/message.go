package domain

import "time"

// Message 消息领域模型（对应 messages 表）
// 可见性由 sender/recipient 对推导，不走患者集合
type Message struct {
	// 主键
	ID string `db:"id"` // UUID, PRIMARY KEY

	// 收发双方
	SenderID    string `db:"sender_id"`    // UUID, NOT NULL, REFERENCES profiles(id)
	RecipientID string `db:"recipient_id"` // UUID, NOT NULL, REFERENCES profiles(id)

	// 内容
	Subject string `db:"subject"` // nullable
	Body    string `db:"body"`    // NOT NULL

	// 已读状态
	IsRead bool       `db:"is_read"`
	ReadAt *time.Time `db:"read_at"` // nullable

	// 线程与患者上下文
	ParentMessageID  string `db:"parent_message_id"`  // nullable
	PatientContextID string `db:"patient_context_id"` // nullable

	// 时间戳
	CreatedAt time.Time `db:"created_at"`

	// JOIN 填充
	SenderName    string `db:"-"`
	SenderRole    string `db:"-"`
	RecipientName string `db:"-"`
}
