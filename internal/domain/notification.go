package domain

import "time"

// Notification 站内通知领域模型（对应 notifications 表）
// 按 user_id 直接归属，不走患者集合
type Notification struct {
	// 主键
	ID string `db:"id"` // UUID, PRIMARY KEY

	// 归属用户
	UserID string `db:"user_id"` // UUID, NOT NULL, REFERENCES profiles(id)

	// 内容
	Title   string `db:"title"`   // NOT NULL
	Message string `db:"message"` // NOT NULL

	// 类型和优先级
	Type     string `db:"type"`     // CHECK IN ('visit_reminder', 'visit_update', 'message', 'document', 'care_plan_update', 'system')
	Priority string `db:"priority"` // CHECK IN ('low', 'normal', 'high', 'urgent')

	// 已读状态
	IsRead bool       `db:"is_read"`
	ReadAt *time.Time `db:"read_at"` // nullable

	// 跳转地址（pc360Front 通知铃铛点击后的路由）
	ActionURL string `db:"action_url"` // nullable

	// 时间戳
	CreatedAt time.Time `db:"created_at"`
}
