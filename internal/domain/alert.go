package domain

import "time"

// Alert 临床警报领域模型（对应 alerts 表）
// clinician 的警报可见范围基于 patient_clinicians 有效关联（撤销即不可见）
type Alert struct {
	// 主键
	ID string `db:"id"` // UUID, PRIMARY KEY

	// 归属患者
	PatientID string `db:"patient_id"` // UUID, NOT NULL

	// 警报内容
	Title    string `db:"title"`    // NOT NULL
	Message  string `db:"message"`  // NOT NULL
	Severity string `db:"severity"` // CHECK IN ('low', 'medium', 'high', 'critical')

	// 处理状态
	Status         string     `db:"status"`          // CHECK IN ('active', 'acknowledged', 'resolved')
	AcknowledgedBy string     `db:"acknowledged_by"` // nullable, REFERENCES clinicians(id)
	AcknowledgedAt *time.Time `db:"acknowledged_at"` // nullable

	// 时间戳
	CreatedAt time.Time `db:"created_at"`

	// JOIN 填充
	PatientName string `db:"-"`
}
