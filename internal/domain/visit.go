package domain

import "time"

// Visit 家访领域模型（对应 visits 表）
// 注意：访视历史不可撤销，clinician 的文档可见范围基于全部历史访视
type Visit struct {
	// 主键
	ID string `db:"id"` // UUID, PRIMARY KEY

	// 关联
	PatientID   string `db:"patient_id"`   // UUID, NOT NULL
	ClinicianID string `db:"clinician_id"` // UUID, NOT NULL

	// 访视类型和状态
	VisitType string `db:"visit_type"` // CHECK IN ('nursing', 'physical_therapy', 'occupational_therapy', 'speech_therapy', 'aide', 'other')
	Status    string `db:"status"`     // CHECK IN ('scheduled', 'en_route', 'in_progress', 'completed', 'cancelled', 'no_show')

	// 排程时间
	ScheduledStart time.Time  `db:"scheduled_start"` // TIMESTAMPTZ, NOT NULL
	ScheduledEnd   time.Time  `db:"scheduled_end"`   // TIMESTAMPTZ, NOT NULL
	ActualStart    *time.Time `db:"actual_start"`    // nullable
	ActualEnd      *time.Time `db:"actual_end"`      // nullable

	// 记录
	VisitNotes string `db:"visit_notes"` // nullable

	// 时间戳
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	// JOIN 填充字段（不在 visits 表中）
	PatientName   string `db:"-"`
	ClinicianName string `db:"-"`
}
