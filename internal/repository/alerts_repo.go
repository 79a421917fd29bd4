package repository

import (
	"context"

	"medihealth-portal/internal/domain"
)

// AlertsRepository 临床警报 Repository 接口
type AlertsRepository interface {
	// ListByPatients 患者集合的警报（created_at 降序）
	// patientIDs 为空时直接返回空结果
	ListByPatients(ctx context.Context, patientIDs []string) ([]*domain.Alert, error)

	// CountActiveByPatients 患者集合的未处理警报数
	CountActiveByPatients(ctx context.Context, patientIDs []string) (int, error)

	// Acknowledge 临床人员确认警报
	Acknowledge(ctx context.Context, alertID, clinicianID string) error
}
