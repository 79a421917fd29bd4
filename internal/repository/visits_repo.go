package repository

import (
	"context"
	"time"

	"medihealth-portal/internal/domain"
)

// VisitsRepository 访视 Repository 接口
type VisitsRepository interface {
	// ListDistinctPatientIDsForClinician 临床人员历史访视覆盖的患者集合（文档路径）
	// 访视历史不可撤销，因此不过滤撤销状态；同一患者多次访视必须去重
	ListDistinctPatientIDsForClinician(ctx context.Context, clinicianID string) ([]string, error)

	// ListUpcomingByPatients 患者集合的未来访视（scheduled_start 升序）
	// patientIDs 为空时直接返回空结果
	ListUpcomingByPatients(ctx context.Context, patientIDs []string, from time.Time, limit int) ([]*domain.Visit, error)

	// ListByPatients 患者集合的全部访视（scheduled_start 升序）
	ListByPatients(ctx context.Context, patientIDs []string) ([]*domain.Visit, error)

	// ListByClinician 临床人员名下的访视（scheduled_start 升序）
	ListByClinician(ctx context.Context, clinicianID string) ([]*domain.Visit, error)

	// ListByClinicianBetween 临床人员某时间窗内的访视（当日排程）
	ListByClinicianBetween(ctx context.Context, clinicianID string, from, to time.Time) ([]*domain.Visit, error)

	// CountUpcomingByClinician 临床人员未来访视数（scheduled / en_route）
	CountUpcomingByClinician(ctx context.Context, clinicianID string, from time.Time) (int, error)

	// ListBetween 机构全量访视（管理端导出）
	ListBetween(ctx context.Context, from, to time.Time) ([]*domain.Visit, error)
}
