package repository

import (
	"context"

	"medihealth-portal/internal/domain"
)

// PatientsRepository 患者与护理关系 Repository 接口
// 可见性解析器的数据底座：角色实体查找 + 关联表遍历
// 关联行原样返回（含撤销状态）；撤销过滤和去重由解析器基于
// RevocationState 完成，DB 层不隐藏任何关联
type PatientsRepository interface {
	// ========== 角色实体查找（按 profile_id） ==========
	GetPatientByProfile(ctx context.Context, profileID string) (*domain.Patient, error)
	GetCaregiverByProfile(ctx context.Context, profileID string) (*domain.Caregiver, error)
	GetClinicianByProfile(ctx context.Context, profileID string) (*domain.Clinician, error)

	// ========== 关联表遍历 ==========
	// ListRelationshipsForCaregiver 护理人员的全部关联行（含已撤销）
	ListRelationshipsForCaregiver(ctx context.Context, caregiverID string) ([]*domain.PatientCaregiver, error)

	// ListRelationshipsForClinician 临床人员的全部关联行（含已撤销，警报路径）
	ListRelationshipsForClinician(ctx context.Context, clinicianID string) ([]*domain.PatientClinician, error)

	// ========== 患者名册 ==========
	// ListPatientsByIDs 按患者 ID 集合取名册（带档案 JOIN）
	// ids 为空时直接返回空结果
	ListPatientsByIDs(ctx context.Context, ids []string) ([]*domain.Patient, error)
}
