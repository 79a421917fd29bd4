package service

import (
	"context"
	"database/sql"
	"errors"

	"medihealth-portal/internal/domain"
	"medihealth-portal/internal/repository"

	"go.uber.org/zap"
)

// VisibilityService 角色可见性解析器
// 输入认证身份+角色，输出该身份允许查看的患者 ID 集合
// 失败语义：查不到角色实体/关联记录 => 空集合（无访问证明即无访问），不返回错误页
type VisibilityService interface {
	// VisiblePatientIDs 关系表路径的可见患者集合
	// patient: 本人患者记录（0 或 1 个）
	// caregiver: patient_caregivers 有效关联
	// clinician: patient_clinicians 有效关联（警报等场景）
	// agency_admin / vendor: 未定义解析规则，恒为空
	VisiblePatientIDs(ctx context.Context, identity domain.Identity, role domain.Role) ([]string, error)

	// DocumentPatientIDs 文档路径的可见患者集合
	// 与 VisiblePatientIDs 的唯一区别：clinician 基于全部历史访视（访视历史不可撤销），
	// 同一患者多次访视去重后只出现一次
	DocumentPatientIDs(ctx context.Context, identity domain.Identity, role domain.Role) ([]string, error)
}

type visibilityService struct {
	patientsRepo repository.PatientsRepository
	visitsRepo   repository.VisitsRepository
	logger       *zap.Logger
}

// NewVisibilityService 创建可见性解析器
func NewVisibilityService(patientsRepo repository.PatientsRepository, visitsRepo repository.VisitsRepository, logger *zap.Logger) VisibilityService {
	return &visibilityService{
		patientsRepo: patientsRepo,
		visitsRepo:   visitsRepo,
		logger:       logger,
	}
}

// VisiblePatientIDs 关系表路径
func (s *visibilityService) VisiblePatientIDs(ctx context.Context, identity domain.Identity, role domain.Role) ([]string, error) {
	switch role {
	case domain.RolePatient:
		return s.ownPatientID(ctx, identity)

	case domain.RoleCaregiver:
		caregiver, err := s.patientsRepo.GetCaregiverByProfile(ctx, identity.ID)
		if err != nil {
			return s.degrade(err, "caregiver lookup", identity.ID)
		}
		rels, err := s.patientsRepo.ListRelationshipsForCaregiver(ctx, caregiver.ID)
		if err != nil {
			return s.degrade(err, "caregiver relationships", identity.ID)
		}
		ids := make([]string, 0, len(rels))
		seen := map[string]bool{}
		for _, rel := range rels {
			if rel.Revocation.Revoked() || seen[rel.PatientID] {
				continue
			}
			seen[rel.PatientID] = true
			ids = append(ids, rel.PatientID)
		}
		return ids, nil

	case domain.RoleClinician:
		clinician, err := s.patientsRepo.GetClinicianByProfile(ctx, identity.ID)
		if err != nil {
			return s.degrade(err, "clinician lookup", identity.ID)
		}
		rels, err := s.patientsRepo.ListRelationshipsForClinician(ctx, clinician.ID)
		if err != nil {
			return s.degrade(err, "clinician relationships", identity.ID)
		}
		ids := make([]string, 0, len(rels))
		seen := map[string]bool{}
		for _, rel := range rels {
			if rel.Revocation.Revoked() || seen[rel.PatientID] {
				continue
			}
			seen[rel.PatientID] = true
			ids = append(ids, rel.PatientID)
		}
		return ids, nil

	case domain.RoleAgencyAdmin, domain.RoleVendor:
		// 未定义解析规则的角色：恒为空集合
		return []string{}, nil
	}

	s.logger.Warn("Visibility requested for unknown role",
		zap.String("profile_id", identity.ID),
		zap.String("role", role.String()),
	)
	return []string{}, nil
}

// DocumentPatientIDs 文档路径
func (s *visibilityService) DocumentPatientIDs(ctx context.Context, identity domain.Identity, role domain.Role) ([]string, error) {
	switch role {
	case domain.RolePatient, domain.RoleCaregiver:
		return s.VisiblePatientIDs(ctx, identity, role)

	case domain.RoleClinician:
		clinician, err := s.patientsRepo.GetClinicianByProfile(ctx, identity.ID)
		if err != nil {
			return s.degrade(err, "clinician lookup", identity.ID)
		}
		ids, err := s.visitsRepo.ListDistinctPatientIDsForClinician(ctx, clinician.ID)
		if err != nil {
			return s.degrade(err, "clinician visit history", identity.ID)
		}
		return ids, nil

	case domain.RoleAgencyAdmin, domain.RoleVendor:
		return []string{}, nil
	}

	s.logger.Warn("Document visibility requested for unknown role",
		zap.String("profile_id", identity.ID),
		zap.String("role", role.String()),
	)
	return []string{}, nil
}

// ownPatientID 患者本人：profile_id 匹配的患者记录，0 或 1 个
func (s *visibilityService) ownPatientID(ctx context.Context, identity domain.Identity) ([]string, error) {
	patient, err := s.patientsRepo.GetPatientByProfile(ctx, identity.ID)
	if err != nil {
		return s.degrade(err, "patient lookup", identity.ID)
	}
	return []string{patient.ID}, nil
}

// degrade 失败降级：记录不存在按正常空集合处理，其它后端错误记警告后同样收敛为空集合
// （数据解析路径 fail-closed；与路由守卫的 fail-open 策略相反）
func (s *visibilityService) degrade(err error, step, profileID string) ([]string, error) {
	if !errors.Is(err, sql.ErrNoRows) {
		s.logger.Warn("Visibility resolution degraded to empty set",
			zap.String("step", step),
			zap.String("profile_id", profileID),
			zap.Error(err),
		)
	}
	return []string{}, nil
}
