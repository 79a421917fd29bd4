package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"medihealth-portal/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ============================================
// 测试桩
// ============================================

type fakePatientsRepo struct {
	patient          *domain.Patient
	caregiver        *domain.Caregiver
	clinician        *domain.Clinician
	caregiverRels    []*domain.PatientCaregiver
	clinicianRels    []*domain.PatientClinician
	relationshipsErr error
}

func (f *fakePatientsRepo) GetPatientByProfile(ctx context.Context, profileID string) (*domain.Patient, error) {
	if f.patient == nil {
		return nil, fmt.Errorf("patient not found: %w", sql.ErrNoRows)
	}
	return f.patient, nil
}

func (f *fakePatientsRepo) GetCaregiverByProfile(ctx context.Context, profileID string) (*domain.Caregiver, error) {
	if f.caregiver == nil {
		return nil, fmt.Errorf("caregiver not found: %w", sql.ErrNoRows)
	}
	return f.caregiver, nil
}

func (f *fakePatientsRepo) GetClinicianByProfile(ctx context.Context, profileID string) (*domain.Clinician, error) {
	if f.clinician == nil {
		return nil, fmt.Errorf("clinician not found: %w", sql.ErrNoRows)
	}
	return f.clinician, nil
}

func (f *fakePatientsRepo) ListRelationshipsForCaregiver(ctx context.Context, caregiverID string) ([]*domain.PatientCaregiver, error) {
	if f.relationshipsErr != nil {
		return nil, f.relationshipsErr
	}
	return f.caregiverRels, nil
}

func (f *fakePatientsRepo) ListRelationshipsForClinician(ctx context.Context, clinicianID string) ([]*domain.PatientClinician, error) {
	if f.relationshipsErr != nil {
		return nil, f.relationshipsErr
	}
	return f.clinicianRels, nil
}

func (f *fakePatientsRepo) ListPatientsByIDs(ctx context.Context, ids []string) ([]*domain.Patient, error) {
	return []*domain.Patient{}, nil
}

type fakeVisitsRepo struct {
	historyIDs []string
	historyErr error
}

func (f *fakeVisitsRepo) ListDistinctPatientIDsForClinician(ctx context.Context, clinicianID string) ([]string, error) {
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.historyIDs, nil
}

func (f *fakeVisitsRepo) ListUpcomingByPatients(ctx context.Context, patientIDs []string, from time.Time, limit int) ([]*domain.Visit, error) {
	return nil, nil
}

func (f *fakeVisitsRepo) ListByPatients(ctx context.Context, patientIDs []string) ([]*domain.Visit, error) {
	return nil, nil
}

func (f *fakeVisitsRepo) ListByClinician(ctx context.Context, clinicianID string) ([]*domain.Visit, error) {
	return nil, nil
}

func (f *fakeVisitsRepo) ListByClinicianBetween(ctx context.Context, clinicianID string, from, to time.Time) ([]*domain.Visit, error) {
	return nil, nil
}

func (f *fakeVisitsRepo) CountUpcomingByClinician(ctx context.Context, clinicianID string, from time.Time) (int, error) {
	return 0, nil
}

func (f *fakeVisitsRepo) ListBetween(ctx context.Context, from, to time.Time) ([]*domain.Visit, error) {
	return nil, nil
}

func newTestResolver(patients *fakePatientsRepo, visits *fakeVisitsRepo) VisibilityService {
	return NewVisibilityService(patients, visits, zap.NewNop())
}

var testIdentity = domain.Identity{ID: "profile-1", Email: "user@example.com"}

func activeCaregiverRel(patientID string) *domain.PatientCaregiver {
	return &domain.PatientCaregiver{
		ID:         "rel-" + patientID,
		PatientID:  patientID,
		Revocation: domain.ActiveState(),
	}
}

func revokedCaregiverRel(patientID string) *domain.PatientCaregiver {
	return &domain.PatientCaregiver{
		ID:         "rel-" + patientID,
		PatientID:  patientID,
		Revocation: domain.RevokedState(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
	}
}

// ============================================
// 角色路径测试
// ============================================

func TestVisiblePatientIDs_PatientSeesOwnRecordOnly(t *testing.T) {
	patients := &fakePatientsRepo{patient: &domain.Patient{ID: "patient-1", ProfileID: "profile-1"}}
	resolver := newTestResolver(patients, &fakeVisitsRepo{})

	ids, err := resolver.VisiblePatientIDs(context.Background(), testIdentity, domain.RolePatient)

	require.NoError(t, err)
	assert.Equal(t, []string{"patient-1"}, ids)
}

func TestVisiblePatientIDs_PatientWithoutRecordGetsEmptySet(t *testing.T) {
	resolver := newTestResolver(&fakePatientsRepo{}, &fakeVisitsRepo{})

	ids, err := resolver.VisiblePatientIDs(context.Background(), testIdentity, domain.RolePatient)

	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestVisiblePatientIDs_CaregiverSeesActiveRelationships(t *testing.T) {
	patients := &fakePatientsRepo{
		caregiver:     &domain.Caregiver{ID: "caregiver-1", ProfileID: "profile-1"},
		caregiverRels: []*domain.PatientCaregiver{activeCaregiverRel("patient-1"), activeCaregiverRel("patient-2")},
	}
	resolver := newTestResolver(patients, &fakeVisitsRepo{})

	ids, err := resolver.VisiblePatientIDs(context.Background(), testIdentity, domain.RoleCaregiver)

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"patient-1", "patient-2"}, ids)
}

// 撤销关联在解析阶段排除：有效关联 patient-1 保留，已撤销的 patient-2 不出现
func TestVisiblePatientIDs_RevokedRelationshipExcluded(t *testing.T) {
	patients := &fakePatientsRepo{
		caregiver:     &domain.Caregiver{ID: "caregiver-1", ProfileID: "profile-1"},
		caregiverRels: []*domain.PatientCaregiver{activeCaregiverRel("patient-1"), revokedCaregiverRel("patient-2")},
	}
	resolver := newTestResolver(patients, &fakeVisitsRepo{})

	ids, err := resolver.VisiblePatientIDs(context.Background(), testIdentity, domain.RoleCaregiver)

	require.NoError(t, err)
	assert.Equal(t, []string{"patient-1"}, ids)
}

// 同一患者的重复有效关联行只产出一个 ID
func TestVisiblePatientIDs_DuplicateRelationshipsDeduplicated(t *testing.T) {
	patients := &fakePatientsRepo{
		caregiver: &domain.Caregiver{ID: "caregiver-1", ProfileID: "profile-1"},
		caregiverRels: []*domain.PatientCaregiver{
			activeCaregiverRel("patient-1"),
			activeCaregiverRel("patient-1"),
			activeCaregiverRel("patient-2"),
		},
	}
	resolver := newTestResolver(patients, &fakeVisitsRepo{})

	ids, err := resolver.VisiblePatientIDs(context.Background(), testIdentity, domain.RoleCaregiver)

	require.NoError(t, err)
	assert.Equal(t, []string{"patient-1", "patient-2"}, ids)
}

func TestVisiblePatientIDs_AdminAndVendorAlwaysEmpty(t *testing.T) {
	patients := &fakePatientsRepo{
		patient:       &domain.Patient{ID: "patient-1"},
		caregiverRels: []*domain.PatientCaregiver{activeCaregiverRel("patient-1")},
		clinicianRels: []*domain.PatientClinician{{ID: "rel-1", PatientID: "patient-1", Revocation: domain.ActiveState()}},
	}
	resolver := newTestResolver(patients, &fakeVisitsRepo{historyIDs: []string{"patient-1"}})

	for _, role := range []domain.Role{domain.RoleAgencyAdmin, domain.RoleVendor} {
		ids, err := resolver.VisiblePatientIDs(context.Background(), testIdentity, role)
		require.NoError(t, err)
		assert.Empty(t, ids, "role %s", role)

		ids, err = resolver.DocumentPatientIDs(context.Background(), testIdentity, role)
		require.NoError(t, err)
		assert.Empty(t, ids, "role %s documents", role)
	}
}

// 关系表路径与文档路径的分叉：临床人员的关联全部被撤销后，
// 警报路径为空，但历史访视覆盖的患者文档依然可见
func TestClinicianRevocation_AlertsEmptyButDocumentsKeepHistory(t *testing.T) {
	patients := &fakePatientsRepo{
		clinician: &domain.Clinician{ID: "clinician-1", ProfileID: "profile-1"},
		clinicianRels: []*domain.PatientClinician{
			// 关联均已撤销
			{ID: "rel-1", PatientID: "patient-1", Revocation: domain.RevokedState(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))},
			{ID: "rel-2", PatientID: "patient-2", Revocation: domain.RevokedState(time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))},
		},
	}
	visits := &fakeVisitsRepo{historyIDs: []string{"patient-1", "patient-2"}}
	resolver := newTestResolver(patients, visits)

	alertIDs, err := resolver.VisiblePatientIDs(context.Background(), testIdentity, domain.RoleClinician)
	require.NoError(t, err)
	assert.Empty(t, alertIDs)

	docIDs, err := resolver.DocumentPatientIDs(context.Background(), testIdentity, domain.RoleClinician)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"patient-1", "patient-2"}, docIDs)
}

// 解析无副作用：同一输入重复解析结果一致
func TestVisiblePatientIDs_Idempotent(t *testing.T) {
	patients := &fakePatientsRepo{
		caregiver:     &domain.Caregiver{ID: "caregiver-1", ProfileID: "profile-1"},
		caregiverRels: []*domain.PatientCaregiver{activeCaregiverRel("patient-1"), activeCaregiverRel("patient-2")},
	}
	resolver := newTestResolver(patients, &fakeVisitsRepo{})

	first, err := resolver.VisiblePatientIDs(context.Background(), testIdentity, domain.RoleCaregiver)
	require.NoError(t, err)
	second, err := resolver.VisiblePatientIDs(context.Background(), testIdentity, domain.RoleCaregiver)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// ============================================
// 失败降级测试（fail-closed）
// ============================================

func TestVisiblePatientIDs_BackendErrorDegradesToEmpty(t *testing.T) {
	patients := &fakePatientsRepo{
		caregiver:        &domain.Caregiver{ID: "caregiver-1"},
		relationshipsErr: fmt.Errorf("connection refused"),
	}
	resolver := newTestResolver(patients, &fakeVisitsRepo{})

	ids, err := resolver.VisiblePatientIDs(context.Background(), testIdentity, domain.RoleCaregiver)

	// 后端故障不返回错误页：收敛为空集合
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestDocumentPatientIDs_VisitHistoryErrorDegradesToEmpty(t *testing.T) {
	patients := &fakePatientsRepo{clinician: &domain.Clinician{ID: "clinician-1"}}
	visits := &fakeVisitsRepo{historyErr: fmt.Errorf("connection refused")}
	resolver := newTestResolver(patients, visits)

	ids, err := resolver.DocumentPatientIDs(context.Background(), testIdentity, domain.RoleClinician)

	require.NoError(t, err)
	assert.Empty(t, ids)
}
