package repository

import (
	"context"
	"database/sql"
	"fmt"

	"medihealth-portal/internal/domain"

	"github.com/lib/pq"
)

// PostgresPatientsRepository 患者与护理关系 Repository 实现
type PostgresPatientsRepository struct {
	db *sql.DB
}

// NewPostgresPatientsRepository 创建患者 Repository
func NewPostgresPatientsRepository(db *sql.DB) *PostgresPatientsRepository {
	return &PostgresPatientsRepository{db: db}
}

// 确保实现了接口
var _ PatientsRepository = (*PostgresPatientsRepository)(nil)

// GetPatientByProfile 按 profile_id 获取患者记录（至多一条）
func (r *PostgresPatientsRepository) GetPatientByProfile(ctx context.Context, profileID string) (*domain.Patient, error) {
	if profileID == "" {
		return nil, fmt.Errorf("profile_id is required")
	}

	query := `
		SELECT
			id::text,
			profile_id::text,
			COALESCE(medical_record_number, '') as medical_record_number,
			COALESCE(primary_diagnosis, '') as primary_diagnosis,
			admission_date,
			discharge_date,
			status,
			created_at,
			updated_at
		FROM patients
		WHERE profile_id = $1
	`

	var p domain.Patient
	var admissionDate, dischargeDate sql.NullTime
	err := r.db.QueryRowContext(ctx, query, profileID).Scan(
		&p.ID,
		&p.ProfileID,
		&p.MedicalRecordNumber,
		&p.PrimaryDiagnosis,
		&admissionDate,
		&dischargeDate,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("patient not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	if admissionDate.Valid {
		p.AdmissionDate = &admissionDate.Time
	}
	if dischargeDate.Valid {
		p.DischargeDate = &dischargeDate.Time
	}
	return &p, nil
}

// GetCaregiverByProfile 按 profile_id 获取护理人员记录
func (r *PostgresPatientsRepository) GetCaregiverByProfile(ctx context.Context, profileID string) (*domain.Caregiver, error) {
	if profileID == "" {
		return nil, fmt.Errorf("profile_id is required")
	}

	query := `
		SELECT id::text, profile_id::text, COALESCE(relation, '') as relation, created_at
		FROM caregivers
		WHERE profile_id = $1
	`

	var c domain.Caregiver
	err := r.db.QueryRowContext(ctx, query, profileID).Scan(&c.ID, &c.ProfileID, &c.Relation, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("caregiver not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get caregiver: %w", err)
	}
	return &c, nil
}

// GetClinicianByProfile 按 profile_id 获取临床人员记录
func (r *PostgresPatientsRepository) GetClinicianByProfile(ctx context.Context, profileID string) (*domain.Clinician, error) {
	if profileID == "" {
		return nil, fmt.Errorf("profile_id is required")
	}

	query := `
		SELECT
			id::text,
			profile_id::text,
			COALESCE(discipline, '') as discipline,
			COALESCE(license_no, '') as license_no,
			COALESCE(agency_name, '') as agency_name,
			created_at
		FROM clinicians
		WHERE profile_id = $1
	`

	var c domain.Clinician
	err := r.db.QueryRowContext(ctx, query, profileID).Scan(
		&c.ID, &c.ProfileID, &c.Discipline, &c.LicenseNo, &c.AgencyName, &c.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("clinician not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get clinician: %w", err)
	}
	return &c, nil
}

// ListRelationshipsForCaregiver 护理人员的全部关联行
// 不在 SQL 里过滤 revoked_at：撤销状态经 RevocationState 显式上浮，
// 由解析器决定排除
func (r *PostgresPatientsRepository) ListRelationshipsForCaregiver(ctx context.Context, caregiverID string) ([]*domain.PatientCaregiver, error) {
	if caregiverID == "" {
		return nil, fmt.Errorf("caregiver_id is required")
	}

	query := `
		SELECT id::text, patient_id::text, caregiver_id::text, revoked_at, created_at
		FROM patient_caregivers
		WHERE caregiver_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, caregiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to list caregiver relationships: %w", err)
	}
	defer rows.Close()

	out := []*domain.PatientCaregiver{}
	for rows.Next() {
		var rel domain.PatientCaregiver
		var revokedAt sql.NullTime
		if err := rows.Scan(&rel.ID, &rel.PatientID, &rel.CaregiverID, &revokedAt, &rel.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan caregiver relationship: %w", err)
		}
		rel.Revocation = domain.RevocationFromNullTime(revokedAt)
		out = append(out, &rel)
	}
	return out, rows.Err()
}

// ListRelationshipsForClinician 临床人员的全部关联行（警报路径）
func (r *PostgresPatientsRepository) ListRelationshipsForClinician(ctx context.Context, clinicianID string) ([]*domain.PatientClinician, error) {
	if clinicianID == "" {
		return nil, fmt.Errorf("clinician_id is required")
	}

	query := `
		SELECT id::text, patient_id::text, clinician_id::text, relationship_type, revoked_at, assigned_at, created_at
		FROM patient_clinicians
		WHERE clinician_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, clinicianID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clinician relationships: %w", err)
	}
	defer rows.Close()

	out := []*domain.PatientClinician{}
	for rows.Next() {
		var rel domain.PatientClinician
		var revokedAt sql.NullTime
		if err := rows.Scan(
			&rel.ID, &rel.PatientID, &rel.ClinicianID, &rel.RelationshipType,
			&revokedAt, &rel.AssignedAt, &rel.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan clinician relationship: %w", err)
		}
		rel.Revocation = domain.RevocationFromNullTime(revokedAt)
		out = append(out, &rel)
	}
	return out, rows.Err()
}

// ListPatientsByIDs 按患者 ID 集合取名册（带档案 JOIN）
func (r *PostgresPatientsRepository) ListPatientsByIDs(ctx context.Context, ids []string) ([]*domain.Patient, error) {
	// 空集合短路
	if len(ids) == 0 {
		return []*domain.Patient{}, nil
	}

	query := `
		SELECT
			p.id::text,
			p.profile_id::text,
			COALESCE(p.medical_record_number, '') as medical_record_number,
			COALESCE(p.primary_diagnosis, '') as primary_diagnosis,
			p.admission_date,
			p.discharge_date,
			p.status,
			p.created_at,
			p.updated_at,
			pr.first_name,
			pr.last_name,
			pr.email
		FROM patients p
		JOIN profiles pr ON pr.id = p.profile_id
		WHERE p.id = ANY($1)
		ORDER BY p.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	defer rows.Close()

	out := []*domain.Patient{}
	for rows.Next() {
		var p domain.Patient
		var admissionDate, dischargeDate sql.NullTime
		var firstName, lastName, email string
		if err := rows.Scan(
			&p.ID,
			&p.ProfileID,
			&p.MedicalRecordNumber,
			&p.PrimaryDiagnosis,
			&admissionDate,
			&dischargeDate,
			&p.Status,
			&p.CreatedAt,
			&p.UpdatedAt,
			&firstName,
			&lastName,
			&email,
		); err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		if admissionDate.Valid {
			p.AdmissionDate = &admissionDate.Time
		}
		if dischargeDate.Valid {
			p.DischargeDate = &dischargeDate.Time
		}
		p.Profile = &domain.Profile{
			ID:        p.ProfileID,
			FirstName: firstName,
			LastName:  lastName,
			Email:     email,
			Role:      domain.RolePatient,
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
