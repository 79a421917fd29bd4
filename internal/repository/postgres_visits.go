package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"medihealth-portal/internal/domain"

	"github.com/lib/pq"
)

// PostgresVisitsRepository 访视 Repository 实现
type PostgresVisitsRepository struct {
	db *sql.DB
}

// NewPostgresVisitsRepository 创建访视 Repository
func NewPostgresVisitsRepository(db *sql.DB) *PostgresVisitsRepository {
	return &PostgresVisitsRepository{db: db}
}

// 确保实现了接口
var _ VisitsRepository = (*PostgresVisitsRepository)(nil)

// visitSelect 带患者/临床人员姓名 JOIN 的公共查询头
const visitSelect = `
	SELECT
		v.id::text,
		v.patient_id::text,
		v.clinician_id::text,
		v.visit_type,
		v.status,
		v.scheduled_start,
		v.scheduled_end,
		v.actual_start,
		v.actual_end,
		COALESCE(v.visit_notes, '') as visit_notes,
		v.created_at,
		v.updated_at,
		pp.first_name || ' ' || pp.last_name as patient_name,
		cp.first_name || ' ' || cp.last_name as clinician_name
	FROM visits v
	JOIN patients pa ON pa.id = v.patient_id
	JOIN profiles pp ON pp.id = pa.profile_id
	JOIN clinicians cl ON cl.id = v.clinician_id
	JOIN profiles cp ON cp.id = cl.profile_id
`

// ListDistinctPatientIDsForClinician 历史访视覆盖的患者集合（去重）
func (r *PostgresVisitsRepository) ListDistinctPatientIDsForClinician(ctx context.Context, clinicianID string) ([]string, error) {
	if clinicianID == "" {
		return nil, fmt.Errorf("clinician_id is required")
	}

	query := `SELECT DISTINCT patient_id::text FROM visits WHERE clinician_id = $1`

	rows, err := r.db.QueryContext(ctx, query, clinicianID)
	if err != nil {
		return nil, fmt.Errorf("failed to list visit patients: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan patient id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// ListUpcomingByPatients 患者集合的未来访视
func (r *PostgresVisitsRepository) ListUpcomingByPatients(ctx context.Context, patientIDs []string, from time.Time, limit int) ([]*domain.Visit, error) {
	// 空集合短路
	if len(patientIDs) == 0 {
		return []*domain.Visit{}, nil
	}
	if limit <= 0 {
		limit = 5
	}

	query := visitSelect + `
		WHERE v.patient_id = ANY($1) AND v.scheduled_start >= $2
		ORDER BY v.scheduled_start ASC
		LIMIT $3
	`
	return r.queryVisits(ctx, query, pq.Array(patientIDs), from, limit)
}

// ListByPatients 患者集合的全部访视
func (r *PostgresVisitsRepository) ListByPatients(ctx context.Context, patientIDs []string) ([]*domain.Visit, error) {
	if len(patientIDs) == 0 {
		return []*domain.Visit{}, nil
	}

	query := visitSelect + `
		WHERE v.patient_id = ANY($1)
		ORDER BY v.scheduled_start ASC
	`
	return r.queryVisits(ctx, query, pq.Array(patientIDs))
}

// ListByClinician 临床人员名下的访视
func (r *PostgresVisitsRepository) ListByClinician(ctx context.Context, clinicianID string) ([]*domain.Visit, error) {
	if clinicianID == "" {
		return nil, fmt.Errorf("clinician_id is required")
	}

	query := visitSelect + `
		WHERE v.clinician_id = $1
		ORDER BY v.scheduled_start ASC
	`
	return r.queryVisits(ctx, query, clinicianID)
}

// ListByClinicianBetween 临床人员某时间窗内的访视
func (r *PostgresVisitsRepository) ListByClinicianBetween(ctx context.Context, clinicianID string, from, to time.Time) ([]*domain.Visit, error) {
	if clinicianID == "" {
		return nil, fmt.Errorf("clinician_id is required")
	}

	query := visitSelect + `
		WHERE v.clinician_id = $1 AND v.scheduled_start >= $2 AND v.scheduled_start < $3
		ORDER BY v.scheduled_start ASC
	`
	return r.queryVisits(ctx, query, clinicianID, from, to)
}

// CountUpcomingByClinician 临床人员未来访视数
func (r *PostgresVisitsRepository) CountUpcomingByClinician(ctx context.Context, clinicianID string, from time.Time) (int, error) {
	if clinicianID == "" {
		return 0, fmt.Errorf("clinician_id is required")
	}

	query := `
		SELECT COUNT(*)
		FROM visits
		WHERE clinician_id = $1 AND scheduled_start >= $2 AND status IN ('scheduled', 'en_route')
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, clinicianID, from).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count visits: %w", err)
	}
	return count, nil
}

// ListBetween 机构全量访视（管理端导出）
func (r *PostgresVisitsRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*domain.Visit, error) {
	query := visitSelect + `
		WHERE v.scheduled_start >= $1 AND v.scheduled_start < $2
		ORDER BY v.scheduled_start ASC
	`
	return r.queryVisits(ctx, query, from, to)
}

func (r *PostgresVisitsRepository) queryVisits(ctx context.Context, query string, args ...any) ([]*domain.Visit, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	defer rows.Close()

	out := []*domain.Visit{}
	for rows.Next() {
		var v domain.Visit
		var actualStart, actualEnd sql.NullTime
		if err := rows.Scan(
			&v.ID,
			&v.PatientID,
			&v.ClinicianID,
			&v.VisitType,
			&v.Status,
			&v.ScheduledStart,
			&v.ScheduledEnd,
			&actualStart,
			&actualEnd,
			&v.VisitNotes,
			&v.CreatedAt,
			&v.UpdatedAt,
			&v.PatientName,
			&v.ClinicianName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		if actualStart.Valid {
			v.ActualStart = &actualStart.Time
		}
		if actualEnd.Valid {
			v.ActualEnd = &actualEnd.Time
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}
