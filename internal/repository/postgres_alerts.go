package repository

import (
	"context"
	"database/sql"
	"fmt"

	"medihealth-portal/internal/domain"

	"github.com/lib/pq"
)

// PostgresAlertsRepository 临床警报 Repository 实现
type PostgresAlertsRepository struct {
	db *sql.DB
}

// NewPostgresAlertsRepository 创建警报 Repository
func NewPostgresAlertsRepository(db *sql.DB) *PostgresAlertsRepository {
	return &PostgresAlertsRepository{db: db}
}

// 确保实现了接口
var _ AlertsRepository = (*PostgresAlertsRepository)(nil)

// ListByPatients 患者集合的警报（created_at 降序，患者姓名 JOIN）
func (r *PostgresAlertsRepository) ListByPatients(ctx context.Context, patientIDs []string) ([]*domain.Alert, error) {
	// 空集合短路
	if len(patientIDs) == 0 {
		return []*domain.Alert{}, nil
	}

	query := `
		SELECT
			a.id::text,
			a.patient_id::text,
			a.title,
			a.message,
			a.severity,
			a.status,
			COALESCE(a.acknowledged_by::text, '') as acknowledged_by,
			a.acknowledged_at,
			a.created_at,
			pr.first_name || ' ' || pr.last_name as patient_name
		FROM alerts a
		JOIN patients pa ON pa.id = a.patient_id
		JOIN profiles pr ON pr.id = pa.profile_id
		WHERE a.patient_id = ANY($1)
		ORDER BY a.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(patientIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	out := []*domain.Alert{}
	for rows.Next() {
		var a domain.Alert
		var ackAt sql.NullTime
		if err := rows.Scan(
			&a.ID,
			&a.PatientID,
			&a.Title,
			&a.Message,
			&a.Severity,
			&a.Status,
			&a.AcknowledgedBy,
			&ackAt,
			&a.CreatedAt,
			&a.PatientName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		if ackAt.Valid {
			a.AcknowledgedAt = &ackAt.Time
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// CountActiveByPatients 患者集合的未处理警报数
func (r *PostgresAlertsRepository) CountActiveByPatients(ctx context.Context, patientIDs []string) (int, error) {
	if len(patientIDs) == 0 {
		return 0, nil
	}

	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM alerts WHERE patient_id = ANY($1) AND status = 'active'`,
		pq.Array(patientIDs),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count alerts: %w", err)
	}
	return count, nil
}

// Acknowledge 临床人员确认警报
func (r *PostgresAlertsRepository) Acknowledge(ctx context.Context, alertID, clinicianID string) error {
	if alertID == "" || clinicianID == "" {
		return fmt.Errorf("alert_id and clinician_id are required")
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE alerts
		 SET status = 'acknowledged', acknowledged_by = $2, acknowledged_at = NOW()
		 WHERE id = $1 AND status = 'active'`,
		alertID, clinicianID,
	)
	if err != nil {
		return fmt.Errorf("failed to acknowledge alert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to acknowledge alert: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("alert not found or already handled: %w", sql.ErrNoRows)
	}
	return nil
}
