package repository

import (
	"context"
	"database/sql"
	"fmt"

	"medihealth-portal/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresDocumentsRepository 文档 Repository 实现
type PostgresDocumentsRepository struct {
	db *sql.DB
}

// NewPostgresDocumentsRepository 创建文档 Repository
func NewPostgresDocumentsRepository(db *sql.DB) *PostgresDocumentsRepository {
	return &PostgresDocumentsRepository{db: db}
}

// 确保实现了接口
var _ DocumentsRepository = (*PostgresDocumentsRepository)(nil)

// ListByPatients 患者集合的文档（created_at 降序，上传者姓名 JOIN）
func (r *PostgresDocumentsRepository) ListByPatients(ctx context.Context, patientIDs []string) ([]*domain.Document, error) {
	// 空集合短路
	if len(patientIDs) == 0 {
		return []*domain.Document{}, nil
	}

	query := `
		SELECT
			d.id::text,
			d.patient_id::text,
			d.uploaded_by::text,
			d.title,
			d.document_type,
			COALESCE(d.file_url, '') as file_url,
			COALESCE(d.file_size, 0) as file_size,
			d.created_at,
			pr.first_name || ' ' || pr.last_name as uploader_name,
			pr.role as uploader_role
		FROM documents d
		JOIN profiles pr ON pr.id = d.uploaded_by
		WHERE d.patient_id = ANY($1)
		ORDER BY d.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(patientIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	out := []*domain.Document{}
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(
			&d.ID,
			&d.PatientID,
			&d.UploadedBy,
			&d.Title,
			&d.DocumentType,
			&d.FileURL,
			&d.FileSize,
			&d.CreatedAt,
			&d.UploaderName,
			&d.UploaderRole,
		); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

// CountByPatients 患者集合的文档数
func (r *PostgresDocumentsRepository) CountByPatients(ctx context.Context, patientIDs []string) (int, error) {
	if len(patientIDs) == 0 {
		return 0, nil
	}

	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE patient_id = ANY($1)`,
		pq.Array(patientIDs),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

// CreateDocument 新建文档元数据记录
func (r *PostgresDocumentsRepository) CreateDocument(ctx context.Context, doc *domain.Document) (string, error) {
	if doc.PatientID == "" || doc.UploadedBy == "" {
		return "", fmt.Errorf("patient_id and uploaded_by are required")
	}
	if doc.Title == "" {
		return "", fmt.Errorf("title is required")
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	query := `
		INSERT INTO documents (id, patient_id, uploaded_by, title, document_type, file_url, file_size)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, 0))
		RETURNING id::text
	`

	var id string
	err := r.db.QueryRowContext(ctx, query,
		doc.ID, doc.PatientID, doc.UploadedBy, doc.Title, doc.DocumentType, doc.FileURL, doc.FileSize,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create document: %w", err)
	}
	return id, nil
}
