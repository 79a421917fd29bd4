package repository

import (
	"context"

	"medihealth-portal/internal/domain"
)

// DocumentsRepository 文档 Repository 接口
type DocumentsRepository interface {
	// ListByPatients 患者集合的文档（created_at 降序）
	// patientIDs 为空时直接返回空结果，不发起查询：
	// 空 IN 过滤在部分后端会被解释为"无过滤"，正确语义是"匹配为空"
	ListByPatients(ctx context.Context, patientIDs []string) ([]*domain.Document, error)

	// CountByPatients 患者集合的文档数
	CountByPatients(ctx context.Context, patientIDs []string) (int, error)

	// CreateDocument 新建文档元数据记录，返回新 ID
	CreateDocument(ctx context.Context, doc *domain.Document) (string, error)
}
