package repository

import (
	"context"
	"database/sql"
	"fmt"

	"medihealth-portal/internal/domain"
)

// PostgresProfilesRepository 用户档案 Repository 实现
type PostgresProfilesRepository struct {
	db *sql.DB
}

// NewPostgresProfilesRepository 创建档案 Repository
func NewPostgresProfilesRepository(db *sql.DB) *PostgresProfilesRepository {
	return &PostgresProfilesRepository{db: db}
}

// 确保实现了接口
var _ ProfilesRepository = (*PostgresProfilesRepository)(nil)

const profileColumns = `
	id::text,
	email,
	first_name,
	last_name,
	COALESCE(phone, '') as phone,
	role,
	created_at,
	updated_at
`

// GetProfile 按认证主体 ID 获取档案
func (r *PostgresProfilesRepository) GetProfile(ctx context.Context, profileID string) (*domain.Profile, error) {
	if profileID == "" {
		return nil, fmt.Errorf("profile_id is required")
	}

	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	p, err := scanProfile(r.db.QueryRowContext(ctx, query, profileID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("profile not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*domain.Profile, error) {
	var p domain.Profile
	var role string
	if err := row.Scan(
		&p.ID,
		&p.Email,
		&p.FirstName,
		&p.LastName,
		&p.Phone,
		&role,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	parsed, err := domain.ParseRole(role)
	if err != nil {
		// 档案里出现未知角色视为数据错误，向上抛出而不是回退默认角色
		return nil, err
	}
	p.Role = parsed
	return &p, nil
}
