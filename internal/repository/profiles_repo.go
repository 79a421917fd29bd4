package repository

import (
	"context"

	"medihealth-portal/internal/domain"
)

// ProfilesRepository 用户档案 Repository 接口
// 使用强类型领域模型，不使用 map[string]any
type ProfilesRepository interface {
	// GetProfile 按认证主体 ID 获取档案；不存在返回包装后的 sql.ErrNoRows
	GetProfile(ctx context.Context, profileID string) (*domain.Profile, error)
}
