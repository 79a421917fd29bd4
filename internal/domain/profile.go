package domain

import "time"

// Identity 认证主体（来自托管认证服务，对应 profiles.id）
type Identity struct {
	ID    string
	Email string
}

// Profile 用户档案领域模型（对应 profiles 表）
type Profile struct {
	// 主键（与认证服务的用户 ID 一致）
	ID string `db:"id"` // UUID, PRIMARY KEY

	// 基本信息
	Email     string `db:"email"`      // NOT NULL, UNIQUE
	FirstName string `db:"first_name"` // NOT NULL
	LastName  string `db:"last_name"`  // NOT NULL
	Phone     string `db:"phone"`      // nullable

	// 角色
	Role Role `db:"role"` // NOT NULL, CHECK IN (patient, caregiver, clinician, agency_admin, vendor)

	// 时间戳
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// FullName 姓名拼接（pc360Front 显示用）
func (p *Profile) FullName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
