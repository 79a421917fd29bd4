package domain

import "fmt"

// Role 用户角色（封闭枚举）
// 对应 profiles.role 列，CHECK IN ('patient', 'caregiver', 'clinician', 'agency_admin', 'vendor')
// 所有按角色分支的代码必须穷举五个取值，禁止默认分支静默放行
type Role string

const (
	RolePatient     Role = "patient"
	RoleCaregiver   Role = "caregiver"
	RoleClinician   Role = "clinician"
	RoleAgencyAdmin Role = "agency_admin"
	RoleVendor      Role = "vendor"
)

// ParseRole 解析角色字符串，未知取值返回错误（不回退默认角色）
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RolePatient, RoleCaregiver, RoleClinician, RoleAgencyAdmin, RoleVendor:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role: %q", s)
}

func (r Role) String() string { return string(r) }

// HomePath 角色登录后的首页路径（对齐 pc360Front 路由）
func (r Role) HomePath() string {
	switch r {
	case RolePatient, RoleCaregiver:
		return "/dashboard"
	case RoleClinician:
		return "/dashboard/clinician"
	case RoleAgencyAdmin:
		return "/dashboard/admin"
	case RoleVendor:
		return "/vendor/dashboard"
	}
	return "/dashboard"
}
