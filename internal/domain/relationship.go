package domain

import (
	"database/sql"
	"time"
)

// RevocationState 关联撤销状态（两态：Active / Revoked）
// DB 里是 nullable 的 revoked_at 时间戳；这里把 "null 即有效" 的约定
// 收敛为显式类型，避免调用方直接比较指针
type RevocationState struct {
	revokedAt time.Time
	revoked   bool
}

// ActiveState 有效状态
func ActiveState() RevocationState {
	return RevocationState{}
}

// RevokedState 已撤销状态（带撤销时间）
func RevokedState(at time.Time) RevocationState {
	return RevocationState{revokedAt: at, revoked: true}
}

// RevocationFromNullTime 从 DB 扫描结果构造撤销状态
func RevocationFromNullTime(t sql.NullTime) RevocationState {
	if t.Valid {
		return RevokedState(t.Time)
	}
	return ActiveState()
}

// Revoked 是否已撤销；已撤销的关联必须从所有可见性计算中排除
func (s RevocationState) Revoked() bool { return s.revoked }

// RevokedAt 撤销时间；仅在 Revoked() 为 true 时有意义
func (s RevocationState) RevokedAt() (time.Time, bool) {
	return s.revokedAt, s.revoked
}

// PatientCaregiver 患者-护理人员关联（对应 patient_caregivers 表）
type PatientCaregiver struct {
	ID          string          `db:"id"`           // UUID, PRIMARY KEY
	PatientID   string          `db:"patient_id"`   // UUID, NOT NULL
	CaregiverID string          `db:"caregiver_id"` // UUID, NOT NULL
	Revocation  RevocationState `db:"revoked_at"`   // TIMESTAMPTZ, nullable
	CreatedAt   time.Time       `db:"created_at"`
}

// PatientClinician 患者-临床人员关联（对应 patient_clinicians 表）
type PatientClinician struct {
	ID               string          `db:"id"`                // UUID, PRIMARY KEY
	PatientID        string          `db:"patient_id"`        // UUID, NOT NULL
	ClinicianID      string          `db:"clinician_id"`      // UUID, NOT NULL
	RelationshipType string          `db:"relationship_type"` // CHECK IN ('primary', 'assigned', 'consulting')
	Revocation       RevocationState `db:"revoked_at"`        // TIMESTAMPTZ, nullable
	AssignedAt       time.Time       `db:"assigned_at"`
	CreatedAt        time.Time       `db:"created_at"`
}
