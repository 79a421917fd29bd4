package domain

import "time"

// Patient 患者领域模型（对应 patients 表）
// profile_id 指向 profiles 表，一个 profile 至多对应一个患者记录
type Patient struct {
	// 主键
	ID string `db:"id"` // UUID, PRIMARY KEY

	// 档案关联
	ProfileID string `db:"profile_id"` // UUID, NOT NULL, UNIQUE

	// 医疗信息
	MedicalRecordNumber string `db:"medical_record_number"` // nullable
	PrimaryDiagnosis    string `db:"primary_diagnosis"`     // nullable

	// 入出院
	AdmissionDate *time.Time `db:"admission_date"` // nullable
	DischargeDate *time.Time `db:"discharge_date"` // nullable

	// 状态
	Status string `db:"status"` // CHECK IN ('active', 'discharged', 'inactive')

	// 时间戳
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	// 关联档案（JOIN 查询时填充，不在 patients 表中）
	Profile *Profile `db:"-"`
}

// Caregiver 护理人员领域模型（对应 caregivers 表）
type Caregiver struct {
	ID        string    `db:"id"`         // UUID, PRIMARY KEY
	ProfileID string    `db:"profile_id"` // UUID, NOT NULL, UNIQUE
	Relation  string    `db:"relation"`   // nullable: 与患者的关系（family, friend, professional）
	CreatedAt time.Time `db:"created_at"`
}

// Clinician 临床人员领域模型（对应 clinicians 表）
type Clinician struct {
	ID         string    `db:"id"`          // UUID, PRIMARY KEY
	ProfileID  string    `db:"profile_id"`  // UUID, NOT NULL, UNIQUE
	Discipline string    `db:"discipline"`  // nullable: nursing / physical_therapy / ...
	LicenseNo  string    `db:"license_no"`  // nullable
	AgencyName string    `db:"agency_name"` // nullable
	CreatedAt  time.Time `db:"created_at"`
}
