package domain

import "time"

// Document 文档领域模型（对应 documents 表）
// 每个文档归属唯一患者，可见性由患者集合推导
type Document struct {
	// 主键
	ID string `db:"id"` // UUID, PRIMARY KEY

	// 归属
	PatientID  string `db:"patient_id"`  // UUID, NOT NULL
	UploadedBy string `db:"uploaded_by"` // UUID, NOT NULL, REFERENCES profiles(id)

	// 文档信息
	Title        string `db:"title"`         // NOT NULL
	DocumentType string `db:"document_type"` // CHECK IN ('discharge_summary', 'insurance_card', 'order', 'consent_form', 'lab_result', 'other')
	FileURL      string `db:"file_url"`      // nullable: 外部对象存储地址
	FileSize     int64  `db:"file_size"`     // nullable

	// 时间戳
	CreatedAt time.Time `db:"created_at"`

	// JOIN 填充（上传者姓名与角色）
	UploaderName string `db:"-"`
	UploaderRole string `db:"-"`
}
