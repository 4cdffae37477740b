package document

import "time"

type Document struct {
	ID                    int64     `gorm:"primaryKey"`
	DocCode               string    `gorm:"column:doc_code;uniqueIndex;not null"`
	RegistrationNumber    int64     `gorm:"column:registration_number;not null;uniqueIndex:idx_documents_regnum_dept"`
	Name                  string    `gorm:"column:name;not null"`
	Subject               string    `gorm:"column:subject"`
	PageCount             int       `gorm:"column:page_count;default:1"`
	FilePath              *string   `gorm:"column:file_path"`
	CreatedByDepartmentID int64     `gorm:"column:created_by_department_id;not null;uniqueIndex:idx_documents_regnum_dept"`
	RegisteredByUserID    int64     `gorm:"column:registered_by_user_id;not null"`
	IsDerived             bool      `gorm:"column:is_derived;default:false"`
	CreatedAt             time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt             time.Time `gorm:"column:updated_at;default:now()"`
}

func (Document) TableName() string {
	return "documents"
}
