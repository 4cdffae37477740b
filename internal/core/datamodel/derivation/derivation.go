package derivation

import "time"

type Derivation struct {
	ID                      int64     `gorm:"primaryKey"`
	DocumentID              int64     `gorm:"column:document_id;not null;index"`
	OriginDepartmentID      int64     `gorm:"column:origin_department_id;not null;index"`
	DestinationDepartmentID int64     `gorm:"column:destination_department_id;not null;index"`
	CreatedByUserID         int64     `gorm:"column:created_by_user_id;not null"`
	Status                  string    `gorm:"column:status;not null;default:Enviado"`
	CreatedAt               time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt               time.Time `gorm:"column:updated_at;default:now()"`

	Details []DerivationDetail `gorm:"foreignKey:DerivationID;constraint:OnDelete:CASCADE"`
}

func (Derivation) TableName() string {
	return "derivations"
}

// DerivationDetail is one immutable timeline event of a derivation. Rows are
// only ever appended, never updated.
type DerivationDetail struct {
	ID           int64     `gorm:"primaryKey"`
	DerivationID int64     `gorm:"column:derivation_id;not null;index"`
	Status       string    `gorm:"column:status;not null"`
	Comments     string    `gorm:"column:comments"`
	UserID       int64     `gorm:"column:user_id;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;default:now()"`
}

func (DerivationDetail) TableName() string {
	return "derivation_details"
}
