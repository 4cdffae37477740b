package chargebook

import "time"

type ChargeBook struct {
	ID                 int64     `gorm:"primaryKey"`
	DocumentID         int64     `gorm:"column:document_id;not null;uniqueIndex:idx_charge_books_doc_dept"`
	SenderDepartmentID int64     `gorm:"column:sender_department_id;not null"`
	SenderUserID       int64     `gorm:"column:sender_user_id;not null"`
	ReceiverUserID     int64     `gorm:"column:receiver_user_id;not null"`
	DepartmentID       int64     `gorm:"column:department_id;not null;uniqueIndex:idx_charge_books_doc_dept;uniqueIndex:idx_charge_books_regnum_dept"`
	RegistrationNumber int64     `gorm:"column:registration_number;not null;uniqueIndex:idx_charge_books_regnum_dept"`
	Notes              string    `gorm:"column:notes"`
	CreatedAt          time.Time `gorm:"column:created_at;default:now()"`
}

func (ChargeBook) TableName() string {
	return "charge_books"
}
