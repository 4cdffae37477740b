package chargebook

import (
	"errors"
	"time"

	chargebookDatamodel "github.com/avaldivia/document-routing/internal/core/datamodel/chargebook"
)

// Entry is one receipt in a department's charge book: proof that the
// department took custody of a document, numbered per department.
type Entry struct {
	ID                 int64     `json:"id"`
	DocumentID         int64     `json:"document_id"`
	SenderDepartmentID int64     `json:"sender_department_id"`
	SenderUserID       int64     `json:"sender_user_id"`
	ReceiverUserID     int64     `json:"receiver_user_id"`
	DepartmentID       int64     `json:"department_id"`
	RegistrationNumber int64     `json:"registration_number"`
	Notes              string    `json:"notes,omitempty"`
	CreatedAt          time.Time `json:"created_at"`

	// Populated on listing from the joined document and sender department.
	DocCode              string `json:"doc_code,omitempty"`
	DocumentName         string `json:"document_name,omitempty"`
	SenderDepartmentName string `json:"sender_department_name,omitempty"`
}

// DeleteWindow bounds how long after receipt an entry may still be removed
// directly. Rejection-driven removal ignores the window.
const DeleteWindow = 24 * time.Hour

var (
	ErrEntryNotFound      = errors.New("charge book entry not found")
	ErrNotOwnerDepartment = errors.New("entry belongs to another department")
	ErrDeleteWindowClosed = errors.New("entry can no longer be deleted")
)

func FromDataModel(e *chargebookDatamodel.ChargeBook) *Entry {
	return &Entry{
		ID:                 e.ID,
		DocumentID:         e.DocumentID,
		SenderDepartmentID: e.SenderDepartmentID,
		SenderUserID:       e.SenderUserID,
		ReceiverUserID:     e.ReceiverUserID,
		DepartmentID:       e.DepartmentID,
		RegistrationNumber: e.RegistrationNumber,
		Notes:              e.Notes,
		CreatedAt:          e.CreatedAt,
	}
}

func ToDataModel(e *Entry) *chargebookDatamodel.ChargeBook {
	return &chargebookDatamodel.ChargeBook{
		ID:                 e.ID,
		DocumentID:         e.DocumentID,
		SenderDepartmentID: e.SenderDepartmentID,
		SenderUserID:       e.SenderUserID,
		ReceiverUserID:     e.ReceiverUserID,
		DepartmentID:       e.DepartmentID,
		RegistrationNumber: e.RegistrationNumber,
		Notes:              e.Notes,
		CreatedAt:          e.CreatedAt,
	}
}
