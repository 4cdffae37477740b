package document

import (
	"errors"
	"fmt"
	"time"

	documentDatamodel "github.com/avaldivia/document-routing/internal/core/datamodel/document"
)

type Document struct {
	ID                    int64     `json:"id"`
	DocCode               string    `json:"doc_code"`
	RegistrationNumber    int64     `json:"registration_number"`
	Name                  string    `json:"name"`
	Subject               string    `json:"subject"`
	PageCount             int       `json:"page_count"`
	FilePath              *string   `json:"file_path,omitempty"`
	CreatedByDepartmentID int64     `json:"created_by_department_id"`
	RegisteredByUserID    int64     `json:"registered_by_user_id"`
	IsDerived             bool      `json:"is_derived"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// DocCodePrefix and the code layout: "DOC" + ddMMyyyyHHmm timestamp + an
// 11-digit zero-padded global sequence.
const (
	DocCodePrefix       = "DOC"
	DocCodeTimestampFmt = "020120061504"
	DocCodeSeqDigits    = 11
)

// FormatDocCode builds a document code from a timestamp and sequence value.
func FormatDocCode(at time.Time, seq int64) string {
	return fmt.Sprintf("%s%s%0*d", DocCodePrefix, at.Format(DocCodeTimestampFmt), DocCodeSeqDigits, seq)
}

var (
	ErrDocumentNotFound   = errors.New("document not found")
	ErrNoDepartment       = errors.New("acting user has no department")
	ErrNotOwnerDepartment = errors.New("document belongs to another department")
	ErrDocumentReferenced = errors.New("document has derivations or ledger entries")
	ErrSequenceConflict   = errors.New("registration number conflict, retry the operation")
)

func FromDataModel(d *documentDatamodel.Document) *Document {
	return &Document{
		ID:                    d.ID,
		DocCode:               d.DocCode,
		RegistrationNumber:    d.RegistrationNumber,
		Name:                  d.Name,
		Subject:               d.Subject,
		PageCount:             d.PageCount,
		FilePath:              d.FilePath,
		CreatedByDepartmentID: d.CreatedByDepartmentID,
		RegisteredByUserID:    d.RegisteredByUserID,
		IsDerived:             d.IsDerived,
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             d.UpdatedAt,
	}
}

func ToDataModel(d *Document) *documentDatamodel.Document {
	return &documentDatamodel.Document{
		ID:                    d.ID,
		DocCode:               d.DocCode,
		RegistrationNumber:    d.RegistrationNumber,
		Name:                  d.Name,
		Subject:               d.Subject,
		PageCount:             d.PageCount,
		FilePath:              d.FilePath,
		CreatedByDepartmentID: d.CreatedByDepartmentID,
		RegisteredByUserID:    d.RegisteredByUserID,
		IsDerived:             d.IsDerived,
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             d.UpdatedAt,
	}
}

func FromDataModelSlice(documents []*documentDatamodel.Document) []*Document {
	result := make([]*Document, len(documents))
	for i, d := range documents {
		result[i] = FromDataModel(d)
	}
	return result
}
