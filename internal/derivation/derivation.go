package derivation

import (
	"errors"
	"time"

	derivationDatamodel "github.com/avaldivia/document-routing/internal/core/datamodel/derivation"
)

// Derivation statuses. The stored status column always mirrors the latest
// timeline detail, except that Modificado details never change it.
const (
	StatusSent     = "Enviado"
	StatusReceived = "Recibido"
	StatusRejected = "Rechazado"
	StatusModified = "Modificado"
)

// DeleteWindow bounds how long after creation a derivation may be withdrawn.
const DeleteWindow = 2 * time.Hour

type Derivation struct {
	ID                      int64     `json:"id"`
	DocumentID              int64     `json:"document_id"`
	OriginDepartmentID      int64     `json:"origin_department_id"`
	DestinationDepartmentID int64     `json:"destination_department_id"`
	CreatedByUserID         int64     `json:"created_by_user_id"`
	Status                  string    `json:"status"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`

	Details []Detail `json:"details,omitempty"`
}

// Detail is one append-only timeline event of a derivation.
type Detail struct {
	ID           int64     `json:"id"`
	DerivationID int64     `json:"derivation_id"`
	Status       string    `json:"status"`
	Comments     string    `json:"comments,omitempty"`
	UserID       int64     `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsTerminal reports whether the derivation can no longer be received,
// rejected, or edited.
func (d *Derivation) IsTerminal() bool {
	return d.Status == StatusReceived || d.Status == StatusRejected
}

var (
	ErrDerivationNotFound  = errors.New("derivation not found")
	ErrNoDepartment        = errors.New("acting user has no department")
	ErrNotCustodian        = errors.New("actor's department does not hold the document")
	ErrNotOriginDepartment = errors.New("derivation originates from another department")
	ErrNotDestination      = errors.New("derivation targets another department")
	ErrSameDepartment      = errors.New("origin and destination departments must differ")
	ErrAlreadyResolved     = errors.New("derivation has already been received or rejected")
	ErrAlreadyInChargeBook = errors.New("department already holds a charge book entry for this document")
	ErrDeleteWindowClosed  = errors.New("derivation can no longer be deleted")
	ErrEntryNumberConflict = errors.New("charge book numbering conflict, retry the operation")
)

func FromDataModel(d *derivationDatamodel.Derivation) *Derivation {
	result := &Derivation{
		ID:                      d.ID,
		DocumentID:              d.DocumentID,
		OriginDepartmentID:      d.OriginDepartmentID,
		DestinationDepartmentID: d.DestinationDepartmentID,
		CreatedByUserID:         d.CreatedByUserID,
		Status:                  d.Status,
		CreatedAt:               d.CreatedAt,
		UpdatedAt:               d.UpdatedAt,
	}
	for i := range d.Details {
		result.Details = append(result.Details, *DetailFromDataModel(&d.Details[i]))
	}
	return result
}

func ToDataModel(d *Derivation) *derivationDatamodel.Derivation {
	return &derivationDatamodel.Derivation{
		ID:                      d.ID,
		DocumentID:              d.DocumentID,
		OriginDepartmentID:      d.OriginDepartmentID,
		DestinationDepartmentID: d.DestinationDepartmentID,
		CreatedByUserID:         d.CreatedByUserID,
		Status:                  d.Status,
		CreatedAt:               d.CreatedAt,
		UpdatedAt:               d.UpdatedAt,
	}
}

func DetailFromDataModel(d *derivationDatamodel.DerivationDetail) *Detail {
	return &Detail{
		ID:           d.ID,
		DerivationID: d.DerivationID,
		Status:       d.Status,
		Comments:     d.Comments,
		UserID:       d.UserID,
		CreatedAt:    d.CreatedAt,
	}
}

func DetailToDataModel(d *Detail) *derivationDatamodel.DerivationDetail {
	return &derivationDatamodel.DerivationDetail{
		ID:           d.ID,
		DerivationID: d.DerivationID,
		Status:       d.Status,
		Comments:     d.Comments,
		UserID:       d.UserID,
		CreatedAt:    d.CreatedAt,
	}
}

func FromDataModelSlice(derivations []*derivationDatamodel.Derivation) []*Derivation {
	result := make([]*Derivation, len(derivations))
	for i, d := range derivations {
		result[i] = FromDataModel(d)
	}
	return result
}
