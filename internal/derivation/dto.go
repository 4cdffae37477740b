package derivation

import (
	errors "github.com/avaldivia/document-routing/internal"
	"github.com/avaldivia/document-routing/internal/core/common/validation"
)

type CreateDerivationDTO struct {
	DocumentID              int64  `json:"document_id"`
	DestinationDepartmentID int64  `json:"destination_department_id"`
	Comments                string `json:"comments"`
}

func (dto CreateDerivationDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("document_id", dto.DocumentID).Required()
	v.Field("destination_department_id", dto.DestinationDepartmentID).Required()
	v.Field("comments", dto.Comments).MaxLength(500)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// UpdateDerivationDTO edits a pending derivation. Document and origin are
// immutable; a nil destination leaves it unchanged, a non-empty comment is
// appended to the timeline.
type UpdateDerivationDTO struct {
	DestinationDepartmentID *int64 `json:"destination_department_id"`
	Comments                string `json:"comments"`
}

func (dto UpdateDerivationDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("comments", dto.Comments).MaxLength(500)
	if err := v.Validate(); err != nil {
		return err
	}

	if dto.DestinationDepartmentID == nil && dto.Comments == "" {
		return errors.NewValidationError("nothing to update", errors.ErrCodeValidationFailed)
	}
	return nil
}

type ReceiveDerivationDTO struct {
	Notes string `json:"notes"`
}

func (dto ReceiveDerivationDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("notes", dto.Notes).MaxLength(500)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type RejectDerivationDTO struct {
	Reason string `json:"reason"`
}

func (dto RejectDerivationDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("reason", dto.Reason).Required().MaxLength(500)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
