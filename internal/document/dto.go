package document

import (
	errors "github.com/avaldivia/document-routing/internal"
	"github.com/avaldivia/document-routing/internal/core/common/validation"
)

type CreateDocumentDTO struct {
	Name      string `json:"name"`
	Subject   string `json:"subject"`
	PageCount int    `json:"page_count"`
}

func (dto CreateDocumentDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(150)
	v.Field("subject", dto.Subject).MaxLength(500)
	if err := v.Validate(); err != nil {
		return err
	}

	if dto.PageCount < 1 {
		return errors.NewValidationFieldError("page_count", "page count must be at least 1", errors.ErrCodeInvalidPageCount)
	}

	return nil
}

type UpdateDocumentDTO struct {
	Name      string `json:"name"`
	Subject   string `json:"subject"`
	PageCount int    `json:"page_count"`
}

func (dto UpdateDocumentDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(150)
	v.Field("subject", dto.Subject).MaxLength(500)
	if err := v.Validate(); err != nil {
		return err
	}

	if dto.PageCount < 1 {
		return errors.NewValidationFieldError("page_count", "page count must be at least 1", errors.ErrCodeInvalidPageCount)
	}

	return nil
}
