package department

import (
	"github.com/avaldivia/document-routing/internal/core/common/validation"
)

type CreateDepartmentDTO struct {
	Name string `json:"name"`
}

func (dto CreateDepartmentDTO) Validate() error {
	if err := validation.ValidateDepartmentName(dto.Name); err != nil {
		return err
	}
	return nil
}

type UpdateDepartmentDTO struct {
	Name string `json:"name"`
}

func (dto UpdateDepartmentDTO) Validate() error {
	if err := validation.ValidateDepartmentName(dto.Name); err != nil {
		return err
	}
	return nil
}
