package employee

import (
	errors "github.com/avaldivia/document-routing/internal"
	"github.com/avaldivia/document-routing/internal/core/common/validation"
)

type CreateEmployeeDTO struct {
	DNI          string `json:"dni"`
	Names        string `json:"names"`
	Surnames     string `json:"surnames"`
	Gender       string `json:"gender"`
	Phone        string `json:"phone"`
	DepartmentID int64  `json:"department_id"`
}

func (dto CreateEmployeeDTO) Validate() error {
	if err := validation.ValidateDNI(dto.DNI); err != nil {
		return err
	}

	v := validation.NewValidator()
	v.Field("names", dto.Names).Required().MaxLength(100)
	v.Field("surnames", dto.Surnames).Required().MaxLength(100)
	v.Field("department_id", dto.DepartmentID).Required()
	if err := v.Validate(); err != nil {
		return err
	}

	if dto.Gender != "" && dto.Gender != "F" && dto.Gender != "M" {
		return errors.NewValidationFieldError("gender", "gender must be F or M", errors.ErrCodeValidationFailed)
	}

	return nil
}

type UpdateEmployeeDTO struct {
	Names        string `json:"names"`
	Surnames     string `json:"surnames"`
	Gender       string `json:"gender"`
	Phone        string `json:"phone"`
	DepartmentID int64  `json:"department_id"`
	IsActive     *bool  `json:"is_active,omitempty"`
}

func (dto UpdateEmployeeDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("names", dto.Names).Required().MaxLength(100)
	v.Field("surnames", dto.Surnames).Required().MaxLength(100)
	v.Field("department_id", dto.DepartmentID).Required()
	if err := v.Validate(); err != nil {
		return err
	}

	if dto.Gender != "" && dto.Gender != "F" && dto.Gender != "M" {
		return errors.NewValidationFieldError("gender", "gender must be F or M", errors.ErrCodeValidationFailed)
	}

	return nil
}
