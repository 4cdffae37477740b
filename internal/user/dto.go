package user

import (
	"github.com/avaldivia/document-routing/internal/core/common/validation"
)

type CreateUserDTO struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	EmployeeID *int64 `json:"employee_id,omitempty"`
}

func (dto CreateUserDTO) Validate(emailDomain string) error {
	if err := validation.ValidateUsername(dto.Username); err != nil {
		return err
	}
	if err := validation.ValidateOrgEmail(dto.Email, emailDomain); err != nil {
		return err
	}

	v := validation.NewValidator()
	v.Field("password", dto.Password).Required().MinLength(8)
	if err := v.Validate(); err != nil {
		return err
	}

	return nil
}

type UpdateUserDTO struct {
	Email      string `json:"email"`
	Role       string `json:"role"`
	EmployeeID *int64 `json:"employee_id,omitempty"`
	IsActive   *bool  `json:"is_active,omitempty"`
}

func (dto UpdateUserDTO) Validate(emailDomain string) error {
	if err := validation.ValidateOrgEmail(dto.Email, emailDomain); err != nil {
		return err
	}
	return nil
}
