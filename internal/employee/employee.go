package employee

import (
	"errors"
	"time"

	employeeDatamodel "github.com/avaldivia/document-routing/internal/core/datamodel/employee"
)

type Employee struct {
	ID           int64     `json:"id"`
	DNI          string    `json:"dni"`
	Names        string    `json:"names"`
	Surnames     string    `json:"surnames"`
	Gender       string    `json:"gender"`
	Phone        string    `json:"phone"`
	IsActive     bool      `json:"is_active"`
	DepartmentID int64     `json:"department_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrDNITaken         = errors.New("dni already registered")
	ErrEmployeeLinked   = errors.New("employee is linked to a user account")
)

func FromDataModel(e *employeeDatamodel.Employee) *Employee {
	return &Employee{
		ID:           e.ID,
		DNI:          e.DNI,
		Names:        e.Names,
		Surnames:     e.Surnames,
		Gender:       e.Gender,
		Phone:        e.Phone,
		IsActive:     e.IsActive,
		DepartmentID: e.DepartmentID,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func ToDataModel(e *Employee) *employeeDatamodel.Employee {
	return &employeeDatamodel.Employee{
		ID:           e.ID,
		DNI:          e.DNI,
		Names:        e.Names,
		Surnames:     e.Surnames,
		Gender:       e.Gender,
		Phone:        e.Phone,
		IsActive:     e.IsActive,
		DepartmentID: e.DepartmentID,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func FromDataModelSlice(employees []*employeeDatamodel.Employee) []*Employee {
	result := make([]*Employee, len(employees))
	for i, e := range employees {
		result[i] = FromDataModel(e)
	}
	return result
}
