package department

import (
	"errors"
	"time"

	departmentDatamodel "github.com/avaldivia/document-routing/internal/core/datamodel/department"
)

type Department struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	ErrDepartmentNotFound  = errors.New("department not found")
	ErrDepartmentNameTaken = errors.New("department name already in use")
	ErrDepartmentInUse     = errors.New("department is referenced by employees, documents or derivations")
)

func FromDataModel(d *departmentDatamodel.Department) *Department {
	return &Department{
		ID:        d.ID,
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func ToDataModel(d *Department) *departmentDatamodel.Department {
	return &departmentDatamodel.Department{
		ID:        d.ID,
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func FromDataModelSlice(departments []*departmentDatamodel.Department) []*Department {
	result := make([]*Department, len(departments))
	for i, d := range departments {
		result[i] = FromDataModel(d)
	}
	return result
}
