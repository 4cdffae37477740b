package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	employeeDatamodel "github.com/avaldivia/document-routing/internal/core/datamodel/employee"
	userDatamodel "github.com/avaldivia/document-routing/internal/core/datamodel/user"
	"github.com/avaldivia/document-routing/internal/employee"
)

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) employee.Repository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) Create(emp *employee.Employee) error {
	dm := employee.ToDataModel(emp)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	*emp = *employee.FromDataModel(dm)
	return nil
}

func (r *EmployeeRepository) GetByID(id int64) (*employee.Employee, error) {
	var dm employeeDatamodel.Employee
	err := r.db.Where("id = ?", id).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}
	return employee.FromDataModel(&dm), nil
}

func (r *EmployeeRepository) GetByDepartment(departmentID int64, limit, offset int) ([]*employee.Employee, error) {
	var dms []*employeeDatamodel.Employee
	err := r.db.Where("department_id = ?", departmentID).
		Order("surnames ASC").
		Limit(limit).
		Offset(offset).
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return employee.FromDataModelSlice(dms), nil
}

func (r *EmployeeRepository) GetAll(limit, offset int) ([]*employee.Employee, error) {
	var dms []*employeeDatamodel.Employee
	err := r.db.Order("surnames ASC").
		Limit(limit).
		Offset(offset).
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return employee.FromDataModelSlice(dms), nil
}

func (r *EmployeeRepository) ExistsByDNI(dni string, excludeID int64) (bool, error) {
	var count int64
	q := r.db.Model(&employeeDatamodel.Employee{}).Where("dni = ?", dni)
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *EmployeeRepository) Update(emp *employee.Employee) error {
	emp.UpdatedAt = time.Now()
	return r.db.Model(&employeeDatamodel.Employee{}).
		Where("id = ?", emp.ID).
		Updates(map[string]interface{}{
			"names":         emp.Names,
			"surnames":      emp.Surnames,
			"gender":        emp.Gender,
			"phone":         emp.Phone,
			"department_id": emp.DepartmentID,
			"is_active":     emp.IsActive,
			"updated_at":    emp.UpdatedAt,
		}).Error
}

func (r *EmployeeRepository) Delete(id int64) error {
	return r.db.Delete(&employeeDatamodel.Employee{}, id).Error
}

func (r *EmployeeRepository) HasLinkedUser(id int64) (bool, error) {
	var count int64
	err := r.db.Model(&userDatamodel.User{}).
		Where("employee_id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
