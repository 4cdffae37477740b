package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/avaldivia/document-routing/internal/department"
	departmentDatamodel "github.com/avaldivia/document-routing/internal/core/datamodel/department"
)

// DepartmentRepository implements department.Repository using GORM
type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) department.Repository {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) Create(dept *department.Department) error {
	dm := department.ToDataModel(dept)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	*dept = *department.FromDataModel(dm)
	return nil
}

func (r *DepartmentRepository) GetByID(id int64) (*department.Department, error) {
	var dm departmentDatamodel.Department
	err := r.db.Where("id = ?", id).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, department.ErrDepartmentNotFound
		}
		return nil, err
	}
	return department.FromDataModel(&dm), nil
}

func (r *DepartmentRepository) GetAll(limit, offset int) ([]*department.Department, error) {
	var dms []*departmentDatamodel.Department
	err := r.db.Order("name ASC").
		Limit(limit).
		Offset(offset).
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return department.FromDataModelSlice(dms), nil
}

func (r *DepartmentRepository) ExistsByName(name string, excludeID int64) (bool, error) {
	var count int64
	q := r.db.Model(&departmentDatamodel.Department{}).Where("name = ?", name)
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *DepartmentRepository) Update(dept *department.Department) error {
	dept.UpdatedAt = time.Now()
	return r.db.Model(&departmentDatamodel.Department{}).
		Where("id = ?", dept.ID).
		Updates(map[string]interface{}{
			"name":       dept.Name,
			"updated_at": dept.UpdatedAt,
		}).Error
}

func (r *DepartmentRepository) Delete(id int64) error {
	return r.db.Delete(&departmentDatamodel.Department{}, id).Error
}

// IsReferenced reports whether any employee, document, derivation or ledger
// entry still points at the department.
func (r *DepartmentRepository) IsReferenced(id int64) (bool, error) {
	checks := []struct {
		table string
		where string
	}{
		{"employees", "department_id = ?"},
		{"documents", "created_by_department_id = ?"},
		{"derivations", "origin_department_id = ? OR destination_department_id = ?"},
		{"charge_books", "department_id = ? OR sender_department_id = ?"},
	}

	for _, c := range checks {
		var count int64
		q := r.db.Table(c.table)
		if c.table == "derivations" || c.table == "charge_books" {
			q = q.Where(c.where, id, id)
		} else {
			q = q.Where(c.where, id)
		}
		if err := q.Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			return true, nil
		}
	}

	return false, nil
}
