package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	userDatamodel "github.com/avaldivia/document-routing/internal/core/datamodel/user"
	"github.com/avaldivia/document-routing/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *user.User) error {
	dm := user.ToDataModel(u)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	*u = *user.FromDataModel(dm)
	return nil
}

func (r *UserRepository) GetByID(id int64) (*user.User, error) {
	var dm userDatamodel.User
	err := r.db.Where("id = ?", id).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&dm), nil
}

func (r *UserRepository) GetAll(limit, offset int) ([]*user.User, error) {
	var dms []*userDatamodel.User
	err := r.db.Order("username ASC").
		Limit(limit).
		Offset(offset).
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return user.FromDataModelSlice(dms), nil
}

func (r *UserRepository) ExistsByUsername(username string, excludeID int64) (bool, error) {
	return r.exists("username = ?", username, excludeID)
}

func (r *UserRepository) ExistsByEmail(email string, excludeID int64) (bool, error) {
	return r.exists("email = ?", email, excludeID)
}

func (r *UserRepository) exists(where string, value string, excludeID int64) (bool, error) {
	var count int64
	q := r.db.Model(&userDatamodel.User{}).Where(where, value)
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRepository) EmployeeLinked(employeeID int64, excludeUserID int64) (bool, error) {
	var count int64
	q := r.db.Model(&userDatamodel.User{}).Where("employee_id = ?", employeeID)
	if excludeUserID > 0 {
		q = q.Where("id <> ?", excludeUserID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRepository) Update(u *user.User) error {
	u.UpdatedAt = time.Now()
	return r.db.Model(&userDatamodel.User{}).
		Where("id = ?", u.ID).
		Updates(map[string]interface{}{
			"email":       u.Email,
			"role":        u.Role,
			"employee_id": u.EmployeeID,
			"is_active":   u.IsActive,
			"updated_at":  u.UpdatedAt,
		}).Error
}
