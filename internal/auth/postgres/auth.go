package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/avaldivia/document-routing/internal/auth"
	userDatamodel "github.com/avaldivia/document-routing/internal/core/datamodel/user"
)

// AuthRepository resolves login credentials and the user -> employee ->
// department chain used to build the request actor.
type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) auth.RepositoryAPI {
	return &AuthRepository{db: db}
}

func (r *AuthRepository) GetCredentials(username string) (string, int64, bool, error) {
	var u userDatamodel.User
	err := r.db.Where("username = ?", username).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", 0, false, auth.ErrUserNotFound
		}
		return "", 0, false, err
	}
	return u.PasswordHash, u.ID, u.IsActive, nil
}

type userWithDepartment struct {
	ID             int64
	Username       string
	Email          string
	Role           string
	IsActive       bool
	EmployeeID     *int64
	DepartmentID   *int64
	DepartmentName *string
}

func (r *AuthRepository) GetUserWithDepartment(userID int64) (*auth.User, error) {
	var row userWithDepartment
	err := r.db.Table("users").
		Select(`users.id, users.username, users.email, users.role, users.is_active,
			users.employee_id, employees.department_id AS department_id, departments.name AS department_name`).
		Joins("LEFT JOIN employees ON employees.id = users.employee_id").
		Joins("LEFT JOIN departments ON departments.id = employees.department_id").
		Where("users.id = ?", userID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}

	u := &auth.User{
		ID:           row.ID,
		Username:     row.Username,
		Email:        row.Email,
		Role:         row.Role,
		IsActive:     row.IsActive,
		EmployeeID:   row.EmployeeID,
		DepartmentID: row.DepartmentID,
	}
	if row.DepartmentName != nil {
		u.DepartmentName = *row.DepartmentName
	}
	return u, nil
}
