package employee

import (
	"log/slog"

	"github.com/avaldivia/document-routing/internal/department"
)

type Repository interface {
	Create(emp *Employee) error
	GetByID(id int64) (*Employee, error)
	GetByDepartment(departmentID int64, limit, offset int) ([]*Employee, error)
	GetAll(limit, offset int) ([]*Employee, error)
	ExistsByDNI(dni string, excludeID int64) (bool, error)
	Update(emp *Employee) error
	Delete(id int64) error
	HasLinkedUser(id int64) (bool, error)
}

// DepartmentChecker verifies a department exists before assigning employees to it.
type DepartmentChecker interface {
	GetDepartmentByID(id int64) (*department.Department, error)
}

type Service struct {
	repo        Repository
	departments DepartmentChecker
	logger      *slog.Logger
}

func NewService(repo Repository, departments DepartmentChecker, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		departments: departments,
		logger:      logger,
	}
}

func (s *Service) CreateEmployee(dto CreateEmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("employee validation failed", "error", err)
		return nil, err
	}

	if _, err := s.departments.GetDepartmentByID(dto.DepartmentID); err != nil {
		return nil, department.ErrDepartmentNotFound
	}

	taken, err := s.repo.ExistsByDNI(dto.DNI, 0)
	if err != nil {
		s.logger.Error("failed to check dni", "error", err)
		return nil, err
	}
	if taken {
		return nil, ErrDNITaken
	}

	emp := &Employee{
		DNI:          dto.DNI,
		Names:        dto.Names,
		Surnames:     dto.Surnames,
		Gender:       dto.Gender,
		Phone:        dto.Phone,
		IsActive:     true,
		DepartmentID: dto.DepartmentID,
	}

	if err := s.repo.Create(emp); err != nil {
		s.logger.Error("failed to create employee", "error", err, "dni", dto.DNI)
		return nil, err
	}

	s.logger.Info("employee created", "employee_id", emp.ID, "department_id", emp.DepartmentID)
	return emp, nil
}

func (s *Service) GetEmployeeByID(id int64) (*Employee, error) {
	emp, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrEmployeeNotFound
	}
	return emp, nil
}

func (s *Service) GetEmployees(departmentID int64, limit, offset int) ([]*Employee, error) {
	if departmentID > 0 {
		return s.repo.GetByDepartment(departmentID, limit, offset)
	}
	return s.repo.GetAll(limit, offset)
}

func (s *Service) UpdateEmployee(id int64, dto UpdateEmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("employee validation failed", "error", err, "employee_id", id)
		return nil, err
	}

	emp, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrEmployeeNotFound
	}

	if dto.DepartmentID != emp.DepartmentID {
		if _, err := s.departments.GetDepartmentByID(dto.DepartmentID); err != nil {
			return nil, department.ErrDepartmentNotFound
		}
	}

	emp.Names = dto.Names
	emp.Surnames = dto.Surnames
	emp.Gender = dto.Gender
	emp.Phone = dto.Phone
	emp.DepartmentID = dto.DepartmentID
	if dto.IsActive != nil {
		emp.IsActive = *dto.IsActive
	}

	if err := s.repo.Update(emp); err != nil {
		s.logger.Error("failed to update employee", "error", err, "employee_id", id)
		return nil, err
	}

	s.logger.Info("employee updated", "employee_id", id)
	return emp, nil
}

// DeleteEmployee removes an employee unless a user account links to them.
func (s *Service) DeleteEmployee(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return ErrEmployeeNotFound
	}

	linked, err := s.repo.HasLinkedUser(id)
	if err != nil {
		s.logger.Error("failed to check linked user", "error", err, "employee_id", id)
		return err
	}
	if linked {
		s.logger.Warn("delete blocked: employee linked to user", "employee_id", id)
		return ErrEmployeeLinked
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete employee", "error", err, "employee_id", id)
		return err
	}

	s.logger.Info("employee deleted", "employee_id", id)
	return nil
}
