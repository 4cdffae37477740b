package department

import (
	"log/slog"
)

// Repository defines the data access methods for departments
type Repository interface {
	Create(dept *Department) error
	GetByID(id int64) (*Department, error)
	GetAll(limit, offset int) ([]*Department, error)
	ExistsByName(name string, excludeID int64) (bool, error)
	Update(dept *Department) error
	Delete(id int64) error
	IsReferenced(id int64) (bool, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) CreateDepartment(dto CreateDepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("department validation failed", "error", err)
		return nil, err
	}

	taken, err := s.repo.ExistsByName(dto.Name, 0)
	if err != nil {
		s.logger.Error("failed to check department name", "error", err)
		return nil, err
	}
	if taken {
		return nil, ErrDepartmentNameTaken
	}

	dept := &Department{Name: dto.Name}
	if err := s.repo.Create(dept); err != nil {
		s.logger.Error("failed to create department", "error", err, "name", dto.Name)
		return nil, err
	}

	s.logger.Info("department created", "department_id", dept.ID, "name", dept.Name)
	return dept, nil
}

func (s *Service) GetDepartmentByID(id int64) (*Department, error) {
	dept, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get department", "error", err, "department_id", id)
		return nil, ErrDepartmentNotFound
	}
	return dept, nil
}

func (s *Service) GetDepartments(limit, offset int) ([]*Department, error) {
	departments, err := s.repo.GetAll(limit, offset)
	if err != nil {
		s.logger.Error("failed to list departments", "error", err)
		return nil, err
	}
	return departments, nil
}

func (s *Service) UpdateDepartment(id int64, dto UpdateDepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("department validation failed", "error", err, "department_id", id)
		return nil, err
	}

	dept, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrDepartmentNotFound
	}

	taken, err := s.repo.ExistsByName(dto.Name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDepartmentNameTaken
	}

	dept.Name = dto.Name
	if err := s.repo.Update(dept); err != nil {
		s.logger.Error("failed to update department", "error", err, "department_id", id)
		return nil, err
	}

	s.logger.Info("department updated", "department_id", id, "name", dept.Name)
	return dept, nil
}

// DeleteDepartment removes a department unless employees, documents,
// derivations or ledger entries still reference it.
func (s *Service) DeleteDepartment(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return ErrDepartmentNotFound
	}

	referenced, err := s.repo.IsReferenced(id)
	if err != nil {
		s.logger.Error("failed to check department references", "error", err, "department_id", id)
		return err
	}
	if referenced {
		s.logger.Warn("delete blocked: department still referenced", "department_id", id)
		return ErrDepartmentInUse
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete department", "error", err, "department_id", id)
		return err
	}

	s.logger.Info("department deleted", "department_id", id)
	return nil
}
