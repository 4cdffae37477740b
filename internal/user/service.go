package user

import (
	"log/slog"

	"github.com/avaldivia/document-routing/internal/auth"
)

type Repository interface {
	Create(u *User) error
	GetByID(id int64) (*User, error)
	GetAll(limit, offset int) ([]*User, error)
	ExistsByUsername(username string, excludeID int64) (bool, error)
	ExistsByEmail(email string, excludeID int64) (bool, error)
	EmployeeLinked(employeeID int64, excludeUserID int64) (bool, error)
	Update(u *User) error
}

// PasswordHasher abstracts password hashing so the user service does not own
// bcrypt parameters; the auth service implements it.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

type Service struct {
	repo        Repository
	hasher      PasswordHasher
	emailDomain string
	logger      *slog.Logger
}

func NewService(repo Repository, hasher PasswordHasher, emailDomain string, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		hasher:      hasher,
		emailDomain: emailDomain,
		logger:      logger,
	}
}

func (s *Service) CreateUser(dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(s.emailDomain); err != nil {
		s.logger.Error("user validation failed", "error", err)
		return nil, err
	}

	role := dto.Role
	if role == "" {
		role = auth.RoleOperator
	}
	if role != auth.RoleAdmin && role != auth.RoleOperator {
		return nil, ErrInvalidRole
	}

	if taken, err := s.repo.ExistsByUsername(dto.Username, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrUsernameTaken
	}

	if taken, err := s.repo.ExistsByEmail(dto.Email, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailTaken
	}

	if dto.EmployeeID != nil {
		if linked, err := s.repo.EmployeeLinked(*dto.EmployeeID, 0); err != nil {
			return nil, err
		} else if linked {
			return nil, ErrEmployeeLinked
		}
	}

	hash, err := s.hasher.HashPassword(dto.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, err
	}

	u := &User{
		Username:     dto.Username,
		Email:        dto.Email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		EmployeeID:   dto.EmployeeID,
	}

	if err := s.repo.Create(u); err != nil {
		s.logger.Error("failed to create user", "error", err, "username", dto.Username)
		return nil, err
	}

	s.logger.Info("user created", "user_id", u.ID, "username", u.Username, "role", u.Role)
	return u, nil
}

func (s *Service) GetUserByID(id int64) (*User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *Service) GetUsers(limit, offset int) ([]*User, error) {
	return s.repo.GetAll(limit, offset)
}

func (s *Service) UpdateUser(id int64, dto UpdateUserDTO) (*User, error) {
	if err := dto.Validate(s.emailDomain); err != nil {
		s.logger.Error("user validation failed", "error", err, "user_id", id)
		return nil, err
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if dto.Role != "" {
		if dto.Role != auth.RoleAdmin && dto.Role != auth.RoleOperator {
			return nil, ErrInvalidRole
		}
		u.Role = dto.Role
	}

	if dto.Email != u.Email {
		if taken, err := s.repo.ExistsByEmail(dto.Email, id); err != nil {
			return nil, err
		} else if taken {
			return nil, ErrEmailTaken
		}
		u.Email = dto.Email
	}

	if dto.EmployeeID != nil {
		if linked, err := s.repo.EmployeeLinked(*dto.EmployeeID, id); err != nil {
			return nil, err
		} else if linked {
			return nil, ErrEmployeeLinked
		}
		u.EmployeeID = dto.EmployeeID
	}

	if dto.IsActive != nil {
		u.IsActive = *dto.IsActive
	}

	if err := s.repo.Update(u); err != nil {
		s.logger.Error("failed to update user", "error", err, "user_id", id)
		return nil, err
	}

	s.logger.Info("user updated", "user_id", id)
	return u, nil
}
