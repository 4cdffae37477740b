package user_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/avaldivia/document-routing/internal"
	"github.com/avaldivia/document-routing/internal/auth"
	"github.com/avaldivia/document-routing/internal/user"
)

func TestUserService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Service Suite")
}

type mockUserRepository struct {
	users       map[int64]*user.User
	nextID      int64
	createError error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users:  make(map[int64]*user.User),
		nextID: 1,
	}
}

func (m *mockUserRepository) Create(u *user.User) error {
	if m.createError != nil {
		return m.createError
	}
	u.ID = m.nextID
	m.nextID++
	copied := *u
	m.users[u.ID] = &copied
	return nil
}

func (m *mockUserRepository) GetByID(id int64) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepository) GetAll(limit, offset int) ([]*user.User, error) {
	var result []*user.User
	for _, u := range m.users {
		result = append(result, u)
	}
	return result, nil
}

func (m *mockUserRepository) ExistsByUsername(username string, excludeID int64) (bool, error) {
	for _, u := range m.users {
		if u.Username == username && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepository) ExistsByEmail(email string, excludeID int64) (bool, error) {
	for _, u := range m.users {
		if u.Email == email && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepository) EmployeeLinked(employeeID int64, excludeUserID int64) (bool, error) {
	for _, u := range m.users {
		if u.EmployeeID != nil && *u.EmployeeID == employeeID && u.ID != excludeUserID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepository) Update(u *user.User) error {
	copied := *u
	m.users[u.ID] = &copied
	return nil
}

type mockPasswordHasher struct {
	hashError error
}

func (m *mockPasswordHasher) HashPassword(password string) (string, error) {
	if m.hashError != nil {
		return "", m.hashError
	}
	return "hashed:" + password, nil
}

var _ = Describe("User Service", func() {
	var (
		repo    *mockUserRepository
		hasher  *mockPasswordHasher
		service *user.Service
	)

	validDTO := func() user.CreateUserDTO {
		return user.CreateUserDTO{
			Username: "mesa01",
			Email:    "mesa01@muni.gob.pe",
			Password: "super-secret",
		}
	}

	BeforeEach(func() {
		repo = newMockUserRepository()
		hasher = &mockPasswordHasher{}
		service = user.NewService(repo, hasher, "muni.gob.pe", slog.New(slog.NewTextHandler(os.Stdout, nil)))
	})

	Describe("CreateUser", func() {
		It("creates an active operator by default", func() {
			u, err := service.CreateUser(validDTO())

			Expect(err).NotTo(HaveOccurred())
			Expect(u.ID).NotTo(BeZero())
			Expect(u.Role).To(Equal(auth.RoleOperator))
			Expect(u.IsActive).To(BeTrue())
			Expect(u.PasswordHash).To(Equal("hashed:super-secret"))
		})

		It("rejects a username without a digit", func() {
			dto := validDTO()
			dto.Username = "mesauser"

			_, err := service.CreateUser(dto)

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(422))
		})

		It("rejects an email outside the organization domain", func() {
			dto := validDTO()
			dto.Email = "mesa01@gmail.com"

			_, err := service.CreateUser(dto)

			Expect(err).To(HaveOccurred())
			_, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
		})

		It("rejects a short password", func() {
			dto := validDTO()
			dto.Password = "short"

			_, err := service.CreateUser(dto)

			Expect(err).To(HaveOccurred())
		})

		It("rejects an unknown role", func() {
			dto := validDTO()
			dto.Role = "superuser"

			_, err := service.CreateUser(dto)

			Expect(err).To(Equal(user.ErrInvalidRole))
		})

		It("rejects a taken username", func() {
			_, err := service.CreateUser(validDTO())
			Expect(err).NotTo(HaveOccurred())

			dto := validDTO()
			dto.Email = "otro01@muni.gob.pe"
			_, err = service.CreateUser(dto)

			Expect(err).To(Equal(user.ErrUsernameTaken))
		})

		It("rejects an employee already linked to another account", func() {
			employeeID := int64(7)
			dto := validDTO()
			dto.EmployeeID = &employeeID
			_, err := service.CreateUser(dto)
			Expect(err).NotTo(HaveOccurred())

			second := validDTO()
			second.Username = "teso01"
			second.Email = "teso01@muni.gob.pe"
			second.EmployeeID = &employeeID
			_, err = service.CreateUser(second)

			Expect(err).To(Equal(user.ErrEmployeeLinked))
		})

		It("propagates hashing failures", func() {
			hasher.hashError = errors.New("cost out of range")

			_, err := service.CreateUser(validDTO())

			Expect(err).To(MatchError("cost out of range"))
		})
	})

	Describe("UpdateUser", func() {
		It("promotes an operator to admin", func() {
			u, err := service.CreateUser(validDTO())
			Expect(err).NotTo(HaveOccurred())

			updated, err := service.UpdateUser(u.ID, user.UpdateUserDTO{
				Email: u.Email,
				Role:  auth.RoleAdmin,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Role).To(Equal(auth.RoleAdmin))
		})

		It("deactivates an account", func() {
			u, err := service.CreateUser(validDTO())
			Expect(err).NotTo(HaveOccurred())

			inactive := false
			updated, err := service.UpdateUser(u.ID, user.UpdateUserDTO{
				Email:    u.Email,
				IsActive: &inactive,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.IsActive).To(BeFalse())
		})

		It("refuses an email already taken by another user", func() {
			first, err := service.CreateUser(validDTO())
			Expect(err).NotTo(HaveOccurred())

			second := validDTO()
			second.Username = "teso01"
			second.Email = "teso01@muni.gob.pe"
			other, err := service.CreateUser(second)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.UpdateUser(other.ID, user.UpdateUserDTO{Email: first.Email})

			Expect(err).To(Equal(user.ErrEmailTaken))
		})

		It("reports a missing user", func() {
			_, err := service.UpdateUser(99, user.UpdateUserDTO{Email: "mesa01@muni.gob.pe"})

			Expect(err).To(Equal(user.ErrUserNotFound))
		})
	})
})
