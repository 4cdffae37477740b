package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/avaldivia/document-routing/internal/auth"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

type mockAuthRepository struct {
	users       map[string]*mockCredentials
	usersByID   map[int64]*auth.User
	lookupError error
}

type mockCredentials struct {
	passwordHash string
	userID       int64
	isActive     bool
}

func newMockAuthRepository() *mockAuthRepository {
	return &mockAuthRepository{
		users:     make(map[string]*mockCredentials),
		usersByID: make(map[int64]*auth.User),
	}
}

func (m *mockAuthRepository) GetCredentials(username string) (string, int64, bool, error) {
	if m.lookupError != nil {
		return "", 0, false, m.lookupError
	}
	creds, ok := m.users[username]
	if !ok {
		return "", 0, false, errors.New("user not found")
	}
	return creds.passwordHash, creds.userID, creds.isActive, nil
}

func (m *mockAuthRepository) GetUserWithDepartment(userID int64) (*auth.User, error) {
	u, ok := m.usersByID[userID]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

var _ = ginkgo.Describe("Auth Service", func() {
	var (
		repo    *mockAuthRepository
		service *auth.Service
	)

	addUser := func(username, password string, id int64, active bool) {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		repo.users[username] = &mockCredentials{passwordHash: string(hash), userID: id, isActive: active}
		deptID := int64(3)
		repo.usersByID[id] = &auth.User{
			ID:           id,
			Username:     username,
			Role:         auth.RoleOperator,
			IsActive:     active,
			DepartmentID: &deptID,
		}
	}

	ginkgo.BeforeEach(func() {
		repo = newMockAuthRepository()
		tokenGen := auth.NewJWTTokenGenerator(
			"test-access-secret-with-enough-length",
			"test-refresh-secret-with-enough-length",
			15*time.Minute,
			24*time.Hour,
		)
		service = auth.NewService(repo, tokenGen, bcrypt.MinCost)
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.It("returns a token pair for valid credentials", func() {
			addUser("mesa01", "secret", 1, true)

			tokens, err := service.Authenticate(auth.LoginDTO{Username: "mesa01", Password: "secret"})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(tokens.AccessToken).NotTo(gomega.BeEmpty())
			gomega.Expect(tokens.RefreshToken).NotTo(gomega.BeEmpty())
		})

		ginkgo.It("rejects a wrong password", func() {
			addUser("mesa01", "secret", 1, true)

			_, err := service.Authenticate(auth.LoginDTO{Username: "mesa01", Password: "wrong"})

			gomega.Expect(err).To(gomega.Equal(auth.ErrInvalidCredentials))
		})

		ginkgo.It("rejects an unknown user", func() {
			_, err := service.Authenticate(auth.LoginDTO{Username: "ghost99", Password: "secret"})

			gomega.Expect(err).To(gomega.Equal(auth.ErrInvalidCredentials))
		})

		ginkgo.It("rejects an inactive user", func() {
			addUser("mesa01", "secret", 1, false)

			_, err := service.Authenticate(auth.LoginDTO{Username: "mesa01", Password: "secret"})

			gomega.Expect(err).To(gomega.Equal(auth.ErrUserInactive))
		})
	})

	ginkgo.Describe("ValidateAccessToken", func() {
		ginkgo.It("round-trips the user ID through the token", func() {
			addUser("mesa01", "secret", 42, true)
			tokens, err := service.Authenticate(auth.LoginDTO{Username: "mesa01", Password: "secret"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			claims, err := service.ValidateAccessToken(tokens.AccessToken)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(claims.UserID).To(gomega.Equal(int64(42)))
		})

		ginkgo.It("rejects garbage tokens", func() {
			_, err := service.ValidateAccessToken("not-a-token")

			gomega.Expect(err).To(gomega.Equal(auth.ErrInvalidToken))
		})

		ginkgo.It("rejects expired tokens", func() {
			expiredGen := auth.NewJWTTokenGenerator(
				"test-access-secret-with-enough-length",
				"test-refresh-secret-with-enough-length",
				-time.Minute,
				-time.Minute,
			)
			expired := auth.NewService(repo, expiredGen, bcrypt.MinCost)
			addUser("mesa01", "secret", 1, true)

			tokens, err := expired.Authenticate(auth.LoginDTO{Username: "mesa01", Password: "secret"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.ValidateAccessToken(tokens.AccessToken)
			gomega.Expect(err).To(gomega.Equal(auth.ErrTokenExpired))
		})
	})

	ginkgo.Describe("RefreshTokens", func() {
		ginkgo.It("rotates the pair for an active user", func() {
			addUser("mesa01", "secret", 1, true)
			tokens, err := service.Authenticate(auth.LoginDTO{Username: "mesa01", Password: "secret"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			rotated, err := service.RefreshTokens(tokens.RefreshToken)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(rotated.AccessToken).NotTo(gomega.BeEmpty())
		})

		ginkgo.It("refuses a refresh for a deactivated user", func() {
			addUser("mesa01", "secret", 1, true)
			tokens, err := service.Authenticate(auth.LoginDTO{Username: "mesa01", Password: "secret"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			repo.usersByID[1].IsActive = false

			_, err = service.RefreshTokens(tokens.RefreshToken)
			gomega.Expect(err).To(gomega.Equal(auth.ErrUserInactive))
		})
	})

	ginkgo.Describe("Actor", func() {
		ginkgo.It("carries the resolved department", func() {
			addUser("mesa01", "secret", 1, true)

			u, err := service.GetUserWithDepartment(1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			actor := u.Actor()
			gomega.Expect(actor.UserID).To(gomega.Equal(int64(1)))
			gomega.Expect(actor.DepartmentID).To(gomega.Equal(int64(3)))
			gomega.Expect(actor.HasDepartment()).To(gomega.BeTrue())
		})
	})
})
