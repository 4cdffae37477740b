package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/avaldivia/document-routing/internal"
)

// User is the authenticated identity attached to a request. DepartmentID is
// resolved through the linked employee and may be absent for accounts without
// an employee record.
type User struct {
	ID             int64   `json:"id"`
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	Role           string  `json:"role"`
	IsActive       bool    `json:"is_active"`
	EmployeeID     *int64  `json:"employee_id,omitempty"`
	DepartmentID   *int64  `json:"department_id,omitempty"`
	DepartmentName string  `json:"department_name,omitempty"`
}

const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Actor converts the user into the explicit actor threaded through workflow
// operations. DepartmentID is zero when the user has no department.
func (u *User) Actor() internal.Actor {
	actor := internal.Actor{UserID: u.ID}
	if u.DepartmentID != nil {
		actor.DepartmentID = *u.DepartmentID
	}
	return actor
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenGenerator creates and validates tokens.
type TokenGenerator interface {
	GenerateAccessToken(userID int64) (token string, err error)
	GenerateRefreshToken(userID int64) (token string, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserInactive       = errors.New("user is inactive")
	ErrUserNotFound       = errors.New("user not found")
)

type userCtxKey string

const contextUserKey userCtxKey = "authUser"

func UserFromContext(ctx context.Context) (*User, bool) {
	if ctx == nil {
		return nil, false
	}
	u, ok := ctx.Value(contextUserKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, contextUserKey, u)
}

// JWTTokenGenerator signs HS256 access and refresh tokens with separate secrets.
type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}
