package auth

import (
	"log/slog"
	"net/http"

	"github.com/avaldivia/document-routing/pkg/logger"
)

// Authorization provides role-gating middleware for administrative routes.
// Department-level access rules live in the workflow services; only the
// coarse admin/operator split is enforced at the router.
type Authorization struct {
	logger *slog.Logger
}

func NewAuthorization() *Authorization {
	return &Authorization{logger: logger.L()}
}

func (a *Authorization) RequireAdmin() func(http.Handler) http.Handler {
	return a.requireRole(RoleAdmin)
}

func (a *Authorization) requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				http.Error(w, `{"code":401,"message":"unauthorized"}`, http.StatusUnauthorized)
				return
			}

			if user.Role != role {
				a.logger.Warn("role check failed",
					"user_id", user.ID,
					"role", user.Role,
					"required", role,
					"path", r.URL.Path)
				http.Error(w, `{"code":403,"message":"insufficient role"}`, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
