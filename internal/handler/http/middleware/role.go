package middleware

import (
	"fmt"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lumina-hr/payroll-engine-go/internal/handler/http/response"
	"github.com/lumina-hr/payroll-engine-go/internal/pkg/validator"
)

// RequireRole allows only requests whose token carries one of the given roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required one of %v", roles))
				return
			}

			role, ok := claims["role"].(string)
			if !ok || !validator.IsInSlice(role, roles) {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required one of %v", roles))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
