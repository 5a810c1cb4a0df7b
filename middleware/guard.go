package middleware

import (
	"net/http"

	"github.com/padronhq/padron"
)

// Require rejects requests that reached the handler without an authenticated
// principal. Fail-open authentication plus fail-closed guards: the credential
// check may shrug, this one never does.
func Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := padron.PrincipalFromContext(r.Context()); !ok {
			writeJSONError(w, http.StatusUnauthorized, "no autorizado")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects unauthenticated requests with 401 and authenticated
// requests below the minimum role with 403. Roles are ordered
// operator < admin < super_admin.
func RequireRole(min padron.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := padron.PrincipalFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "no autorizado")
				return
			}
			if principal.Role < min {
				writeJSONError(w, http.StatusForbidden, "permiso insuficiente")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
