package auth

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/mind-engage/mindengage-quiz/internal/rbac"
)

// AttachRoleFromDB replaces the token's role with the stored one so role
// changes apply before the token expires. Tokens for deleted users are
// rejected.
func AttachRoleFromDB(db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			var role string
			err := db.QueryRowContext(ctx, `SELECT role FROM users WHERE id=$1`, SubjectFromContext(ctx)).Scan(&role)
			switch {
			case errors.Is(err, sql.ErrNoRows):
				writeAuthError(w, http.StatusUnauthorized, "unknown user")
			case err != nil:
				http.Error(w, "role lookup failed", http.StatusInternalServerError)
			default:
				next.ServeHTTP(w, r.WithContext(rbac.WithRole(ctx, role)))
			}
		})
	}
}
