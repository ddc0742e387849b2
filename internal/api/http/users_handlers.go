package http

import (
	"net/http"
	"strings"

	"github.com/mind-engage/mindengage-quiz/internal/user"
)

// ListUsersHandler pages through accounts, optionally filtered by ?role=.
func ListUsersHandler(users *user.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		role := strings.ToLower(strings.TrimSpace(q.Get("role")))
		if role != "" && !user.ValidRole(role) {
			badRequest(w, "invalid role")
			return
		}
		list, err := users.List(r.Context(), role, parseIntDefault(q.Get("limit"), 50), parseIntDefault(q.Get("offset"), 0))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": list})
	}
}
