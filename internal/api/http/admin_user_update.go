package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-quiz/internal/user"
)

type updateUserRoleReq struct {
	Role string `json:"role" validate:"required,oneof=admin professor student"`
}

func UpdateUserRoleHandler(users *user.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateUserRoleReq
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := users.UpdateRole(r.Context(), chi.URLParam(r, "userID"), req.Role); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
