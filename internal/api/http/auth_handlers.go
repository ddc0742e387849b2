package http

import (
	"net/http"
	"strings"

	authmw "github.com/mind-engage/mindengage-quiz/internal/auth/middleware"
	"github.com/mind-engage/mindengage-quiz/internal/storage"
	"github.com/mind-engage/mindengage-quiz/internal/user"
)

const maxUploadBytes = 8 << 20

type registerReq struct {
	Username string `json:"username" validate:"required,notblank,max=64"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"required,notblank,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"required,oneof=professor student"`
}

// RegisterHandler accepts multipart/form-data with the account fields and
// a required face_image capture.
func RegisterHandler(users *user.Store, bs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			badRequest(w, "multipart form required")
			return
		}
		req := registerReq{
			Username: strings.TrimSpace(r.FormValue("username")),
			Password: r.FormValue("password"),
			FullName: strings.TrimSpace(r.FormValue("full_name")),
			Email:    strings.TrimSpace(r.FormValue("email")),
			Role:     strings.ToLower(strings.TrimSpace(r.FormValue("role"))),
		}
		if err := validate.Struct(req); err != nil {
			badRequest(w, validationMessage(err))
			return
		}

		f, hdr, err := r.FormFile("face_image")
		if err != nil {
			badRequest(w, "face_image required")
			return
		}
		defer f.Close()
		key, ok := storage.ImageKey("faces", hdr.Header.Get("Content-Type"))
		if !ok {
			badRequest(w, "face_image must be jpeg, png or webp")
			return
		}
		if key, err = bs.Put(key, f); err != nil {
			http.Error(w, "store error: "+err.Error(), http.StatusInternalServerError)
			return
		}

		u, err := users.Register(r.Context(), user.RegisterInput{
			Username:     req.Username,
			Password:     req.Password,
			FullName:     req.FullName,
			Email:        req.Email,
			Role:         req.Role,
			FaceImageKey: key,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, u)
	}
}

type loginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func LoginHandler(users *user.Store, authSvc *authmw.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if !decodeJSON(w, r, &req) {
			return
		}
		u, err := users.Authenticate(r.Context(), req.Username, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		tok, exp, err := authSvc.IssueJWT(u.ID, u.Role)
		if err != nil {
			http.Error(w, "token error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": tok,
			"token_type":   "Bearer",
			"expires_at":   exp.Unix(),
			"user":         u,
		})
	}
}
