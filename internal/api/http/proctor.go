package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/mind-engage/mindengage-quiz/internal/auth/middleware"
	"github.com/mind-engage/mindengage-quiz/internal/proctor"
)

type proctorEventReq struct {
	Kind   string `json:"kind" validate:"required,oneof=tab_switch window_blur face_mismatch multiple_faces copy_paste"`
	Detail string `json:"detail" validate:"max=2000"`
}

func LogProctorEventHandler(events *proctor.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := authmw.Identity(r.Context())
		var req proctorEventReq
		if !decodeJSON(w, r, &req) {
			return
		}
		ev, err := events.Log(r.Context(), sub, chi.URLParam(r, "quizID"), proctor.Kind(req.Kind), req.Detail)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, ev)
	}
}

// ListProctorEventsHandler is for the course owner; ?student_id= narrows it
// to one student.
func ListProctorEventsHandler(events *proctor.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := authmw.Identity(r.Context())
		list, err := events.ForQuiz(r.Context(), sub, chi.URLParam(r, "quizID"), r.URL.Query().Get("student_id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": list})
	}
}
