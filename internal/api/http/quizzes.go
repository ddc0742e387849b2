package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/mind-engage/mindengage-quiz/internal/auth/middleware"
	"github.com/mind-engage/mindengage-quiz/internal/course"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

type createQuizReq struct {
	CourseID    string `json:"course_id" validate:"required"`
	Title       string `json:"title" validate:"required,notblank,max=200"`
	Description string `json:"description" validate:"max=4000"`
	QuizDate    string `json:"quiz_date" validate:"required"`
	StartTime   string `json:"start_time" validate:"required"`
	EndTime     string `json:"end_time" validate:"required"`
}

// quizPatchReq leaves absent fields untouched. At least one must be set.
type quizPatchReq struct {
	CourseID    *string `json:"course_id" validate:"omitnil,notblank"`
	Title       *string `json:"title" validate:"omitnil,notblank,max=200"`
	Description *string `json:"description" validate:"omitnil,max=4000"`
	Date        *string `json:"quiz_date"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
}

func CreateQuizHandler(sched *quiz.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := authmw.Identity(r.Context())
		var req createQuizReq
		if !decodeJSON(w, r, &req) {
			return
		}
		q, err := sched.Create(r.Context(), sub, quiz.CreateInput{
			CourseID:    req.CourseID,
			Title:       req.Title,
			Description: req.Description,
			Date:        req.QuizDate,
			StartTime:   req.StartTime,
			EndTime:     req.EndTime,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, q.View(sched.Now(), sched.Location()))
	}
}

func UpdateQuizHandler(sched *quiz.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := authmw.Identity(r.Context())
		var req quizPatchReq
		if !decodeJSON(w, r, &req) {
			return
		}
		q, err := sched.Update(r.Context(), sub, chi.URLParam(r, "quizID"), quiz.UpdateInput{
			CourseID:    req.CourseID,
			Title:       req.Title,
			Description: req.Description,
			Date:        req.Date,
			StartTime:   req.StartTime,
			EndTime:     req.EndTime,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q.View(sched.Now(), sched.Location()))
	}
}

func DeleteQuizHandler(sched *quiz.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := authmw.Identity(r.Context())
		if err := sched.Delete(r.Context(), sub, chi.URLParam(r, "quizID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GetQuizHandler returns the quiz with its read-time status to anyone with
// access to the course.
func GetQuizHandler(sched *quiz.Scheduler, courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, role := authmw.Identity(r.Context())
		q, err := sched.Get(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			writeError(w, err)
			return
		}
		if err := courseAccess(r.Context(), courses, q.CourseID, sub, role); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q.View(sched.Now(), sched.Location()))
	}
}

func ListCourseQuizzesHandler(sched *quiz.Scheduler, courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, role := authmw.Identity(r.Context())
		courseID := chi.URLParam(r, "courseID")
		if err := courseAccess(r.Context(), courses, courseID, sub, role); err != nil {
			writeError(w, err)
			return
		}
		list, err := sched.ListByCourse(r.Context(), courseID)
		if err != nil {
			writeError(w, err)
			return
		}
		now, loc := sched.Now(), sched.Location()
		views := make([]quiz.View, 0, len(list))
		for _, q := range list {
			views = append(views, q.View(now, loc))
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": views})
	}
}
