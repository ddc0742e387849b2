package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-quiz/internal/apperr"
	authmw "github.com/mind-engage/mindengage-quiz/internal/auth/middleware"
	"github.com/mind-engage/mindengage-quiz/internal/course"
	"github.com/mind-engage/mindengage-quiz/internal/user"
)

type createCourseReq struct {
	Code        string `json:"code" validate:"required,notblank,max=32"`
	Name        string `json:"name" validate:"required,notblank,max=200"`
	ProfessorID string `json:"professor_id,omitempty"`
}

// CreateCourseHandler makes the caller the owning professor. An admin must
// name the professor instead.
func CreateCourseHandler(courses *course.SQLStore, users *user.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, role := authmw.Identity(r.Context())
		var req createCourseReq
		if !decodeJSON(w, r, &req) {
			return
		}
		owner := sub
		if role == user.RoleAdmin {
			if req.ProfessorID == "" {
				badRequest(w, "professor_id required")
				return
			}
			p, err := users.FindByID(r.Context(), req.ProfessorID)
			if err != nil {
				writeError(w, err)
				return
			}
			if p.Role != user.RoleProfessor {
				badRequest(w, "professor_id does not name a professor")
				return
			}
			owner = p.ID
		} else if req.ProfessorID != "" && req.ProfessorID != sub {
			forbidden(w, "professors create courses for themselves")
			return
		}
		c, err := courses.Create(r.Context(), req.Code, req.Name, owner)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

// ListCoursesHandler is role scoped: admins see everything, professors
// their own courses and students the courses they registered in. A student
// passing ?available=1 browses the full catalogue to pick one.
func ListCoursesHandler(courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, role := authmw.Identity(r.Context())
		q := r.URL.Query()
		page := course.Page{Limit: parseIntDefault(q.Get("limit"), 50), Offset: parseIntDefault(q.Get("offset"), 0)}

		var (
			list []course.Course
			err  error
		)
		switch {
		case role == user.RoleAdmin, role == user.RoleStudent && truthy(q.Get("available")):
			list, err = courses.ListAll(r.Context(), page)
		case role == user.RoleProfessor:
			list, err = courses.ListForProfessor(r.Context(), sub, page)
		default:
			list, err = courses.ListForStudent(r.Context(), sub, page)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": list, "limit": page.Limit, "offset": page.Offset})
	}
}

func RegisterCourseHandler(courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, role := authmw.Identity(r.Context())
		if role != user.RoleStudent {
			forbidden(w, "only students register in courses")
			return
		}
		courseID := chi.URLParam(r, "courseID")
		if err := courses.Register(r.Context(), courseID, sub); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"course_id": courseID, "student_id": sub})
	}
}

// CourseStudentsHandler lists the roster for the owning professor or an
// admin.
func CourseStudentsHandler(courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, role := authmw.Identity(r.Context())
		courseID := chi.URLParam(r, "courseID")
		if role == user.RoleStudent {
			writeError(w, apperr.New(apperr.KindForbidden, "roster is restricted to the course owner"))
			return
		}
		if err := courseAccess(r.Context(), courses, courseID, sub, role); err != nil {
			writeError(w, err)
			return
		}
		list, err := courses.Students(r.Context(), courseID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": list})
	}
}
