package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-quiz/internal/apperr"
	authmw "github.com/mind-engage/mindengage-quiz/internal/auth/middleware"
	"github.com/mind-engage/mindengage-quiz/internal/course"
	"github.com/mind-engage/mindengage-quiz/internal/question"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/user"
)

type answerReq struct {
	Text      string `json:"text" validate:"required,notblank,max=1000"`
	IsCorrect bool   `json:"is_correct"`
}

type questionReq struct {
	Content  string      `json:"content" validate:"required,notblank,max=8000"`
	Type     string      `json:"type" validate:"required,oneof=multiple_choice true_false short_answer"`
	Marks    int         `json:"marks" validate:"gt=0"`
	ImageKey string      `json:"image_key,omitempty" validate:"max=300"`
	Answers  []answerReq `json:"answers" validate:"required,min=1,dive"`
}

func (q questionReq) input() question.Input {
	in := question.Input{Content: q.Content, Type: question.Type(q.Type), Marks: q.Marks, ImageKey: q.ImageKey}
	for _, a := range q.Answers {
		in.Answers = append(in.Answers, question.AnswerInput{Text: a.Text, IsCorrect: a.IsCorrect})
	}
	return in
}

func CreateQuestionHandler(svc *question.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := authmw.Identity(r.Context())
		var req questionReq
		if !decodeJSON(w, r, &req) {
			return
		}
		q, err := svc.Create(r.Context(), sub, chi.URLParam(r, "quizID"), req.input())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, q)
	}
}

func UpdateQuestionHandler(svc *question.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := authmw.Identity(r.Context())
		var req questionReq
		if !decodeJSON(w, r, &req) {
			return
		}
		q, err := svc.Update(r.Context(), sub, chi.URLParam(r, "questionID"), req.input())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

func DeleteQuestionHandler(svc *question.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := authmw.Identity(r.Context())
		if err := svc.Delete(r.Context(), sub, chi.URLParam(r, "questionID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListQuestionsHandler gives owners and admins the full questions with
// correctness flags. Registered students get the public view, and only once
// the quiz has started.
func ListQuestionsHandler(svc *question.Service, sched *quiz.Scheduler, courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, role := authmw.Identity(r.Context())
		qz, err := sched.Get(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			writeError(w, err)
			return
		}
		if err := courseAccess(r.Context(), courses, qz.CourseID, sub, role); err != nil {
			writeError(w, err)
			return
		}
		if role == user.RoleStudent && qz.Window().Status(sched.Now()) == quiz.StatusUpcoming {
			writeError(w, apperr.New(apperr.KindForbidden, "quiz %s has not started", qz.ID))
			return
		}
		list, err := svc.List(r.Context(), qz.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		if role != user.RoleStudent {
			writeJSON(w, http.StatusOK, map[string]any{"items": list})
			return
		}
		pub := make([]question.Public, 0, len(list))
		for _, q := range list {
			pub = append(pub, q.Public())
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": pub})
	}
}
