package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-quiz/internal/apperr"
	authmw "github.com/mind-engage/mindengage-quiz/internal/auth/middleware"
	"github.com/mind-engage/mindengage-quiz/internal/course"
	"github.com/mind-engage/mindengage-quiz/internal/question"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/submission"
	"github.com/mind-engage/mindengage-quiz/internal/user"
)

type pairReq struct {
	QuestionID string `json:"question_id" validate:"required"`
	Answer     string `json:"answer" validate:"required,notblank"`
}

// An empty answer set is a blank submission and scores zero.
type submitReq struct {
	Answers []pairReq `json:"answers" validate:"dive"`
}

// SubmitHandler grades a student's answers for the quiz in the path. The
// student must be registered in the quiz's course, the quiz must be running,
// and every answer text must exist somewhere before the scorer runs its
// per-question match.
func SubmitHandler(scorer *submission.Scorer, sched *quiz.Scheduler, courses *course.SQLStore, questions *question.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, role := authmw.Identity(r.Context())
		if role != user.RoleStudent {
			forbidden(w, "only students submit quizzes")
			return
		}
		var req submitReq
		if !decodeJSON(w, r, &req) {
			return
		}
		qz, err := sched.Get(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			writeError(w, err)
			return
		}
		if err := courseAccess(r.Context(), courses, qz.CourseID, sub, role); err != nil {
			writeError(w, err)
			return
		}
		if st := qz.Window().Status(sched.Now()); st != quiz.StatusActive {
			writeError(w, apperr.New(apperr.KindConflict, "quiz is %s and not open for submissions", st))
			return
		}

		pairs := make([]submission.Pair, 0, len(req.Answers))
		for _, a := range req.Answers {
			ok, err := answerExists(r, questions, a.Answer)
			if err != nil {
				writeError(w, err)
				return
			}
			if !ok {
				writeError(w, apperr.New(apperr.KindInvalidInput, "answer %q does not exist", a.Answer))
				return
			}
			pairs = append(pairs, submission.Pair{QuestionID: a.QuestionID, Answer: a.Answer})
		}

		out, err := scorer.Submit(r.Context(), qz.ID, sub, pairs)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

// answerExists tolerates case for true/false answers, which are stored in
// lower case.
func answerExists(r *http.Request, questions *question.Service, text string) (bool, error) {
	text = strings.TrimSpace(text)
	ok, err := questions.AnswerTextExists(r.Context(), text)
	if err != nil || ok {
		return ok, err
	}
	if lower := strings.ToLower(text); lower != text {
		return questions.AnswerTextExists(r.Context(), lower)
	}
	return false, nil
}

// QuizResultsHandler lists every attempt at a quiz for its course owner.
func QuizResultsHandler(scorer *submission.Scorer, sched *quiz.Scheduler, courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, role := authmw.Identity(r.Context())
		qz, err := sched.Get(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			writeError(w, err)
			return
		}
		if role == user.RoleStudent {
			forbidden(w, "course results are restricted to the course owner")
			return
		}
		if err := courseAccess(r.Context(), courses, qz.CourseID, sub, role); err != nil {
			writeError(w, err)
			return
		}
		list, err := scorer.Results(r.Context(), submission.Filter{QuizID: qz.ID, StudentID: r.URL.Query().Get("student_id")})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": list})
	}
}

// MyResultsHandler lists the caller's own attempts, optionally for one quiz.
func MyResultsHandler(scorer *submission.Scorer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := authmw.Identity(r.Context())
		list, err := scorer.Results(r.Context(), submission.Filter{StudentID: sub, QuizID: r.URL.Query().Get("quiz_id")})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": list})
	}
}

// ResultAnswersHandler returns one attempt with its per-question answers to
// the student who made it or to the course owner.
func ResultAnswersHandler(scorer *submission.Scorer, sched *quiz.Scheduler, courses *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, role := authmw.Identity(r.Context())
		res, answers, err := scorer.Result(r.Context(), chi.URLParam(r, "resultID"))
		if err != nil {
			writeError(w, err)
			return
		}
		if res.StudentID != sub {
			if role == user.RoleStudent {
				writeError(w, apperr.New(apperr.KindNotFound, "result %s not found", res.ID))
				return
			}
			qz, err := sched.Get(r.Context(), res.QuizID)
			if err != nil {
				writeError(w, err)
				return
			}
			if err := courseAccess(r.Context(), courses, qz.CourseID, sub, role); err != nil {
				writeError(w, err)
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"result": res, "answers": answers})
	}
}
