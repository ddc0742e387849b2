package http

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	authmw "github.com/mind-engage/mindengage-quiz/internal/auth/middleware"
	"github.com/mind-engage/mindengage-quiz/internal/course"
	"github.com/mind-engage/mindengage-quiz/internal/notify"
	"github.com/mind-engage/mindengage-quiz/internal/proctor"
	"github.com/mind-engage/mindengage-quiz/internal/question"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/rbac"
	"github.com/mind-engage/mindengage-quiz/internal/storage"
	"github.com/mind-engage/mindengage-quiz/internal/submission"
	"github.com/mind-engage/mindengage-quiz/internal/user"
)

type Deps struct {
	DB        *sql.DB
	Auth      *authmw.AuthService
	Users     *user.Store
	Courses   *course.SQLStore
	Scheduler *quiz.Scheduler
	Questions *question.Service
	Scorer    *submission.Scorer
	Inbox     *notify.SQLSink
	Events    *proctor.EventRepo
	Blobs     storage.BlobStore
}

// Mount wires the public auth routes, health probes and the JWT protected
// API onto r.
func Mount(r chi.Router, d Deps) {
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", ReadyHandler(d.DB))

	r.Post("/auth/register", RegisterHandler(d.Users, d.Blobs))
	r.Post("/auth/login", LoginHandler(d.Users, d.Auth))

	// Protected API (JWT -> stored role -> RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(d.Auth), authmw.AttachRoleFromDB(d.DB))

		pr.Route("/assets", func(ar chi.Router) {
			MountAssets(ar, d.Blobs)
		})

		pr.With(rbac.Require("users:list")).Get("/users", ListUsersHandler(d.Users))
		pr.With(rbac.Require("users:manage")).Patch("/users/{userID}/role", UpdateUserRoleHandler(d.Users))
		pr.Post("/users/change-password", ChangePasswordHandler(d.Users))

		pr.With(rbac.Require("course:create")).Post("/courses", CreateCourseHandler(d.Courses, d.Users))
		pr.With(rbac.Require("course:view")).Get("/courses", ListCoursesHandler(d.Courses))
		pr.With(rbac.Require("course:register")).Post("/courses/{courseID}/register", RegisterCourseHandler(d.Courses))
		pr.With(rbac.Require("course:roster")).Get("/courses/{courseID}/students", CourseStudentsHandler(d.Courses))
		pr.With(rbac.Require("quiz:view")).Get("/courses/{courseID}/quizzes", ListCourseQuizzesHandler(d.Scheduler, d.Courses))

		pr.With(rbac.Require("quiz:create")).Post("/quizzes", CreateQuizHandler(d.Scheduler))
		pr.With(rbac.Require("quiz:view")).Get("/quizzes/{quizID}", GetQuizHandler(d.Scheduler, d.Courses))
		pr.With(rbac.Require("quiz:update")).Patch("/quizzes/{quizID}", UpdateQuizHandler(d.Scheduler))
		pr.With(rbac.Require("quiz:delete")).Delete("/quizzes/{quizID}", DeleteQuizHandler(d.Scheduler))

		pr.With(rbac.Require("quiz:view")).Get("/quizzes/{quizID}/questions", ListQuestionsHandler(d.Questions, d.Scheduler, d.Courses))
		pr.With(rbac.Require("question:manage")).Post("/quizzes/{quizID}/questions", CreateQuestionHandler(d.Questions))
		pr.With(rbac.Require("question:manage")).Put("/questions/{questionID}", UpdateQuestionHandler(d.Questions))
		pr.With(rbac.Require("question:manage")).Delete("/questions/{questionID}", DeleteQuestionHandler(d.Questions))

		pr.With(rbac.Require("quiz:submit")).Post("/quizzes/{quizID}/submissions", SubmitHandler(d.Scorer, d.Scheduler, d.Courses, d.Questions))
		pr.With(rbac.Require("result:view-course")).Get("/quizzes/{quizID}/results", QuizResultsHandler(d.Scorer, d.Scheduler, d.Courses))
		pr.With(rbac.Require("result:view-own")).Get("/results", MyResultsHandler(d.Scorer))
		pr.With(rbac.RequireAny("result:view-own", "result:view-course")).
			Get("/results/{resultID}/answers", ResultAnswersHandler(d.Scorer, d.Scheduler, d.Courses))

		pr.With(rbac.Require("notification:view")).Get("/notifications", ListNotificationsHandler(d.Inbox))
		pr.With(rbac.Require("notification:view")).Post("/notifications/{notificationID}/read", MarkNotificationReadHandler(d.Inbox))

		pr.With(rbac.Require("proctor:log")).Post("/quizzes/{quizID}/proctor-events", LogProctorEventHandler(d.Events))
		pr.With(rbac.Require("proctor:view")).Get("/quizzes/{quizID}/proctor-events", ListProctorEventsHandler(d.Events))
	})
}

// ReadyHandler reports 503 until the database answers a ping.
func ReadyHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
