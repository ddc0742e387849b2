// Package proctor keeps the anti-cheating log students' clients append to
// while a quiz is running.
package proctor

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/mind-engage/mindengage-quiz/internal/apperr"
	"github.com/mind-engage/mindengage-quiz/internal/course"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

type Kind string

const (
	KindTabSwitch     Kind = "tab_switch"
	KindWindowBlur    Kind = "window_blur"
	KindFaceMismatch  Kind = "face_mismatch"
	KindMultipleFaces Kind = "multiple_faces"
	KindCopyPaste     Kind = "copy_paste"
)

func (k Kind) Valid() bool {
	switch k {
	case KindTabSwitch, KindWindowBlur, KindFaceMismatch, KindMultipleFaces, KindCopyPaste:
		return true
	}
	return false
}

type Event struct {
	ID        int64  `json:"id"`
	QuizID    string `json:"quiz_id"`
	StudentID string `json:"student_id"`
	Kind      Kind   `json:"kind"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

type EventRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db, now: time.Now} }

// Log appends an event for a student registered in the quiz's course.
func (r *EventRepo) Log(ctx context.Context, studentID, quizID string, kind Kind, detail string) (Event, error) {
	if !kind.Valid() {
		return Event{}, apperr.New(apperr.KindInvalidInput, "unknown proctor event kind %q", kind)
	}
	q, err := quiz.NewSQLStore(r.db).Get(ctx, quizID)
	if err != nil {
		return Event{}, err
	}
	ok, err := course.NewSQLStore(r.db).IsRegistered(ctx, q.CourseID, studentID)
	if err != nil {
		return Event{}, err
	}
	if !ok {
		return Event{}, apperr.New(apperr.KindForbidden, "not registered in the quiz's course")
	}
	e := Event{QuizID: quizID, StudentID: studentID, Kind: kind, Detail: strings.TrimSpace(detail), CreatedAt: r.now().Unix()}
	id, err := r.Append(ctx, e)
	if err != nil {
		return Event{}, err
	}
	e.ID = id
	return e, nil
}

// Append stores e and returns the generated id.
func (r *EventRepo) Append(ctx context.Context, e Event) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO proctor_events (quiz_id, student_id, kind, detail, created_at)
		 VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		e.QuizID, e.StudentID, string(e.Kind), e.Detail, e.CreatedAt).Scan(&id)
	return id, err
}

// ForQuiz lists a quiz's events for the owning professor, optionally for
// one student.
func (r *EventRepo) ForQuiz(ctx context.Context, actorID, quizID, studentID string) ([]Event, error) {
	q, err := quiz.NewSQLStore(r.db).Get(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if _, err := course.NewSQLStore(r.db).RequireOwner(ctx, q.CourseID, actorID); err != nil {
		return nil, err
	}
	query := `SELECT id, quiz_id, student_id, kind, detail, created_at FROM proctor_events WHERE quiz_id=$1`
	args := []any{quizID}
	if studentID != "" {
		query += ` AND student_id=$2`
		args = append(args, studentID)
	}
	query += ` ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Event{}
	for rows.Next() {
		var e Event
		var kind string
		if err := rows.Scan(&e.ID, &e.QuizID, &e.StudentID, &kind, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Kind = Kind(kind)
		out = append(out, e)
	}
	return out, rows.Err()
}
