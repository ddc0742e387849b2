package quiz

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mind-engage/mindengage-quiz/internal/apperr"
	"github.com/mind-engage/mindengage-quiz/internal/db"
)

type Quiz struct {
	ID              string    `json:"id"`
	CourseID        string    `json:"course_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Date            string    `json:"quiz_date"`
	StartAt         time.Time `json:"start_time"`
	EndAt           time.Time `json:"end_time"`
	DurationMinutes int       `json:"duration"`
	Lockdown        bool      `json:"lockdown"`
	TotalMarks      int       `json:"total_marks"`
	CreatedAt       int64     `json:"created_at"`
	UpdatedAt       int64     `json:"updated_at"`
}

func (q Quiz) Window() Window { return Window{Start: q.StartAt, End: q.EndAt} }

// View adds state evaluated at read time. Lockdown stays the stored
// snapshot; Active reflects now.
type View struct {
	Quiz
	Active bool   `json:"active"`
	Status Status `json:"status"`
}

func (q Quiz) View(now time.Time, loc *time.Location) View {
	if loc != nil {
		q.StartAt = q.StartAt.In(loc)
		q.EndAt = q.EndAt.In(loc)
	}
	w := q.Window()
	return View{Quiz: q, Active: w.InLockdown(now), Status: w.Status(now)}
}

type SQLStore struct {
	q db.Querier
}

func NewSQLStore(q db.Querier) *SQLStore { return &SQLStore{q: q} }

const quizColumns = `id, course_id, title, description, quiz_date, start_at, end_at,
	duration_minutes, lockdown, total_marks, created_at, updated_at`

func (s *SQLStore) Insert(ctx context.Context, q Quiz) error {
	_, err := s.q.ExecContext(ctx, `INSERT INTO quizzes (`+quizColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		q.ID, q.CourseID, q.Title, q.Description, q.Date, q.StartAt.Unix(), q.EndAt.Unix(),
		q.DurationMinutes, q.Lockdown, q.TotalMarks, q.CreatedAt, q.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

// Update rewrites every mutable column except total_marks, which only
// RecomputeTotalMarks touches.
func (s *SQLStore) Update(ctx context.Context, q Quiz) error {
	res, err := s.q.ExecContext(ctx, `UPDATE quizzes SET course_id=$1, title=$2, description=$3, quiz_date=$4,
		start_at=$5, end_at=$6, duration_minutes=$7, lockdown=$8, updated_at=$9 WHERE id=$10`,
		q.CourseID, q.Title, q.Description, q.Date, q.StartAt.Unix(), q.EndAt.Unix(),
		q.DurationMinutes, q.Lockdown, q.UpdatedAt, q.ID)
	if err != nil {
		return fmt.Errorf("update quiz: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.KindNotFound, "quiz %s not found", q.ID)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM quizzes WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.KindNotFound, "quiz %s not found", id)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (Quiz, error) {
	q, err := scanQuiz(s.q.QueryRowContext(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Quiz{}, apperr.New(apperr.KindNotFound, "quiz %s not found", id)
	}
	return q, err
}

// FindByCourse lists a course's quizzes ordered by start. A non-empty
// excludeID is left out of the result.
func (s *SQLStore) FindByCourse(ctx context.Context, courseID, excludeID string) ([]Quiz, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+quizColumns+` FROM quizzes
		WHERE course_id=$1 AND id<>$2 ORDER BY start_at, id`, courseID, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Quiz{}
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// RecomputeTotalMarks sets total_marks to the sum of the quiz's question
// marks and returns the new total. Call it after every question mutation.
func (s *SQLStore) RecomputeTotalMarks(ctx context.Context, quizID string) (int, error) {
	var total int
	if err := s.q.QueryRowContext(ctx, `SELECT COALESCE(SUM(marks), 0) FROM questions WHERE quiz_id=$1`, quizID).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum marks: %w", err)
	}
	res, err := s.q.ExecContext(ctx, `UPDATE quizzes SET total_marks=$1 WHERE id=$2`, total, quizID)
	if err != nil {
		return 0, fmt.Errorf("update total marks: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, apperr.New(apperr.KindNotFound, "quiz %s not found", quizID)
	}
	return total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuiz(r rowScanner) (Quiz, error) {
	var q Quiz
	var start, end int64
	if err := r.Scan(&q.ID, &q.CourseID, &q.Title, &q.Description, &q.Date, &start, &end,
		&q.DurationMinutes, &q.Lockdown, &q.TotalMarks, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return Quiz{}, err
	}
	q.StartAt = time.Unix(start, 0).UTC()
	q.EndAt = time.Unix(end, 0).UTC()
	return q, nil
}
