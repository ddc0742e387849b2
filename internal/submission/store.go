package submission

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mind-engage/mindengage-quiz/internal/apperr"
	"github.com/mind-engage/mindengage-quiz/internal/db"
)

// Result is one (student, quiz) attempt.
type Result struct {
	ID          string  `json:"id"`
	QuizID      string  `json:"quiz_id"`
	StudentID   string  `json:"student_id"`
	Score       int     `json:"score"`
	MaxScore    int     `json:"max_score"`
	Percentage  float64 `json:"percentage"`
	Passed      bool    `json:"passed"`
	SubmittedAt int64   `json:"submitted_at"`
}

// StudentAnswer records the answer picked for one question of an attempt.
type StudentAnswer struct {
	ID           string `json:"id"`
	ResultID     string `json:"result_id"`
	StudentID    string `json:"student_id"`
	QuestionID   string `json:"question_id"`
	AnswerID     string `json:"answer_id"`
	IsCorrect    bool   `json:"is_correct"`
	MarksAwarded int    `json:"marks_awarded"`
}

type Filter struct {
	QuizID    string
	StudentID string
}

type SQLStore struct {
	q db.Querier
}

func NewSQLStore(q db.Querier) *SQLStore { return &SQLStore{q: q} }

func (s *SQLStore) InsertResult(ctx context.Context, r Result) error {
	_, err := s.q.ExecContext(ctx, `INSERT INTO quiz_results (id, quiz_id, student_id, score, max_score, percentage, passed, submitted_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		r.ID, r.QuizID, r.StudentID, r.Score, r.MaxScore, r.Percentage, r.Passed, r.SubmittedAt)
	if err != nil {
		return fmt.Errorf("insert quiz result: %w", err)
	}
	return nil
}

func (s *SQLStore) InsertAnswer(ctx context.Context, a StudentAnswer) error {
	_, err := s.q.ExecContext(ctx, `INSERT INTO student_answers (id, result_id, student_id, question_id, answer_id, is_correct, marks_awarded)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.ResultID, a.StudentID, a.QuestionID, a.AnswerID, a.IsCorrect, a.MarksAwarded)
	if err != nil {
		return fmt.Errorf("insert student answer: %w", err)
	}
	return nil
}

func (s *SQLStore) CountResults(ctx context.Context, quizID, studentID string) (int, error) {
	var n int
	err := s.q.QueryRowContext(ctx, `SELECT COUNT(1) FROM quiz_results WHERE quiz_id=$1 AND student_id=$2`, quizID, studentID).Scan(&n)
	return n, err
}

const resultColumns = `id, quiz_id, student_id, score, max_score, percentage, passed, submitted_at`

func (s *SQLStore) GetResult(ctx context.Context, id string) (Result, error) {
	var r Result
	err := s.q.QueryRowContext(ctx, `SELECT `+resultColumns+` FROM quiz_results WHERE id=$1`, id).
		Scan(&r.ID, &r.QuizID, &r.StudentID, &r.Score, &r.MaxScore, &r.Percentage, &r.Passed, &r.SubmittedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Result{}, apperr.New(apperr.KindNotFound, "result %s not found", id)
	}
	return r, err
}

// ListResults returns newest first. Empty filter fields match everything.
func (s *SQLStore) ListResults(ctx context.Context, f Filter) ([]Result, error) {
	var where []string
	var args []any
	if f.QuizID != "" {
		args = append(args, f.QuizID)
		where = append(where, fmt.Sprintf("quiz_id=$%d", len(args)))
	}
	if f.StudentID != "" {
		args = append(args, f.StudentID)
		where = append(where, fmt.Sprintf("student_id=$%d", len(args)))
	}
	q := `SELECT ` + resultColumns + ` FROM quiz_results`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY submitted_at DESC, id`

	rows, err := s.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Result{}
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.ID, &r.QuizID, &r.StudentID, &r.Score, &r.MaxScore, &r.Percentage, &r.Passed, &r.SubmittedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) ListAnswers(ctx context.Context, resultID string) ([]StudentAnswer, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, result_id, student_id, question_id, answer_id, is_correct, marks_awarded
		FROM student_answers WHERE result_id=$1 ORDER BY id`, resultID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []StudentAnswer{}
	for rows.Next() {
		var a StudentAnswer
		if err := rows.Scan(&a.ID, &a.ResultID, &a.StudentID, &a.QuestionID, &a.AnswerID, &a.IsCorrect, &a.MarksAwarded); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
