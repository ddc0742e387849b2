package question

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-quiz/internal/apperr"
	"github.com/mind-engage/mindengage-quiz/internal/db"
)

type SQLStore struct {
	q db.Querier
}

func NewSQLStore(q db.Querier) *SQLStore { return &SQLStore{q: q} }

// Insert writes the question and its answers, assigning ids.
func (s *SQLStore) Insert(ctx context.Context, q *Question) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	_, err := s.q.ExecContext(ctx, `INSERT INTO questions (id, quiz_id, content, type, marks, image_key, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		q.ID, q.QuizID, q.Content, string(q.Type), q.Marks, q.ImageKey, q.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return s.insertAnswers(ctx, q)
}

// Update rewrites the question row and replaces its answer set. Recorded
// student answers keep their answer ids.
func (s *SQLStore) Update(ctx context.Context, q *Question) error {
	res, err := s.q.ExecContext(ctx, `UPDATE questions SET content=$1, type=$2, marks=$3, image_key=$4 WHERE id=$5`,
		q.Content, string(q.Type), q.Marks, q.ImageKey, q.ID)
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.KindNotFound, "question %s not found", q.ID)
	}
	if _, err := s.q.ExecContext(ctx, `DELETE FROM answers WHERE question_id=$1`, q.ID); err != nil {
		return fmt.Errorf("clear answers: %w", err)
	}
	return s.insertAnswers(ctx, q)
}

func (s *SQLStore) insertAnswers(ctx context.Context, q *Question) error {
	for i := range q.Answers {
		a := &q.Answers[i]
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		a.QuestionID = q.ID
		if _, err := s.q.ExecContext(ctx, `INSERT INTO answers (id, question_id, text, is_correct, position) VALUES ($1,$2,$3,$4,$5)`,
			a.ID, a.QuestionID, a.Text, a.IsCorrect, i); err != nil {
			return fmt.Errorf("insert answer: %w", err)
		}
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM questions WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.KindNotFound, "question %s not found", id)
	}
	return nil
}

// Get loads a question with its answers, or NotFound.
func (s *SQLStore) Get(ctx context.Context, id string) (Question, error) {
	var q Question
	var typ string
	err := s.q.QueryRowContext(ctx, `SELECT id, quiz_id, content, type, marks, image_key, created_at FROM questions WHERE id=$1`, id).
		Scan(&q.ID, &q.QuizID, &q.Content, &typ, &q.Marks, &q.ImageKey, &q.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Question{}, apperr.New(apperr.KindNotFound, "question %s not found", id)
	}
	if err != nil {
		return Question{}, err
	}
	q.Type = Type(typ)
	if q.Answers, err = s.answers(ctx, q.ID); err != nil {
		return Question{}, err
	}
	return q, nil
}

func (s *SQLStore) ListByQuiz(ctx context.Context, quizID string) ([]Question, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, quiz_id, content, type, marks, image_key, created_at
		FROM questions WHERE quiz_id=$1 ORDER BY created_at, id`, quizID)
	if err != nil {
		return nil, err
	}
	out := []Question{}
	for rows.Next() {
		var q Question
		var typ string
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Content, &typ, &q.Marks, &q.ImageKey, &q.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		q.Type = Type(typ)
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	// release the connection before the per-question queries
	if err := rows.Close(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Answers, err = s.answers(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *SQLStore) answers(ctx context.Context, questionID string) ([]Answer, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, question_id, text, is_correct FROM answers WHERE question_id=$1 ORDER BY position, id`, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Answer{}
	for rows.Next() {
		var a Answer
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.Text, &a.IsCorrect); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// FindAnswerByText looks the answer up by text within one question only.
func (s *SQLStore) FindAnswerByText(ctx context.Context, questionID, text string) (Answer, error) {
	var a Answer
	err := s.q.QueryRowContext(ctx, `SELECT id, question_id, text, is_correct FROM answers WHERE question_id=$1 AND text=$2`,
		questionID, text).Scan(&a.ID, &a.QuestionID, &a.Text, &a.IsCorrect)
	if errors.Is(err, sql.ErrNoRows) {
		return Answer{}, apperr.New(apperr.KindNotFound, "answer %q not found for question %s", text, questionID)
	}
	return a, err
}

// AnswerTextExists checks the text against every answer of every question.
// Request validation uses it before the scorer's per-question lookup.
func (s *SQLStore) AnswerTextExists(ctx context.Context, text string) (bool, error) {
	var n int
	err := s.q.QueryRowContext(ctx, `SELECT COUNT(1) FROM answers WHERE text=$1`, text).Scan(&n)
	return n > 0, err
}

func (s *SQLStore) SumMarksForQuiz(ctx context.Context, quizID string) (int, error) {
	var total int
	err := s.q.QueryRowContext(ctx, `SELECT COALESCE(SUM(marks), 0) FROM questions WHERE quiz_id=$1`, quizID).Scan(&total)
	return total, err
}
