package question

import (
	"context"
	"database/sql"
	"time"

	"github.com/mind-engage/mindengage-quiz/internal/apperr"
	"github.com/mind-engage/mindengage-quiz/internal/course"
	"github.com/mind-engage/mindengage-quiz/internal/db"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

// Service is question authoring. Every mutation recomputes the quiz's
// total marks in the same transaction.
type Service struct {
	db *sql.DB
}

func NewService(d *sql.DB) *Service { return &Service{db: d} }

func (s *Service) Create(ctx context.Context, actorID, quizID string, in Input) (Question, error) {
	if err := in.Validate(); err != nil {
		return Question{}, err
	}
	q := Question{
		QuizID:    quizID,
		Content:   in.Content,
		Type:      in.Type,
		Marks:     in.Marks,
		ImageKey:  in.ImageKey,
		CreatedAt: time.Now().Unix(),
		Answers:   toAnswers(in.Answers),
	}
	err := db.WithTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		if err := requireQuizOwner(ctx, tx, quizID, actorID); err != nil {
			return err
		}
		if err := NewSQLStore(tx).Insert(ctx, &q); err != nil {
			return err
		}
		_, err := quiz.NewSQLStore(tx).RecomputeTotalMarks(ctx, quizID)
		return err
	})
	if err != nil {
		return Question{}, err
	}
	return q, nil
}

func (s *Service) Update(ctx context.Context, actorID, questionID string, in Input) (Question, error) {
	if err := in.Validate(); err != nil {
		return Question{}, err
	}
	var q Question
	err := db.WithTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		store := NewSQLStore(tx)
		cur, err := store.Get(ctx, questionID)
		if err != nil {
			return err
		}
		if err := requireQuizOwner(ctx, tx, cur.QuizID, actorID); err != nil {
			return err
		}
		q = cur
		q.Content = in.Content
		q.Type = in.Type
		q.Marks = in.Marks
		if in.ImageKey != "" {
			q.ImageKey = in.ImageKey
		}
		q.Answers = toAnswers(in.Answers)
		if err := store.Update(ctx, &q); err != nil {
			return err
		}
		_, err = quiz.NewSQLStore(tx).RecomputeTotalMarks(ctx, q.QuizID)
		return err
	})
	if err != nil {
		return Question{}, err
	}
	return q, nil
}

func (s *Service) Delete(ctx context.Context, actorID, questionID string) error {
	return db.WithTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		store := NewSQLStore(tx)
		cur, err := store.Get(ctx, questionID)
		if err != nil {
			return err
		}
		if err := requireQuizOwner(ctx, tx, cur.QuizID, actorID); err != nil {
			return err
		}
		if err := store.Delete(ctx, questionID); err != nil {
			return err
		}
		_, err = quiz.NewSQLStore(tx).RecomputeTotalMarks(ctx, cur.QuizID)
		return err
	})
}

func (s *Service) List(ctx context.Context, quizID string) ([]Question, error) {
	if _, err := quiz.NewSQLStore(s.db).Get(ctx, quizID); err != nil {
		return nil, err
	}
	return NewSQLStore(s.db).ListByQuiz(ctx, quizID)
}

// AnswerTextExists is the coarse pre-check request validation runs.
func (s *Service) AnswerTextExists(ctx context.Context, text string) (bool, error) {
	return NewSQLStore(s.db).AnswerTextExists(ctx, text)
}

func requireQuizOwner(ctx context.Context, q db.Querier, quizID, actorID string) error {
	qz, err := quiz.NewSQLStore(q).Get(ctx, quizID)
	if err != nil {
		return err
	}
	if _, err := course.NewSQLStore(q).RequireOwner(ctx, qz.CourseID, actorID); err != nil {
		if apperr.KindOf(err) == apperr.KindNotOwner {
			return apperr.New(apperr.KindNotOwner, "quiz %s belongs to a course you do not own", quizID)
		}
		return err
	}
	return nil
}

func toAnswers(in []AnswerInput) []Answer {
	out := make([]Answer, 0, len(in))
	for _, a := range in {
		out = append(out, Answer{Text: a.Text, IsCorrect: a.IsCorrect})
	}
	return out
}
