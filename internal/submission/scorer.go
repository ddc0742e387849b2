package submission

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-quiz/internal/apperr"
	"github.com/mind-engage/mindengage-quiz/internal/db"
	"github.com/mind-engage/mindengage-quiz/internal/grading"
	"github.com/mind-engage/mindengage-quiz/internal/lock"
	"github.com/mind-engage/mindengage-quiz/internal/metrics"
	"github.com/mind-engage/mindengage-quiz/internal/question"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

// Pair is one submitted (question, answer text).
type Pair struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

type Outcome struct {
	ResultID    string    `json:"result_id"`
	QuizID      string    `json:"quiz_id"`
	StudentID   string    `json:"student_id"`
	Score       int       `json:"score"`
	MaxScore    int       `json:"max_score"`
	Percentage  float64   `json:"percentage"`
	Passed      bool      `json:"passed"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Scorer grades a submission and persists every StudentAnswer plus the
// QuizResult in one transaction, under a (student, quiz) lock.
type Scorer struct {
	db                *sql.DB
	grader            grading.Grader
	locker            lock.Locker
	now               func() time.Time
	log               *slog.Logger
	allowResubmission bool
}

type Option func(*Scorer)

func WithGrader(g grading.Grader) Option    { return func(s *Scorer) { s.grader = g } }
func WithLocker(l lock.Locker) Option       { return func(s *Scorer) { s.locker = l } }
func WithClock(now func() time.Time) Option { return func(s *Scorer) { s.now = now } }
func WithLogger(l *slog.Logger) Option      { return func(s *Scorer) { s.log = l } }

// WithResubmission(false) rejects a second attempt with Conflict.
func WithResubmission(allow bool) Option { return func(s *Scorer) { s.allowResubmission = allow } }

func NewScorer(d *sql.DB, opts ...Option) *Scorer {
	s := &Scorer{
		db:                d,
		now:               time.Now,
		log:               slog.Default(),
		allowResubmission: true,
	}
	for _, o := range opts {
		o(s)
	}
	if s.grader == nil {
		s.grader = grading.NewDefaultGrader()
	}
	if s.locker == nil {
		s.locker = lock.NewLocal()
	}
	return s
}

// Submit fails with SubmissionFailed wrapping the cause; apperr.CauseOf
// recovers the inner kind (UnknownAnswer, UnsupportedType, NotFound, ...).
func (s *Scorer) Submit(ctx context.Context, quizID, studentID string, pairs []Pair) (Outcome, error) {
	began := time.Now()
	out, err := s.submit(ctx, quizID, studentID, pairs)
	elapsed := time.Since(began).Seconds()
	if err != nil {
		metrics.SubmissionOutcome(string(apperr.CauseOf(err)), 0, elapsed)
		s.log.Info("submission rejected", "quiz_id", quizID, "student_id", studentID,
			"cause", string(apperr.CauseOf(err)), "err", err)
		return Outcome{}, apperr.Wrap(apperr.KindSubmissionFailed, err, "submission failed")
	}
	metrics.SubmissionOutcome("ok", out.Percentage, elapsed)
	s.log.Info("submission graded", "quiz_id", quizID, "student_id", studentID,
		"score", out.Score, "max_score", out.MaxScore, "percentage", out.Percentage, "passed", out.Passed)
	return out, nil
}

func (s *Scorer) submit(ctx context.Context, quizID, studentID string, pairs []Pair) (Outcome, error) {
	unlock, err := s.locker.Lock(ctx, lock.SubmissionKey(studentID, quizID))
	if err != nil {
		return Outcome{}, err
	}
	defer unlock()

	now := s.now()
	out := Outcome{ResultID: uuid.NewString(), QuizID: quizID, StudentID: studentID, SubmittedAt: now}

	err = db.WithTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		if _, err := quiz.NewSQLStore(tx).Get(ctx, quizID); err != nil {
			return err
		}
		results := NewSQLStore(tx)
		if !s.allowResubmission {
			n, err := results.CountResults(ctx, quizID, studentID)
			if err != nil {
				return err
			}
			if n > 0 {
				return apperr.New(apperr.KindConflict, "quiz %s already submitted", quizID)
			}
		}

		questions := question.NewSQLStore(tx)
		seen := make(map[string]bool, len(pairs))
		answers := make([]StudentAnswer, 0, len(pairs))
		for _, p := range pairs {
			if seen[p.QuestionID] {
				return apperr.New(apperr.KindInvalidInput, "question %s answered more than once", p.QuestionID)
			}
			seen[p.QuestionID] = true

			q, err := questions.Get(ctx, p.QuestionID)
			if err != nil {
				return err
			}
			if q.QuizID != quizID {
				return apperr.New(apperr.KindInvalidInput, "question %s does not belong to quiz %s", q.ID, quizID)
			}
			if !s.grader.Supports(string(q.Type)) {
				return apperr.New(apperr.KindUnsupportedType, "question %s has type %s which cannot be graded", q.ID, q.Type)
			}
			a, err := questions.FindAnswerByText(ctx, q.ID, question.NormalizeAnswer(q.Type, p.Answer))
			if apperr.KindOf(err) == apperr.KindNotFound {
				return apperr.New(apperr.KindUnknownAnswer, "answer %q is not an option of question %s", p.Answer, q.ID)
			}
			if err != nil {
				return err
			}
			res, err := s.grader.Grade(ctx, grading.Q{Type: string(q.Type), Marks: q.Marks},
				grading.Choice{AnswerID: a.ID, Correct: a.IsCorrect})
			if err != nil {
				return err
			}
			out.Score += res.Awarded
			answers = append(answers, StudentAnswer{
				ID:           uuid.NewString(),
				ResultID:     out.ResultID,
				StudentID:    studentID,
				QuestionID:   q.ID,
				AnswerID:     a.ID,
				IsCorrect:    res.Correct,
				MarksAwarded: res.Awarded,
			})
		}

		maxScore, err := questions.SumMarksForQuiz(ctx, quizID)
		if err != nil {
			return err
		}
		out.MaxScore = maxScore
		out.Percentage = grading.Percentage(out.Score, maxScore)
		out.Passed = grading.Passed(out.Percentage)

		// the result row goes first so answers can reference it
		if err := results.InsertResult(ctx, Result{
			ID:          out.ResultID,
			QuizID:      quizID,
			StudentID:   studentID,
			Score:       out.Score,
			MaxScore:    out.MaxScore,
			Percentage:  out.Percentage,
			Passed:      out.Passed,
			SubmittedAt: now.Unix(),
		}); err != nil {
			return err
		}
		for _, a := range answers {
			if err := results.InsertAnswer(ctx, a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	return out, nil
}

// Results lists attempts matching f.
func (s *Scorer) Results(ctx context.Context, f Filter) ([]Result, error) {
	return NewSQLStore(s.db).ListResults(ctx, f)
}

func (s *Scorer) Result(ctx context.Context, id string) (Result, []StudentAnswer, error) {
	store := NewSQLStore(s.db)
	r, err := store.GetResult(ctx, id)
	if err != nil {
		return Result{}, nil, err
	}
	answers, err := store.ListAnswers(ctx, id)
	if err != nil {
		return Result{}, nil, err
	}
	return r, answers, nil
}
