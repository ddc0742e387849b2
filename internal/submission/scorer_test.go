package submission

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/mind-engage/mindengage-quiz/internal/apperr"
	"github.com/mind-engage/mindengage-quiz/internal/db/dbtest"
	"github.com/mind-engage/mindengage-quiz/internal/logging"
	"github.com/mind-engage/mindengage-quiz/internal/question"
)

type world struct {
	db     *sql.DB
	scorer *Scorer
}

func seedQuiz(t *testing.T, h *sql.DB, id string) {
	t.Helper()
	dbtest.Exec(t, h, `INSERT INTO quizzes (id, course_id, title, description, quiz_date, start_at, end_at,
		duration_minutes, lockdown, total_marks, created_at, updated_at)
		VALUES ($1,'c1','Quiz','', '2030-05-01', 0, 3600, 60, 0, 0, 0, 0)`, id)
}

func seedQuestion(t *testing.T, h *sql.DB, id, quizID, typ string, marks int, answers map[string]bool) {
	t.Helper()
	dbtest.Exec(t, h, `INSERT INTO questions (id, quiz_id, content, type, marks, created_at) VALUES ($1,$2,$3,$4,$5,0)`,
		id, quizID, "content "+id, typ, marks)
	i := 0
	for text, correct := range answers {
		dbtest.Exec(t, h, `INSERT INTO answers (id, question_id, text, is_correct, position) VALUES ($1,$2,$3,$4,$5)`,
			id+"-"+text, id, text, correct, i)
		i++
	}
}

// newWorld seeds quiz "qz" with Question1 (2 marks, "Paris") and
// Question2 (3 marks, true/false with "true" correct).
func newWorld(t *testing.T, opts ...Option) *world {
	t.Helper()
	h := dbtest.Open(t)
	dbtest.SeedUser(t, h, "prof", "professor")
	dbtest.SeedUser(t, h, "stu", "student")
	dbtest.SeedCourse(t, h, "c1", "prof")
	seedQuiz(t, h, "qz")
	seedQuestion(t, h, "q1", "qz", "multiple_choice", 2, map[string]bool{"Paris": true, "Rome": false, "Berlin": false})
	seedQuestion(t, h, "q2", "qz", "true_false", 3, map[string]bool{"true": true, "false": false})

	opts = append([]Option{
		WithLogger(logging.Discard()),
		WithClock(func() time.Time { return time.Date(2030, 5, 1, 10, 30, 0, 0, time.UTC) }),
	}, opts...)
	return &world{db: h, scorer: NewScorer(h, opts...)}
}

func (w *world) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	if err := w.db.QueryRow(`SELECT COUNT(1) FROM ` + table).Scan(&n); err != nil {
		t.Fatal(err)
	}
	return n
}

func TestScoringScenario(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	out, err := w.scorer.Submit(ctx, "qz", "stu", []Pair{{"q1", "Paris"}, {"q2", "false"}})
	if err != nil {
		t.Fatal(err)
	}
	if out.Score != 2 || out.MaxScore != 5 || out.Percentage != 40.00 || out.Passed {
		t.Fatalf("partial outcome = %+v", out)
	}

	out, err = w.scorer.Submit(ctx, "qz", "stu", []Pair{{"q1", "Paris"}, {"q2", "true"}})
	if err != nil {
		t.Fatal(err)
	}
	if out.Score != 5 || out.MaxScore != 5 || out.Percentage != 100.00 || !out.Passed {
		t.Fatalf("full outcome = %+v", out)
	}

	r, answers, err := w.scorer.Result(ctx, out.ResultID)
	if err != nil {
		t.Fatal(err)
	}
	if r.Score != 5 || !r.Passed || len(answers) != 2 {
		t.Fatalf("stored result = %+v answers=%d", r, len(answers))
	}
	for _, a := range answers {
		if !a.IsCorrect || a.ResultID != out.ResultID {
			t.Fatalf("stored answer = %+v", a)
		}
	}
}

func TestResultSurvivesQuestionDelete(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	out, err := w.scorer.Submit(ctx, "qz", "stu", []Pair{{"q1", "Paris"}, {"q2", "true"}})
	if err != nil {
		t.Fatal(err)
	}
	_, before, err := w.scorer.Result(ctx, out.ResultID)
	if err != nil {
		t.Fatal(err)
	}

	if err := question.NewService(w.db).Delete(ctx, "prof", "q2"); err != nil {
		t.Fatal(err)
	}

	r, after, err := w.scorer.Result(ctx, out.ResultID)
	if err != nil {
		t.Fatal(err)
	}
	if len(after) != len(before) {
		t.Fatalf("answers after delete = %d, want %d", len(after), len(before))
	}
	sum := 0
	for i, a := range after {
		if a != before[i] {
			t.Fatalf("answer %d changed: %+v -> %+v", i, before[i], a)
		}
		sum += a.MarksAwarded
	}
	if r.Score != 5 || r.MaxScore != 5 || sum != r.Score {
		t.Fatalf("result = %+v, marks awarded sum = %d", r, sum)
	}
}

func TestWrongAnswersAreRecorded(t *testing.T) {
	w := newWorld(t)
	out, err := w.scorer.Submit(context.Background(), "qz", "stu", []Pair{{"q1", "Rome"}, {"q2", "FALSE"}})
	if err != nil {
		t.Fatal(err)
	}
	if out.Score != 0 || out.Percentage != 0 || out.Passed {
		t.Fatalf("outcome = %+v", out)
	}
	if n := w.count(t, "student_answers"); n != 2 {
		t.Fatalf("student_answers = %d, want 2", n)
	}
}

func TestMaxScoreComesFromQuizNotAnswers(t *testing.T) {
	w := newWorld(t)
	// only one question answered; denominator is still the whole quiz
	out, err := w.scorer.Submit(context.Background(), "qz", "stu", []Pair{{"q2", "true"}})
	if err != nil {
		t.Fatal(err)
	}
	if out.Score != 3 || out.MaxScore != 5 || out.Percentage != 60 || !out.Passed {
		t.Fatalf("outcome = %+v", out)
	}

	out, err = w.scorer.Submit(context.Background(), "qz", "stu", nil)
	if err != nil {
		t.Fatal(err)
	}
	if out.Score != 0 || out.MaxScore != 5 || out.Passed {
		t.Fatalf("empty submission = %+v", out)
	}
}

func TestZeroMaxScore(t *testing.T) {
	w := newWorld(t)
	seedQuiz(t, w.db, "empty")
	out, err := w.scorer.Submit(context.Background(), "empty", "stu", nil)
	if err != nil {
		t.Fatal(err)
	}
	if out.Score != 0 || out.MaxScore != 0 || out.Percentage != 0 || out.Passed {
		t.Fatalf("outcome = %+v", out)
	}
	if n := w.count(t, "student_answers"); n != 0 {
		t.Fatalf("student_answers = %d", n)
	}
}

func TestFailuresRollBackEverything(t *testing.T) {
	w := newWorld(t)
	seedQuiz(t, w.db, "other")
	seedQuestion(t, w.db, "q3", "qz", "short_answer", 1, map[string]bool{"42": true})
	seedQuestion(t, w.db, "x1", "other", "true_false", 1, map[string]bool{"true": true, "false": false})

	cases := []struct {
		name  string
		quiz  string
		pairs []Pair
		cause apperr.Kind
	}{
		{"unknown answer after a valid one", "qz", []Pair{{"q1", "Paris"}, {"q2", "maybe"}}, apperr.KindUnknownAnswer},
		{"answer of another question", "qz", []Pair{{"q2", "Paris"}}, apperr.KindUnknownAnswer},
		{"short answer", "qz", []Pair{{"q1", "Paris"}, {"q3", "42"}}, apperr.KindUnsupportedType},
		{"missing question", "qz", []Pair{{"q1", "Paris"}, {"nope", "true"}}, apperr.KindNotFound},
		{"question from another quiz", "qz", []Pair{{"x1", "true"}}, apperr.KindInvalidInput},
		{"duplicate question", "qz", []Pair{{"q1", "Paris"}, {"q1", "Paris"}}, apperr.KindInvalidInput},
		{"missing quiz", "ghost", nil, apperr.KindNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := w.scorer.Submit(context.Background(), tc.quiz, "stu", tc.pairs)
			if apperr.KindOf(err) != apperr.KindSubmissionFailed {
				t.Fatalf("outer kind = %s (%v)", apperr.KindOf(err), err)
			}
			if apperr.CauseOf(err) != tc.cause {
				t.Fatalf("cause = %s, want %s (%v)", apperr.CauseOf(err), tc.cause, err)
			}
			if n := w.count(t, "student_answers"); n != 0 {
				t.Fatalf("student_answers left behind: %d", n)
			}
			if n := w.count(t, "quiz_results"); n != 0 {
				t.Fatalf("quiz_results left behind: %d", n)
			}
		})
	}
}

func TestResubmissionCreatesSecondResult(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	pairs := []Pair{{"q1", "Paris"}, {"q2", "true"}}
	first, err := w.scorer.Submit(ctx, "qz", "stu", pairs)
	if err != nil {
		t.Fatal(err)
	}
	second, err := w.scorer.Submit(ctx, "qz", "stu", pairs)
	if err != nil {
		t.Fatal(err)
	}
	if first.ResultID == second.ResultID {
		t.Fatal("result ids collide")
	}
	results, err := w.scorer.Results(ctx, Filter{QuizID: "qz", StudentID: "stu"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
}

func TestResubmissionCanBeRejected(t *testing.T) {
	w := newWorld(t, WithResubmission(false))
	ctx := context.Background()
	if _, err := w.scorer.Submit(ctx, "qz", "stu", []Pair{{"q1", "Paris"}}); err != nil {
		t.Fatal(err)
	}
	_, err := w.scorer.Submit(ctx, "qz", "stu", []Pair{{"q1", "Paris"}})
	if apperr.CauseOf(err) != apperr.KindConflict {
		t.Fatalf("err = %v, want conflict cause", err)
	}
	if n := w.count(t, "quiz_results"); n != 1 {
		t.Fatalf("quiz_results = %d", n)
	}
}
