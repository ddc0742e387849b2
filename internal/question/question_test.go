package question

import (
	"context"
	"database/sql"
	"testing"

	"github.com/mind-engage/mindengage-quiz/internal/apperr"
	"github.com/mind-engage/mindengage-quiz/internal/db/dbtest"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

func TestValidate(t *testing.T) {
	tf := func(correct string) []AnswerInput {
		return []AnswerInput{{Text: "True", IsCorrect: correct == "true"}, {Text: " false ", IsCorrect: correct == "false"}}
	}
	cases := []struct {
		name string
		in   Input
		ok   bool
	}{
		{"mc ok", Input{Content: "Capital?", Type: TypeMultipleChoice, Marks: 2,
			Answers: []AnswerInput{{Text: "Paris", IsCorrect: true}, {Text: "Rome"}}}, true},
		{"mc two correct", Input{Content: "x", Type: TypeMultipleChoice, Marks: 1,
			Answers: []AnswerInput{{Text: "a", IsCorrect: true}, {Text: "b", IsCorrect: true}}}, false},
		{"mc one answer", Input{Content: "x", Type: TypeMultipleChoice, Marks: 1,
			Answers: []AnswerInput{{Text: "a", IsCorrect: true}}}, false},
		{"tf ok", Input{Content: "x", Type: TypeTrueFalse, Marks: 3, Answers: tf("true")}, true},
		{"tf none correct", Input{Content: "x", Type: TypeTrueFalse, Marks: 3, Answers: tf("")}, false},
		{"tf wrong texts", Input{Content: "x", Type: TypeTrueFalse, Marks: 3,
			Answers: []AnswerInput{{Text: "yes", IsCorrect: true}, {Text: "no"}}}, false},
		{"short ok", Input{Content: "x", Type: TypeShortAnswer, Marks: 1, Answers: []AnswerInput{{Text: "42", IsCorrect: true}}}, true},
		{"zero marks", Input{Content: "x", Type: TypeShortAnswer, Marks: 0, Answers: []AnswerInput{{Text: "42"}}}, false},
		{"bad type", Input{Content: "x", Type: "essay", Marks: 1}, false},
		{"duplicate", Input{Content: "x", Type: TypeMultipleChoice, Marks: 1,
			Answers: []AnswerInput{{Text: "a", IsCorrect: true}, {Text: "a "}}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && apperr.KindOf(err) != apperr.KindInvalidInput {
				t.Fatalf("err = %v, want invalid_input", err)
			}
		})
	}
}

func TestValidateNormalizesTrueFalse(t *testing.T) {
	in := Input{Content: "x", Type: TypeTrueFalse, Marks: 1,
		Answers: []AnswerInput{{Text: " TRUE", IsCorrect: true}, {Text: "False"}}}
	if err := in.Validate(); err != nil {
		t.Fatal(err)
	}
	if in.Answers[0].Text != "true" || in.Answers[1].Text != "false" {
		t.Fatalf("answers = %+v", in.Answers)
	}
}

func seedQuiz(t *testing.T, h *sql.DB, id, courseID string) {
	t.Helper()
	dbtest.Exec(t, h, `INSERT INTO quizzes (id, course_id, title, description, quiz_date, start_at, end_at,
		duration_minutes, lockdown, total_marks, created_at, updated_at)
		VALUES ($1,$2,'Quiz','', '2030-05-01', 0, 3600, 60, 0, 0, 0, 0)`, id, courseID)
}

func totalMarks(t *testing.T, h *sql.DB, quizID string) int {
	t.Helper()
	q, err := quiz.NewSQLStore(h).Get(context.Background(), quizID)
	if err != nil {
		t.Fatal(err)
	}
	return q.TotalMarks
}

func TestServiceRecomputesTotalMarks(t *testing.T) {
	h := dbtest.Open(t)
	dbtest.SeedUser(t, h, "prof", "professor")
	dbtest.SeedUser(t, h, "other", "professor")
	dbtest.SeedCourse(t, h, "c1", "prof")
	seedQuiz(t, h, "qz", "c1")
	ctx := context.Background()
	svc := NewService(h)

	q1, err := svc.Create(ctx, "prof", "qz", Input{Content: "Capital?", Type: TypeMultipleChoice, Marks: 2,
		Answers: []AnswerInput{{Text: "Paris", IsCorrect: true}, {Text: "Rome"}}})
	if err != nil {
		t.Fatal(err)
	}
	if got := totalMarks(t, h, "qz"); got != 2 {
		t.Fatalf("total after create = %d", got)
	}
	q2, err := svc.Create(ctx, "prof", "qz", Input{Content: "Sky is blue", Type: TypeTrueFalse, Marks: 3,
		Answers: []AnswerInput{{Text: "true", IsCorrect: true}, {Text: "false"}}})
	if err != nil {
		t.Fatal(err)
	}
	if got := totalMarks(t, h, "qz"); got != 5 {
		t.Fatalf("total after second create = %d", got)
	}

	if _, err := svc.Update(ctx, "prof", q2.ID, Input{Content: "Sky is blue", Type: TypeTrueFalse, Marks: 4,
		Answers: []AnswerInput{{Text: "true", IsCorrect: true}, {Text: "false"}}}); err != nil {
		t.Fatal(err)
	}
	if got := totalMarks(t, h, "qz"); got != 6 {
		t.Fatalf("total after update = %d", got)
	}

	if err := svc.Delete(ctx, "other", q1.ID); apperr.KindOf(err) != apperr.KindNotOwner {
		t.Fatalf("delete by non-owner: %v", err)
	}
	if err := svc.Delete(ctx, "prof", q1.ID); err != nil {
		t.Fatal(err)
	}
	if got := totalMarks(t, h, "qz"); got != 4 {
		t.Fatalf("total after delete = %d", got)
	}

	list, err := svc.List(ctx, "qz")
	if err != nil || len(list) != 1 || len(list[0].Answers) != 2 {
		t.Fatalf("List = %+v, %v", list, err)
	}
	pub := list[0].Public()
	if len(pub.Answers) != 2 || pub.Answers[0].Text != "true" {
		t.Fatalf("public view = %+v", pub)
	}
}

func TestAnswerLookupIsScopedToQuestion(t *testing.T) {
	h := dbtest.Open(t)
	dbtest.SeedUser(t, h, "prof", "professor")
	dbtest.SeedCourse(t, h, "c1", "prof")
	seedQuiz(t, h, "qz", "c1")
	ctx := context.Background()
	svc := NewService(h)

	q1, _ := svc.Create(ctx, "prof", "qz", Input{Content: "Capital?", Type: TypeMultipleChoice, Marks: 2,
		Answers: []AnswerInput{{Text: "Paris", IsCorrect: true}, {Text: "Rome"}}})
	q2, _ := svc.Create(ctx, "prof", "qz", Input{Content: "Sky is blue", Type: TypeTrueFalse, Marks: 3,
		Answers: []AnswerInput{{Text: "true", IsCorrect: true}, {Text: "false"}}})

	store := NewSQLStore(h)
	if ok, _ := store.AnswerTextExists(ctx, "Paris"); !ok {
		t.Fatal("global existence check failed")
	}
	if _, err := store.FindAnswerByText(ctx, q2.ID, "Paris"); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("cross-question lookup: %v", err)
	}
	a, err := store.FindAnswerByText(ctx, q1.ID, "Paris")
	if err != nil || !a.IsCorrect {
		t.Fatalf("FindAnswerByText = %+v, %v", a, err)
	}
	if sum, _ := store.SumMarksForQuiz(ctx, "qz"); sum != 5 {
		t.Fatalf("SumMarksForQuiz = %d", sum)
	}
}
