package proctor

import (
	"context"
	"testing"

	"github.com/mind-engage/mindengage-quiz/internal/apperr"
	"github.com/mind-engage/mindengage-quiz/internal/db/dbtest"
)

func TestLogAndList(t *testing.T) {
	h := dbtest.Open(t)
	dbtest.SeedUser(t, h, "prof", "professor")
	dbtest.SeedUser(t, h, "s1", "student")
	dbtest.SeedUser(t, h, "s2", "student")
	dbtest.SeedCourse(t, h, "c1", "prof")
	dbtest.SeedRegistration(t, h, "c1", "s1")
	dbtest.Exec(t, h, `INSERT INTO quizzes (id, course_id, title, description, quiz_date, start_at, end_at,
		duration_minutes, lockdown, total_marks, created_at, updated_at)
		VALUES ('qz','c1','Quiz','', '2030-05-01', 0, 3600, 60, 0, 0, 0, 0)`)

	ctx := context.Background()
	r := NewEventRepo(h)

	first, err := r.Log(ctx, "s1", "qz", KindTabSwitch, " left tab ")
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Log(ctx, "s1", "qz", KindFaceMismatch, "")
	if err != nil {
		t.Fatal(err)
	}
	if first.ID == 0 || second.ID <= first.ID {
		t.Fatalf("ids = %d, %d; want increasing non-zero", first.ID, second.ID)
	}
	if _, err := r.Log(ctx, "s2", "qz", KindTabSwitch, ""); apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("unregistered student: %v", err)
	}
	if _, err := r.Log(ctx, "s1", "qz", Kind("sneeze"), ""); apperr.KindOf(err) != apperr.KindInvalidInput {
		t.Fatalf("bad kind: %v", err)
	}

	events, err := r.ForQuiz(ctx, "prof", "qz", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 || events[0].ID != first.ID || events[0].Kind != KindTabSwitch || events[0].Detail != "left tab" {
		t.Fatalf("events = %+v", events)
	}
	if _, err := r.ForQuiz(ctx, "s1", "qz", ""); apperr.KindOf(err) != apperr.KindNotOwner {
		t.Fatalf("student listing: %v", err)
	}
	if only, _ := r.ForQuiz(ctx, "prof", "qz", "s2"); len(only) != 0 {
		t.Fatalf("filter by student = %+v", only)
	}
}
