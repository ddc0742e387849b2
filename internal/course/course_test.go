package course

import (
	"context"
	"testing"

	"github.com/mind-engage/mindengage-quiz/internal/apperr"
	"github.com/mind-engage/mindengage-quiz/internal/db/dbtest"
)

func TestCourseOwnershipAndRegistration(t *testing.T) {
	h := dbtest.Open(t)
	dbtest.SeedUser(t, h, "prof", "professor")
	dbtest.SeedUser(t, h, "other", "professor")
	dbtest.SeedUser(t, h, "s1", "student")
	ctx := context.Background()
	s := NewSQLStore(h)

	c, err := s.Create(ctx, "CS101", "Intro", "prof")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.RequireOwner(ctx, c.ID, "prof"); err != nil {
		t.Fatalf("owner rejected: %v", err)
	}
	if _, err := s.RequireOwner(ctx, c.ID, "other"); apperr.KindOf(err) != apperr.KindNotOwner {
		t.Fatalf("non-owner: %v", err)
	}
	if _, err := s.RequireOwner(ctx, "missing", "prof"); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("missing course: %v", err)
	}

	if err := s.Register(ctx, c.ID, "s1"); err != nil {
		t.Fatal(err)
	}
	if err := s.Register(ctx, c.ID, "s1"); apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("double registration: %v", err)
	}

	mine, err := s.ListForStudent(ctx, "s1", Page{})
	if err != nil || len(mine) != 1 || mine[0].ID != c.ID {
		t.Fatalf("ListForStudent = %+v, %v", mine, err)
	}
	if got, _ := s.ListForProfessor(ctx, "other", Page{}); len(got) != 0 {
		t.Fatalf("other professor sees %d courses", len(got))
	}
	students, err := s.Students(ctx, c.ID)
	if err != nil || len(students) != 1 || students[0].ID != "s1" {
		t.Fatalf("Students = %+v, %v", students, err)
	}
}

func TestCreateRequiresCodeAndName(t *testing.T) {
	h := dbtest.Open(t)
	dbtest.SeedUser(t, h, "prof", "professor")
	if _, err := NewSQLStore(h).Create(context.Background(), " ", "x", "prof"); apperr.KindOf(err) != apperr.KindInvalidInput {
		t.Fatalf("err = %v", err)
	}
}
