package user

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mindengage-quiz/internal/apperr"
	"github.com/mind-engage/mindengage-quiz/internal/db/dbtest"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	s := NewStore(dbtest.Open(t))
	ctx := context.Background()

	u, err := s.Register(ctx, RegisterInput{Username: "alice", Password: "pw", Role: "Student", FaceImageKey: "faces/a.png"})
	if err != nil {
		t.Fatal(err)
	}
	if u.Role != RoleStudent || u.PasswordHash == "pw" {
		t.Fatalf("user = %+v", u)
	}
	if _, err := s.Register(ctx, RegisterInput{Username: "alice", Password: "x", Role: "student"}); apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("duplicate username: %v", err)
	}
	if _, err := s.Register(ctx, RegisterInput{Username: "eve", Password: "x", Role: "admin"}); apperr.KindOf(err) != apperr.KindInvalidInput {
		t.Fatalf("self-registered admin: %v", err)
	}

	got, err := s.Authenticate(ctx, "alice", "pw")
	if err != nil || got.ID != u.ID || got.FaceImageKey != "faces/a.png" {
		t.Fatalf("Authenticate = %+v, %v", got, err)
	}
	if _, err := s.Authenticate(ctx, "alice", "nope"); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("bad password: %v", err)
	}
	if _, err := s.Authenticate(ctx, "bob", "pw"); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("unknown user: %v", err)
	}
}

func TestLastAdminGuard(t *testing.T) {
	s := NewStore(dbtest.Open(t))
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("root"), bcrypt.MinCost)

	created, err := s.EnsureAdmin(ctx, "admin", string(hash))
	if err != nil || !created {
		t.Fatalf("EnsureAdmin = %v, %v", created, err)
	}
	if again, _ := s.EnsureAdmin(ctx, "admin", string(hash)); again {
		t.Fatal("admin created twice")
	}
	admin, _ := s.FindByUsername(ctx, "admin")

	if err := s.UpdateRole(ctx, admin.ID, RoleStudent); apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("demoting last admin: %v", err)
	}

	p, _ := s.Register(ctx, RegisterInput{Username: "prof", Password: "pw", Role: RoleProfessor})
	if err := s.UpdateRole(ctx, p.ID, RoleAdmin); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateRole(ctx, admin.ID, RoleProfessor); err != nil {
		t.Fatalf("demotion with a second admin: %v", err)
	}
	if err := s.UpdateRole(ctx, p.ID, "root"); apperr.KindOf(err) != apperr.KindInvalidInput {
		t.Fatalf("invalid role: %v", err)
	}

	admins, err := s.List(ctx, RoleAdmin, 0, 0)
	if err != nil || len(admins) != 1 || admins[0].Username != "prof" {
		t.Fatalf("admins = %+v, %v", admins, err)
	}
}

func TestChangePassword(t *testing.T) {
	s := NewStore(dbtest.Open(t))
	ctx := context.Background()
	u, err := s.Register(ctx, RegisterInput{Username: "carol", Password: "first-pass", Role: RoleProfessor})
	if err != nil {
		t.Fatal(err)
	}

	if err := s.ChangePassword(ctx, u.ID, "wrong-pass", "second-pass"); apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("wrong old password: %v", err)
	}
	if err := s.ChangePassword(ctx, u.ID, "first-pass", "short"); apperr.KindOf(err) != apperr.KindInvalidInput {
		t.Fatalf("short new password: %v", err)
	}
	if err := s.ChangePassword(ctx, u.ID, "first-pass", "second-pass"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Authenticate(ctx, "carol", "second-pass"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if _, err := s.Authenticate(ctx, "carol", "first-pass"); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("old password still accepted: %v", err)
	}
}
