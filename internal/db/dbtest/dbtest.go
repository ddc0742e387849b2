// Package dbtest opens throwaway in-memory SQLite databases with the full
// schema applied, plus small seeding helpers shared by package tests.
package dbtest

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-quiz/internal/db"
)

func Open(t *testing.T) *sql.DB {
	t.Helper()
	dsn := "file:memdb-" + uuid.NewString() + "?mode=memory&cache=shared"
	h, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func Exec(t *testing.T, h *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := h.Exec(query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

func SeedUser(t *testing.T, h *sql.DB, id, role string) {
	t.Helper()
	Exec(t, h, `INSERT INTO users (id, username, password_hash, role, created_at) VALUES ($1,$2,$3,$4,$5)`,
		id, id, "x", role, time.Now().Unix())
}

func SeedCourse(t *testing.T, h *sql.DB, id, professorID string) {
	t.Helper()
	Exec(t, h, `INSERT INTO courses (id, code, name, professor_id, created_at) VALUES ($1,$2,$3,$4,$5)`,
		id, id, "Course "+id, professorID, time.Now().Unix())
}

func SeedRegistration(t *testing.T, h *sql.DB, courseID, studentID string) {
	t.Helper()
	Exec(t, h, `INSERT INTO course_students (course_id, student_id, registered_at) VALUES ($1,$2,$3)`,
		courseID, studentID, time.Now().Unix())
}
