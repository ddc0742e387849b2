package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	h, err := Open(context.Background(), DriverSQLite, "file:memdb-"+uuid.NewString()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestOpenAppliesSchemaIdempotently(t *testing.T) {
	h := openMemory(t)
	for _, table := range []string{"users", "courses", "quizzes", "questions", "answers", "quiz_results", "student_answers", "notifications", "proctor_events"} {
		var n int
		if err := h.QueryRow(`SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name=$1`, table).Scan(&n); err != nil {
			t.Fatalf("lookup %s: %v", table, err)
		}
		if n != 1 {
			t.Errorf("table %s missing", table)
		}
	}
	if err := ensureSchema(context.Background(), h, DriverSQLite); err != nil {
		t.Fatalf("second ensureSchema: %v", err)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	h := openMemory(t)
	boom := errors.New("boom")
	err := WithTx(context.Background(), h, nil, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO users (id, username, password_hash, role, created_at) VALUES ('u1','u1','x','student',0)`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	var n int
	if err := h.QueryRow(`SELECT COUNT(1) FROM users`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("rows after rollback = %d, want 0", n)
	}
}

func TestUnsupportedDriver(t *testing.T) {
	if _, err := Open(context.Background(), Driver("mysql"), ""); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}
