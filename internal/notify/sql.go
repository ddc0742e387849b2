package notify

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-quiz/internal/apperr"
	"github.com/mind-engage/mindengage-quiz/internal/db"
)

type Notification struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	CourseID  string `json:"course_id"`
	Kind      Kind   `json:"kind"`
	Message   string `json:"message"`
	IsRead    bool   `json:"is_read"`
	CreatedAt int64  `json:"created_at"`
}

// SQLSink stores one notification row per registered student.
type SQLSink struct {
	DB  *sql.DB
	Now func() time.Time
}

func NewSQLSink(d *sql.DB) *SQLSink { return &SQLSink{DB: d, Now: time.Now} }

func (s *SQLSink) NotifyCourseStudents(ctx context.Context, courseID, message string, kind Kind) error {
	return db.WithTx(ctx, s.DB, nil, func(tx *sql.Tx) error {
		students, err := studentIDs(ctx, tx, courseID)
		if err != nil {
			return err
		}
		now := s.Now().Unix()
		for _, sid := range students {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO notifications (id, user_id, course_id, kind, message, is_read, created_at)
				VALUES ($1,$2,$3,$4,$5,$6,$7)`,
				uuid.NewString(), sid, courseID, string(kind), message, false, now); err != nil {
				return fmt.Errorf("insert notification: %w", err)
			}
		}
		return nil
	})
}

func studentIDs(ctx context.Context, q db.Querier, courseID string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT student_id FROM course_students WHERE course_id=$1 ORDER BY student_id`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// List returns a user's notifications, newest first.
func (s *SQLSink) List(ctx context.Context, userID string, unreadOnly bool) ([]Notification, error) {
	q := `SELECT id, user_id, course_id, kind, message, is_read, created_at
	      FROM notifications WHERE user_id=$1`
	if unreadOnly {
		q += ` AND is_read=$2`
	}
	q += ` ORDER BY created_at DESC, id`
	args := []any{userID}
	if unreadOnly {
		args = append(args, false)
	}
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Notification{}
	for rows.Next() {
		var n Notification
		var kind string
		if err := rows.Scan(&n.ID, &n.UserID, &n.CourseID, &kind, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Kind = Kind(kind)
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *SQLSink) MarkRead(ctx context.Context, userID, id string) error {
	res, err := s.DB.ExecContext(ctx, `UPDATE notifications SET is_read=$1 WHERE id=$2 AND user_id=$3`, true, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.KindNotFound, "notification %s not found", id)
	}
	return nil
}
