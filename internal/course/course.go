package course

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-quiz/internal/apperr"
	"github.com/mind-engage/mindengage-quiz/internal/db"
)

type Course struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	ProfessorID string `json:"professor_id"`
	CreatedAt   int64  `json:"created_at"`
}

type Page struct {
	Limit  int
	Offset int
}

func (p Page) norm() Page {
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Limit > 200 {
		p.Limit = 200
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// SQLStore works over a *sql.DB or an open *sql.Tx.
type SQLStore struct {
	q db.Querier
}

func NewSQLStore(q db.Querier) *SQLStore { return &SQLStore{q: q} }

func (s *SQLStore) Create(ctx context.Context, code, name, professorID string) (Course, error) {
	c := Course{
		ID:          uuid.NewString(),
		Code:        strings.TrimSpace(code),
		Name:        strings.TrimSpace(name),
		ProfessorID: professorID,
		CreatedAt:   time.Now().Unix(),
	}
	if c.Code == "" || c.Name == "" {
		return Course{}, apperr.New(apperr.KindInvalidInput, "course code and name are required")
	}
	_, err := s.q.ExecContext(ctx, `INSERT INTO courses (id, code, name, professor_id, created_at) VALUES ($1,$2,$3,$4,$5)`,
		c.ID, c.Code, c.Name, c.ProfessorID, c.CreatedAt)
	if err != nil {
		return Course{}, fmt.Errorf("insert course: %w", err)
	}
	return c, nil
}

// Find returns NotFound when the course does not exist.
func (s *SQLStore) Find(ctx context.Context, id string) (Course, error) {
	var c Course
	err := s.q.QueryRowContext(ctx, `SELECT id, code, name, professor_id, created_at FROM courses WHERE id=$1`, id).
		Scan(&c.ID, &c.Code, &c.Name, &c.ProfessorID, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Course{}, apperr.New(apperr.KindNotFound, "course %s not found", id)
	}
	if err != nil {
		return Course{}, err
	}
	return c, nil
}

// RequireOwner loads the course and fails with NotOwner unless actorID is
// its professor.
func (s *SQLStore) RequireOwner(ctx context.Context, courseID, actorID string) (Course, error) {
	c, err := s.Find(ctx, courseID)
	if err != nil {
		return Course{}, err
	}
	if c.ProfessorID != actorID {
		return Course{}, apperr.New(apperr.KindNotOwner, "course %s is not owned by %s", courseID, actorID)
	}
	return c, nil
}

func (s *SQLStore) ListAll(ctx context.Context, p Page) ([]Course, error) {
	p = p.norm()
	return s.list(ctx, `SELECT id, code, name, professor_id, created_at FROM courses
		ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`, p.Limit, p.Offset)
}

func (s *SQLStore) ListForProfessor(ctx context.Context, professorID string, p Page) ([]Course, error) {
	p = p.norm()
	return s.list(ctx, `SELECT id, code, name, professor_id, created_at FROM courses
		WHERE professor_id=$1 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`, professorID, p.Limit, p.Offset)
}

func (s *SQLStore) ListForStudent(ctx context.Context, studentID string, p Page) ([]Course, error) {
	p = p.norm()
	return s.list(ctx, `SELECT c.id, c.code, c.name, c.professor_id, c.created_at
		FROM courses c JOIN course_students cs ON cs.course_id=c.id
		WHERE cs.student_id=$1 ORDER BY c.created_at DESC, c.id LIMIT $2 OFFSET $3`, studentID, p.Limit, p.Offset)
}

func (s *SQLStore) list(ctx context.Context, query string, args ...any) ([]Course, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Course{}
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.ProfessorID, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Register enrolls a student. Registering twice is a Conflict.
func (s *SQLStore) Register(ctx context.Context, courseID, studentID string) error {
	if _, err := s.Find(ctx, courseID); err != nil {
		return err
	}
	ok, err := s.IsRegistered(ctx, courseID, studentID)
	if err != nil {
		return err
	}
	if ok {
		return apperr.New(apperr.KindConflict, "already registered in course %s", courseID)
	}
	_, err = s.q.ExecContext(ctx, `INSERT INTO course_students (course_id, student_id, registered_at) VALUES ($1,$2,$3)`,
		courseID, studentID, time.Now().Unix())
	return err
}

func (s *SQLStore) IsRegistered(ctx context.Context, courseID, studentID string) (bool, error) {
	var n int
	err := s.q.QueryRowContext(ctx, `SELECT COUNT(1) FROM course_students WHERE course_id=$1 AND student_id=$2`,
		courseID, studentID).Scan(&n)
	return n > 0, err
}

type Student struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	FullName     string `json:"full_name"`
	RegisteredAt int64  `json:"registered_at"`
}

func (s *SQLStore) Students(ctx context.Context, courseID string) ([]Student, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT u.id, u.username, u.full_name, cs.registered_at
		FROM course_students cs JOIN users u ON u.id=cs.student_id
		WHERE cs.course_id=$1 ORDER BY u.username`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Student{}
	for rows.Next() {
		var st Student
		if err := rows.Scan(&st.ID, &st.Username, &st.FullName, &st.RegisteredAt); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
