package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mindengage-quiz/internal/apperr"
	"github.com/mind-engage/mindengage-quiz/internal/db"
)

const (
	RoleAdmin     = "admin"
	RoleProfessor = "professor"
	RoleStudent   = "student"
)

func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleProfessor || r == RoleStudent
}

type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	FaceImageKey string `json:"face_image_key,omitempty"`
	CreatedAt    int64  `json:"created_at"`
	PasswordHash string `json:"-"`
}

type Store struct {
	db *sql.DB
}

func NewStore(d *sql.DB) *Store { return &Store{db: d} }

type RegisterInput struct {
	Username     string
	Password     string
	FullName     string
	Email        string
	Role         string
	FaceImageKey string
}

// Register hashes the password with bcrypt and inserts the user. Usernames
// are unique; a taken one is a Conflict.
func (s *Store) Register(ctx context.Context, in RegisterInput) (User, error) {
	u := User{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(in.Username),
		FullName:     strings.TrimSpace(in.FullName),
		Email:        strings.TrimSpace(in.Email),
		Role:         strings.ToLower(strings.TrimSpace(in.Role)),
		FaceImageKey: in.FaceImageKey,
		CreatedAt:    time.Now().Unix(),
	}
	if u.Username == "" || in.Password == "" {
		return User{}, apperr.New(apperr.KindInvalidInput, "username and password are required")
	}
	if u.Role != RoleProfessor && u.Role != RoleStudent {
		return User{}, apperr.New(apperr.KindInvalidInput, "role must be professor or student")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)

	err = db.WithTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE username=$1`, u.Username).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return apperr.New(apperr.KindConflict, "username %q is taken", u.Username)
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO users (id, username, full_name, email, password_hash, role, face_image_key, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			u.ID, u.Username, u.FullName, u.Email, u.PasswordHash, u.Role, u.FaceImageKey, u.CreatedAt)
		return err
	})
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// Authenticate returns Unauthorized for unknown users and bad passwords
// alike.
func (s *Store) Authenticate(ctx context.Context, username, password string) (User, error) {
	u, err := s.FindByUsername(ctx, strings.TrimSpace(username))
	if apperr.KindOf(err) == apperr.KindNotFound {
		return User{}, apperr.New(apperr.KindUnauthorized, "invalid credentials")
	}
	if err != nil {
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, apperr.New(apperr.KindUnauthorized, "invalid credentials")
	}
	return u, nil
}

const userColumns = `id, username, full_name, email, role, face_image_key, created_at, password_hash`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.FullName, &u.Email, &u.Role, &u.FaceImageKey, &u.CreatedAt, &u.PasswordHash)
	return u, err
}

func (s *Store) FindByUsername(ctx context.Context, username string) (User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username=$1`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, apperr.New(apperr.KindNotFound, "user %s not found", username)
	}
	return u, err
}

func (s *Store) FindByID(ctx context.Context, id string) (User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, apperr.New(apperr.KindNotFound, "user %s not found", id)
	}
	return u, err
}

// List filters by role when role is non-empty.
func (s *Store) List(ctx context.Context, role string, limit, offset int) ([]User, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	q := `SELECT ` + userColumns + ` FROM users`
	args := []any{}
	if role != "" {
		q += ` WHERE role=$1`
		args = append(args, role)
	}
	q += fmt.Sprintf(` ORDER BY username LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateRole refuses to demote the last admin.
func (s *Store) UpdateRole(ctx context.Context, id, role string) error {
	role = strings.ToLower(strings.TrimSpace(role))
	if !ValidRole(role) {
		return apperr.New(apperr.KindInvalidInput, "invalid role %q", role)
	}
	return db.WithTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		var cur string
		err := tx.QueryRowContext(ctx, `SELECT role FROM users WHERE id=$1`, id).Scan(&cur)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.New(apperr.KindNotFound, "user %s not found", id)
		}
		if err != nil {
			return err
		}
		if cur == RoleAdmin && role != RoleAdmin {
			var admins int
			if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE role=$1`, RoleAdmin).Scan(&admins); err != nil {
				return err
			}
			if admins <= 1 {
				return apperr.New(apperr.KindConflict, "cannot demote the last admin")
			}
		}
		_, err = tx.ExecContext(ctx, `UPDATE users SET role=$1 WHERE id=$2`, role, id)
		return err
	})
}

// EnsureAdmin creates the bootstrap admin from a bcrypt hash unless a user
// with that name already exists.
func (s *Store) EnsureAdmin(ctx context.Context, username, passHash string) (bool, error) {
	if username == "" || passHash == "" {
		return false, nil
	}
	if _, err := s.FindByUsername(ctx, username); err == nil {
		return false, nil
	} else if apperr.KindOf(err) != apperr.KindNotFound {
		return false, err
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO users (id, username, full_name, email, password_hash, role, face_image_key, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		uuid.NewString(), username, "Administrator", "", passHash, RoleAdmin, "", time.Now().Unix())
	if err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}

// ChangePassword checks the current password before storing a new hash.
func (s *Store) ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return apperr.New(apperr.KindInvalidInput, "new password must be at least 8 characters")
	}
	u, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(oldPassword)) != nil {
		return apperr.New(apperr.KindForbidden, "incorrect old password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `UPDATE users SET password_hash=$1 WHERE id=$2`, string(hash), id)
	return err
}
