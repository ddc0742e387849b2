package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mind-engage/mindengage-quiz/internal/db/dbtest"
	"github.com/mind-engage/mindengage-quiz/internal/rbac"
)

func echoIdentity() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(SubjectFromContext(r.Context()) + "|" + rbac.RoleFromContext(r.Context())))
	})
}

func TestJWTMiddleware(t *testing.T) {
	a := NewAuthService("secret", time.Hour)
	tok, exp, err := a.IssueJWT("u1", "professor")
	if err != nil {
		t.Fatal(err)
	}
	if time.Until(exp) <= 0 {
		t.Fatal("token already expired")
	}
	h := JWTMiddleware(a)(echoIdentity())

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid", "Bearer " + tok, http.StatusOK, "u1|professor"},
		{"missing", "", http.StatusUnauthorized, ""},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("status = %d", rec.Code)
			}
			if tc.body != "" && rec.Body.String() != tc.body {
				t.Fatalf("body = %q", rec.Body.String())
			}
		})
	}

	other := NewAuthService("different", time.Hour)
	if _, err := other.Parse(tok); err == nil {
		t.Fatal("token verified with the wrong secret")
	}
}

func TestAttachRoleFromDB(t *testing.T) {
	h := dbtest.Open(t)
	dbtest.SeedUser(t, h, "u1", "admin")
	a := NewAuthService("secret", time.Hour)
	chain := JWTMiddleware(a)(AttachRoleFromDB(h)(echoIdentity()))

	tok, _, _ := a.IssueJWT("u1", "student")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)
	if rec.Body.String() != "u1|admin" {
		t.Fatalf("body = %q, want stored role", rec.Body.String())
	}

	ghost, _, _ := a.IssueJWT("ghost", "admin")
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+ghost)
	rec = httptest.NewRecorder()
	chain.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("deleted user status = %d", rec.Code)
	}
}
