package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDefaultPolicy(t *testing.T) {
	c := NewChecker(nil)
	cases := []struct {
		role, perm string
		want       bool
	}{
		{"student", "quiz:submit", true},
		{"student", "quiz:create", false},
		{"student", "result:view-course", false},
		{"professor", "quiz:create", true},
		{"professor", "quiz:delete", true},
		{"professor", "quiz:submit", false},
		{"professor", "users:manage", false},
		{"admin", "users:manage", true},
		{"ghost", "quiz:view", false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%s, %s) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
	if !c.Any("student", "result:view-course", "result:view-own") {
		t.Error("Any should match the second permission")
	}

	custom := NewChecker(map[string][]string{"ta": {"result:*"}})
	if !custom.Has("ta", "result:view-course") || custom.Has("ta", "quiz:view") {
		t.Error("trailing wildcard mismatch")
	}
}

func TestRequire(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
	h := Require("quiz:create")(ok)

	for role, want := range map[string]int{"professor": http.StatusTeapot, "student": http.StatusForbidden, "": http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = req.WithContext(WithRole(context.Background(), role))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("role %q: status %d, want %d", role, rec.Code, want)
		}
	}
}
