package apperr

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOfAndCause(t *testing.T) {
	inner := New(KindUnknownAnswer, "answer %q not found", "Rome")
	outer := Wrap(KindSubmissionFailed, inner, "submission failed")

	if got := KindOf(outer); got != KindSubmissionFailed {
		t.Fatalf("KindOf = %s, want %s", got, KindSubmissionFailed)
	}
	if got := CauseOf(outer); got != KindUnknownAnswer {
		t.Fatalf("CauseOf = %s, want %s", got, KindUnknownAnswer)
	}
	if !Has(outer, KindUnknownAnswer) || !Has(outer, KindSubmissionFailed) {
		t.Fatal("Has should find both kinds in the chain")
	}
	if Has(outer, KindNotOwner) {
		t.Fatal("Has found a kind that is not in the chain")
	}
	want := `submission failed: answer "Rome" not found`
	if outer.Error() != want {
		t.Fatalf("Error() = %q, want %q", outer.Error(), want)
	}
}

func TestPlainErrorsAreInternal(t *testing.T) {
	err := fmt.Errorf("load: %w", sql.ErrConnDone)
	if KindOf(err) != KindInternal || CauseOf(err) != KindInternal {
		t.Fatal("plain errors should classify as internal")
	}
	wrapped := Wrap(KindSubmissionFailed, err, "submission failed")
	if !errors.Is(wrapped, sql.ErrConnDone) {
		t.Fatal("Wrap must keep the cause reachable through errors.Is")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindNotOwner:         http.StatusForbidden,
		KindInvalidWindow:    http.StatusBadRequest,
		KindWindowInPast:     http.StatusBadRequest,
		KindScheduleConflict: http.StatusConflict,
		KindUnknownAnswer:    http.StatusUnprocessableEntity,
		KindSubmissionFailed: http.StatusUnprocessableEntity,
		KindNotFound:         http.StatusNotFound,
		KindInternal:         http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := HTTPStatus(kind); got != want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", kind, got, want)
		}
	}
}
