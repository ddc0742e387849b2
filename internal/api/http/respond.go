package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/mind-engage/mindengage-quiz/internal/apperr"
)

type errorBody struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Cause  string `json:"cause,omitempty"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a domain error to a status. A failed submission whose
// cause is a client error (unknown question, not registered, duplicate)
// keeps that cause's status; anything else stays 422.
func writeError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	cause := apperr.CauseOf(err)
	status := apperr.HTTPStatus(kind)
	if kind == apperr.KindSubmissionFailed && cause != apperr.KindInternal && cause != kind {
		if s := apperr.HTTPStatus(cause); s < http.StatusInternalServerError {
			status = s
		}
	}

	body := errorBody{Code: string(kind)}
	if cause != kind {
		body.Cause = string(cause)
	}
	if kind == apperr.KindInternal {
		body.Error = "internal error"
		body.Detail = err.Error()
	} else {
		body.Error = err.Error()
	}
	writeJSON(w, status, body)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg, Code: string(apperr.KindInvalidInput)})
}

func forbidden(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusForbidden, errorBody{Error: msg, Code: string(apperr.KindForbidden)})
}

const maxJSONBody = 1 << 20

// decodeJSON reads one JSON object and validates it with the package
// validator. Unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			badRequest(w, "empty body")
		} else {
			badRequest(w, "bad json: "+err.Error())
		}
		return false
	}
	if err := validate.Struct(dst); err != nil {
		badRequest(w, validationMessage(err))
		return false
	}
	return true
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
