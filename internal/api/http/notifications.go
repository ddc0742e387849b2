package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/mind-engage/mindengage-quiz/internal/auth/middleware"
	"github.com/mind-engage/mindengage-quiz/internal/notify"
)

// ListNotificationsHandler returns the caller's notifications; ?unread=1
// hides the ones already read.
func ListNotificationsHandler(inbox *notify.SQLSink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := authmw.Identity(r.Context())
		list, err := inbox.List(r.Context(), sub, truthy(r.URL.Query().Get("unread")))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": list})
	}
}

func MarkNotificationReadHandler(inbox *notify.SQLSink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := authmw.Identity(r.Context())
		if err := inbox.MarkRead(r.Context(), sub, chi.URLParam(r, "notificationID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
