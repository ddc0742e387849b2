package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersAndExposition(t *testing.T) {
	before := testutil.ToFloat64(scheduleOutcomes.WithLabelValues("create", "schedule_conflict"))
	ScheduleOutcome("create", "schedule_conflict")
	if got := testutil.ToFloat64(scheduleOutcomes.WithLabelValues("create", "schedule_conflict")); got != before+1 {
		t.Fatalf("counter = %v, want %v", got, before+1)
	}

	SubmissionOutcome("ok", 40, 0.01)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, name := range []string{"quiz_schedule_requests_total", "quiz_submissions_total", "quiz_submission_percentage_bucket"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("exposition missing %s", name)
		}
	}
}
