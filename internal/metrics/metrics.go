package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	scheduleOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_schedule_requests_total",
			Help: "Quiz create/update/delete requests by outcome",
		},
		[]string{"op", "outcome"}, // outcome: ok or an error kind
	)

	submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_submissions_total",
			Help: "Quiz submissions by outcome",
		},
		[]string{"outcome"},
	)

	submissionPercentage = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quiz_submission_percentage",
			Help:    "Distribution of submission percentages",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		},
	)

	submissionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quiz_submission_duration_seconds",
			Help:    "Time spent grading and persisting a submission",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func ScheduleOutcome(op, outcome string) {
	scheduleOutcomes.WithLabelValues(op, outcome).Inc()
}

func SubmissionOutcome(outcome string, percentage, seconds float64) {
	submissions.WithLabelValues(outcome).Inc()
	submissionDuration.Observe(seconds)
	if outcome == "ok" {
		submissionPercentage.Observe(percentage)
	}
}

func Handler() http.Handler { return promhttp.Handler() }
