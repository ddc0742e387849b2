// Package notify delivers messages to the students registered in a course.
package notify

import (
	"context"
	"log/slog"
)

type Kind string

const (
	KindQuizCreated Kind = "quiz_created"
	KindQuizUpdated Kind = "quiz_updated"
	KindQuizDeleted Kind = "quiz_deleted"
)

// Sink is fire-and-forget from the caller's point of view: the scheduler
// logs a returned error and carries on.
type Sink interface {
	NotifyCourseStudents(ctx context.Context, courseID, message string, kind Kind) error
}

// Fanout forwards to every sink, logging failures instead of returning them.
type Fanout struct {
	sinks []Sink
	log   *slog.Logger
}

func NewFanout(log *slog.Logger, sinks ...Sink) *Fanout {
	if log == nil {
		log = slog.Default()
	}
	return &Fanout{sinks: sinks, log: log}
}

func (f *Fanout) NotifyCourseStudents(ctx context.Context, courseID, message string, kind Kind) error {
	for _, s := range f.sinks {
		if err := s.NotifyCourseStudents(ctx, courseID, message, kind); err != nil {
			f.log.Warn("notification sink failed",
				"course_id", courseID, "kind", string(kind), "err", err)
		}
	}
	return nil
}

// Nop discards everything.
type Nop struct{}

func (Nop) NotifyCourseStudents(context.Context, string, string, Kind) error { return nil }
