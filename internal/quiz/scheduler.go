package quiz

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-quiz/internal/apperr"
	"github.com/mind-engage/mindengage-quiz/internal/course"
	"github.com/mind-engage/mindengage-quiz/internal/db"
	"github.com/mind-engage/mindengage-quiz/internal/lock"
	"github.com/mind-engage/mindengage-quiz/internal/metrics"
	"github.com/mind-engage/mindengage-quiz/internal/notify"
)

type CreateInput struct {
	CourseID    string
	Title       string
	Description string
	Date        string // YYYY-MM-DD
	StartTime   string // HH:MM[:SS]
	EndTime     string
}

// UpdateInput fields left nil keep their stored value.
type UpdateInput struct {
	CourseID    *string
	Title       *string
	Description *string
	Date        *string
	StartTime   *string
	EndTime     *string
}

// Scheduler validates and persists quiz windows. Every check and the write
// run inside one transaction under a per-course lock; notifications go out
// after commit.
type Scheduler struct {
	db     *sql.DB
	sink   notify.Sink
	locker lock.Locker
	loc    *time.Location
	now    func() time.Time
	log    *slog.Logger
}

type Option func(*Scheduler)

func WithClock(now func() time.Time) Option { return func(s *Scheduler) { s.now = now } }
func WithLocation(l *time.Location) Option  { return func(s *Scheduler) { s.loc = l } }
func WithLocker(l lock.Locker) Option       { return func(s *Scheduler) { s.locker = l } }
func WithLogger(l *slog.Logger) Option      { return func(s *Scheduler) { s.log = l } }

func NewScheduler(d *sql.DB, sink notify.Sink, opts ...Option) *Scheduler {
	s := &Scheduler{
		db:   d,
		sink: sink,
		loc:  time.UTC,
		now:  time.Now,
		log:  slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.locker == nil {
		s.locker = lock.NewLocal()
	}
	if s.sink == nil {
		s.sink = notify.Nop{}
	}
	return s
}

func (s *Scheduler) Location() *time.Location { return s.loc }
func (s *Scheduler) Now() time.Time           { return s.now() }

func (s *Scheduler) Create(ctx context.Context, actorID string, in CreateInput) (q Quiz, err error) {
	defer func() { s.record("create", err) }()

	unlock, err := s.locker.Lock(ctx, lock.ScheduleKey(in.CourseID))
	if err != nil {
		return Quiz{}, err
	}
	defer unlock()

	err = db.WithTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		if _, err := course.NewSQLStore(tx).RequireOwner(ctx, in.CourseID, actorID); err != nil {
			return err
		}
		w, now, err := s.checkWindow(ctx, tx, in.CourseID, "", in.Date, in.StartTime, in.EndTime)
		if err != nil {
			return err
		}
		title := strings.TrimSpace(in.Title)
		if title == "" {
			return apperr.New(apperr.KindInvalidInput, "title is required")
		}
		q = Quiz{
			ID:              uuid.NewString(),
			CourseID:        in.CourseID,
			Title:           title,
			Description:     strings.TrimSpace(in.Description),
			Date:            in.Date,
			StartAt:         w.Start,
			EndAt:           w.End,
			DurationMinutes: w.DurationMinutes(),
			Lockdown:        w.InLockdown(now),
			CreatedAt:       now.Unix(),
			UpdatedAt:       now.Unix(),
		}
		return NewSQLStore(tx).Insert(ctx, q)
	})
	if err != nil {
		return Quiz{}, err
	}

	start := q.StartAt.In(s.loc)
	s.notify(ctx, q.CourseID, fmt.Sprintf("New quiz %q has been scheduled for %s at %s.",
		q.Title, start.Format(DateLayout), start.Format("15:04")), notify.KindQuizCreated)
	return q, nil
}

func (s *Scheduler) Update(ctx context.Context, actorID, quizID string, in UpdateInput) (q Quiz, err error) {
	defer func() { s.record("update", err) }()

	// Lock the current course and, if it moves, the target course too.
	cur, err := NewSQLStore(s.db).Get(ctx, quizID)
	if err != nil {
		return Quiz{}, err
	}
	keys := []string{lock.ScheduleKey(cur.CourseID)}
	if in.CourseID != nil && *in.CourseID != cur.CourseID {
		keys = append(keys, lock.ScheduleKey(*in.CourseID))
	}
	release, err := s.lockAll(ctx, keys)
	if err != nil {
		return Quiz{}, err
	}
	defer release()

	var prev Quiz
	err = db.WithTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		store := NewSQLStore(tx)
		courses := course.NewSQLStore(tx)
		var err error
		if prev, err = store.Get(ctx, quizID); err != nil {
			return err
		}
		if _, err := courses.RequireOwner(ctx, prev.CourseID, actorID); err != nil {
			return err
		}

		next := prev
		if in.CourseID != nil && *in.CourseID != prev.CourseID {
			if _, err := courses.RequireOwner(ctx, *in.CourseID, actorID); err != nil {
				return err
			}
			next.CourseID = *in.CourseID
		}
		if in.Title != nil {
			next.Title = strings.TrimSpace(*in.Title)
			if next.Title == "" {
				return apperr.New(apperr.KindInvalidInput, "title is required")
			}
		}
		if in.Description != nil {
			next.Description = strings.TrimSpace(*in.Description)
		}

		date := pick(in.Date, prev.Date)
		startClock := pick(in.StartTime, prev.StartAt.In(s.loc).Format("15:04:05"))
		endClock := pick(in.EndTime, prev.EndAt.In(s.loc).Format("15:04:05"))
		w, now, err := s.checkWindow(ctx, tx, next.CourseID, quizID, date, startClock, endClock)
		if err != nil {
			return err
		}
		next.Date = date
		next.StartAt = w.Start
		next.EndAt = w.End
		next.DurationMinutes = w.DurationMinutes()
		next.Lockdown = w.InLockdown(now)
		next.UpdatedAt = now.Unix()
		if err := store.Update(ctx, next); err != nil {
			return err
		}
		q = next
		return nil
	})
	if err != nil {
		return Quiz{}, err
	}

	if msg, ok := changeMessage(prev, q); ok {
		s.notify(ctx, q.CourseID, msg, notify.KindQuizUpdated)
		if prev.CourseID != q.CourseID {
			s.notify(ctx, prev.CourseID, msg, notify.KindQuizUpdated)
		}
	}
	return q, nil
}

func (s *Scheduler) Delete(ctx context.Context, actorID, quizID string) (err error) {
	defer func() { s.record("delete", err) }()

	var q Quiz
	err = db.WithTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		store := NewSQLStore(tx)
		var err error
		if q, err = store.Get(ctx, quizID); err != nil {
			return err
		}
		if _, err := course.NewSQLStore(tx).RequireOwner(ctx, q.CourseID, actorID); err != nil {
			return err
		}
		return store.Delete(ctx, quizID)
	})
	if err != nil {
		return err
	}
	start := q.StartAt.In(s.loc)
	s.notify(ctx, q.CourseID, fmt.Sprintf("Quiz %q scheduled for %s at %s has been cancelled.",
		q.Title, start.Format(DateLayout), start.Format("15:04")), notify.KindQuizDeleted)
	return nil
}

func (s *Scheduler) Get(ctx context.Context, quizID string) (Quiz, error) {
	return NewSQLStore(s.db).Get(ctx, quizID)
}

func (s *Scheduler) ListByCourse(ctx context.Context, courseID string) ([]Quiz, error) {
	if _, err := course.NewSQLStore(s.db).Find(ctx, courseID); err != nil {
		return nil, err
	}
	return NewSQLStore(s.db).FindByCourse(ctx, courseID, "")
}

// checkWindow runs steps shared by create and update: parse, not in the
// past, no overlap with the course's other quizzes.
func (s *Scheduler) checkWindow(ctx context.Context, q db.Querier, courseID, excludeID, date, start, end string) (Window, time.Time, error) {
	w, err := ParseWindow(date, start, end, s.loc)
	if err != nil {
		return Window{}, time.Time{}, err
	}
	now := s.now()
	if w.Start.Before(now) {
		return Window{}, time.Time{}, apperr.New(apperr.KindWindowInPast,
			"quiz start %s is in the past", w.Start.In(s.loc).Format("2006-01-02 15:04"))
	}
	others, err := NewSQLStore(q).FindByCourse(ctx, courseID, excludeID)
	if err != nil {
		return Window{}, time.Time{}, err
	}
	for _, o := range others {
		if w.Overlaps(o.Window()) {
			return Window{}, time.Time{}, apperr.New(apperr.KindScheduleConflict,
				"overlaps quiz %q (%s - %s)", o.Title,
				o.StartAt.In(s.loc).Format("2006-01-02 15:04"), o.EndAt.In(s.loc).Format("15:04"))
		}
	}
	return w, now, nil
}

func (s *Scheduler) lockAll(ctx context.Context, keys []string) (func(), error) {
	sort.Strings(keys)
	var unlocks []func()
	release := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
	for _, k := range keys {
		u, err := s.locker.Lock(ctx, k)
		if err != nil {
			release()
			return nil, err
		}
		unlocks = append(unlocks, u)
	}
	return release, nil
}

func (s *Scheduler) notify(ctx context.Context, courseID, msg string, kind notify.Kind) {
	if err := s.sink.NotifyCourseStudents(ctx, courseID, msg, kind); err != nil {
		s.log.Warn("quiz notification failed", "course_id", courseID, "kind", string(kind), "err", err)
	}
}

func (s *Scheduler) record(op string, err error) {
	if err == nil {
		metrics.ScheduleOutcome(op, "ok")
		return
	}
	metrics.ScheduleOutcome(op, string(apperr.KindOf(err)))
	s.log.Info("quiz "+op+" rejected", "kind", string(apperr.KindOf(err)), "err", err)
}

// changeMessage names exactly the fields that differ. ok is false when
// nothing changed.
func changeMessage(prev, next Quiz) (string, bool) {
	var changed []string
	if prev.Title != next.Title {
		changed = append(changed, fmt.Sprintf("title changed from %q to %q", prev.Title, next.Title))
	}
	if prev.Description != next.Description {
		changed = append(changed, "description updated")
	}
	if prev.Date != next.Date || !prev.StartAt.Equal(next.StartAt) || !prev.EndAt.Equal(next.EndAt) {
		changed = append(changed, fmt.Sprintf("now on %s from %s to %s", next.Date,
			next.StartAt.Format("15:04"), next.EndAt.Format("15:04")))
	}
	if prev.CourseID != next.CourseID {
		changed = append(changed, "moved to another course")
	}
	if len(changed) == 0 {
		return "", false
	}
	return fmt.Sprintf("Quiz %q has been updated: %s.", next.Title, strings.Join(changed, "; ")), true
}

func pick(p *string, def string) string {
	if p == nil {
		return def
	}
	return strings.TrimSpace(*p)
}
