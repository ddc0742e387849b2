package quiz

import (
	"time"

	"github.com/mind-engage/mindengage-quiz/internal/apperr"
)

const DateLayout = "2006-01-02"

var timeLayouts = []string{"15:04", "15:04:05"}

// Window is the absolute interval a quiz occupies.
type Window struct {
	Start time.Time
	End   time.Time
}

// ParseWindow combines a civil date with start/end times of day in loc.
// Malformed input and end <= start both yield InvalidWindow.
func ParseWindow(date, start, end string, loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.UTC
	}
	d, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return Window{}, apperr.New(apperr.KindInvalidWindow, "invalid quiz date %q", date)
	}
	s, err := combine(d, start, loc)
	if err != nil {
		return Window{}, err
	}
	e, err := combine(d, end, loc)
	if err != nil {
		return Window{}, err
	}
	if !e.After(s) {
		return Window{}, apperr.New(apperr.KindInvalidWindow, "end time %s must be after start time %s", end, start)
	}
	return Window{Start: s, End: e}, nil
}

func combine(day time.Time, clock string, loc *time.Location) (time.Time, error) {
	for _, l := range timeLayouts {
		t, err := time.Parse(l, clock)
		if err != nil {
			continue
		}
		return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
	}
	return time.Time{}, apperr.New(apperr.KindInvalidWindow, "invalid time of day %q", clock)
}

// DurationMinutes is the whole number of minutes between start and end.
func (w Window) DurationMinutes() int {
	if w.End.Before(w.Start) {
		return 0
	}
	return int(w.End.Sub(w.Start) / time.Minute)
}

// Contains uses inclusive bounds.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Overlaps reports whether any endpoint of either window falls inside the
// other. Windows that merely touch at an endpoint overlap.
func (w Window) Overlaps(o Window) bool {
	return o.Contains(w.Start) || o.Contains(w.End) ||
		w.Contains(o.Start) || w.Contains(o.End)
}

// InLockdown is true while start <= now < end.
func (w Window) InLockdown(now time.Time) bool {
	return !now.Before(w.Start) && now.Before(w.End)
}

type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusActive   Status = "active"
	StatusEnded    Status = "ended"
)

func (w Window) Status(now time.Time) Status {
	switch {
	case now.Before(w.Start):
		return StatusUpcoming
	case now.Before(w.End):
		return StatusActive
	default:
		return StatusEnded
	}
}
