package shared

import (
	"fmt"
	"strings"
	"time"

	"github.com/stokkas/stokkas/internal/platform/httpx"
)

// DateLayout is the wire format of startDate/endDate query parameters.
const DateLayout = "2006-01-02"

// Range is a half-open [From, To) time interval.
type Range struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t lies inside the range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.From) && t.Before(r.To)
}

// ParseDayRange turns two calendar days into [start 00:00, day after end 00:00)
// in loc. Both days are required.
func ParseDayRange(start, end string, loc *time.Location) (Range, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" || end == "" {
		return Range{}, fmt.Errorf("%w: startDate and endDate are required", httpx.ErrValidation)
	}
	if loc == nil {
		loc = time.UTC
	}
	from, err := time.ParseInLocation(DateLayout, start, loc)
	if err != nil {
		return Range{}, fmt.Errorf("%w: invalid startDate %q", httpx.ErrValidation, start)
	}
	to, err := time.ParseInLocation(DateLayout, end, loc)
	if err != nil {
		return Range{}, fmt.Errorf("%w: invalid endDate %q", httpx.ErrValidation, end)
	}
	if to.Before(from) {
		return Range{}, fmt.Errorf("%w: endDate before startDate", httpx.ErrValidation)
	}
	return Range{From: from, To: to.AddDate(0, 0, 1)}, nil
}

// StartOfDay truncates t to midnight in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// StartOfWeek returns the Sunday midnight on or before t.
func StartOfWeek(t time.Time, loc *time.Location) time.Time {
	day := StartOfDay(t, loc)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// StartOfMonth returns midnight of the first day of t's month.
func StartOfMonth(t time.Time, loc *time.Location) time.Time {
	day := StartOfDay(t, loc)
	return day.AddDate(0, 0, 1-day.Day())
}

// DayKey renders t as dd/mm/yyyy in loc, the granularity reports group on.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("02/01/2006")
}
