package recurrence

import (
	"fmt"
	"time"
)

const dayLayout = "2006-01-02"

// Day is a calendar day without time of day or time zone.
// The zero Day is "unset"; compare with IsZero.
type Day struct {
	t time.Time // always midnight UTC
}

// Date returns the calendar day for the given year, month and day.
// Out-of-range values are normalized the way time.Date does.
func Date(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf truncates t to its date component in t's own location.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Date(y, m, d)
}

// Today returns the current calendar day in the local zone.
func Today() Day {
	return DayOf(time.Now())
}

// ParseDay parses a YYYY-MM-DD string. RFC 3339 timestamps are accepted
// and truncated to their date component.
func ParseDay(s string) (Day, error) {
	if t, err := time.Parse(dayLayout, s); err == nil {
		return DayOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DayOf(t), nil
	}
	return Day{}, fmt.Errorf("invalid calendar day %q, want YYYY-MM-DD", s)
}

func (d Day) IsZero() bool { return d.t.IsZero() }

func (d Day) Year() int { return d.t.Year() }

func (d Day) Month() time.Month { return d.t.Month() }

// DayOfMonth returns the day of the month, 1..31.
func (d Day) DayOfMonth() int { return d.t.Day() }

func (d Day) Weekday() time.Weekday { return d.t.Weekday() }

// AddDays returns the day n days after d (before it when n is negative).
func (d Day) AddDays(n int) Day {
	return Day{t: d.t.AddDate(0, 0, n)}
}

// Sub returns the number of whole days from o to d.
func (d Day) Sub(o Day) int {
	return int((d.t.Unix() - o.t.Unix()) / 86400)
}

func (d Day) Before(o Day) bool { return d.t.Before(o.t) }

func (d Day) After(o Day) bool { return d.t.After(o.t) }

func (d Day) Equal(o Day) bool { return d.t.Equal(o.t) }

// Time returns midnight UTC of d.
func (d Day) Time() time.Time { return d.t }

// In returns midnight of d in loc.
func (d Day) In(loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.DayOfMonth(), 0, 0, 0, 0, loc)
}

func (d Day) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(dayLayout)
}

func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Day) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Day{}
		return nil
	}
	parsed, err := ParseDay(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// monthsBetween counts calendar months from start to d, ignoring the day
// of month, so the 31st of January to the 1st of February is one month.
func monthsBetween(start, d Day) int {
	return (d.Year()-start.Year())*12 + int(d.Month()) - int(start.Month())
}
