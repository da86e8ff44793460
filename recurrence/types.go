package recurrence

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Frequency is the unit a Pattern steps in.
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

// Horizon is how many days NextOccurrenceAfter inspects before giving up.
const Horizon = 60

// ErrInvalidPattern is wrapped by every error NewPattern returns.
var ErrInvalidPattern = errors.New("invalid recurrence pattern")

type monthlyMode uint8

const (
	monthlyUnset monthlyMode = iota
	monthlyByDay
	monthlyByWeekday
)

// MonthlyRule selects the day inside a matching month. It is either a
// fixed day of month or the n-th occurrence of a weekday, never both.
// The zero MonthlyRule matches no day.
type MonthlyRule struct {
	mode    monthlyMode
	day     int
	week    int
	weekday time.Weekday
}

// OnDayOfMonth matches day n (1..31) of the month. Months without that
// day have no occurrence.
func OnDayOfMonth(n int) MonthlyRule {
	return MonthlyRule{mode: monthlyByDay, day: n}
}

// OnWeekdayOccurrence matches the week-th (1..5) occurrence of weekday,
// i.e. weekday falling within days 7(week-1)+1 .. 7*week of the month.
func OnWeekdayOccurrence(week int, weekday time.Weekday) MonthlyRule {
	return MonthlyRule{mode: monthlyByWeekday, week: week, weekday: weekday}
}

func (r MonthlyRule) IsZero() bool { return r.mode == monthlyUnset }

// DayOfMonth reports the fixed day of month, if this is such a rule.
func (r MonthlyRule) DayOfMonth() (int, bool) {
	return r.day, r.mode == monthlyByDay
}

// WeekdayOccurrence reports the week and weekday, if this is such a rule.
func (r MonthlyRule) WeekdayOccurrence() (int, time.Weekday, bool) {
	return r.week, r.weekday, r.mode == monthlyByWeekday
}

func (r MonthlyRule) matches(d Day) bool {
	switch r.mode {
	case monthlyByDay:
		return d.DayOfMonth() == r.day
	case monthlyByWeekday:
		week := (d.DayOfMonth()-1)/7 + 1
		return week == r.week && d.Weekday() == r.weekday
	default:
		return false
	}
}

// Pattern is an immutable recurrence rule. Build one with NewPattern or
// the Every* helpers; the zero Pattern is never due.
type Pattern struct {
	frequency  Frequency
	interval   int
	daysOfWeek []time.Weekday
	monthly    MonthlyRule
	startDate  Day
}

func (p Pattern) Frequency() Frequency { return p.frequency }

func (p Pattern) Interval() int { return p.interval }

// DaysOfWeek returns a copy of the weekdays in their stored order.
func (p Pattern) DaysOfWeek() []time.Weekday { return slices.Clone(p.daysOfWeek) }

func (p Pattern) Monthly() MonthlyRule { return p.monthly }

func (p Pattern) StartDate() Day { return p.startDate }

func (p Pattern) IsZero() bool { return p.interval == 0 && p.frequency == "" }

// WithStartDate returns a copy of p anchored at start.
func (p Pattern) WithStartDate(start Day) Pattern {
	p.daysOfWeek = slices.Clone(p.daysOfWeek)
	p.startDate = start
	return p
}

func (p Pattern) Equal(o Pattern) bool {
	return p.frequency == o.frequency &&
		p.interval == o.interval &&
		slices.Equal(p.daysOfWeek, o.daysOfWeek) &&
		p.monthly == o.monthly &&
		p.startDate.Equal(o.startDate)
}

// PatternOptions is the flat, persisted form of a Pattern. It mirrors the
// shape stored by clients: weekday indices are 0 (Sunday) to 6 (Saturday)
// and a monthly rule is either DayOfMonth or WeekOfMonth plus exactly one
// entry in DaysOfWeek.
type PatternOptions struct {
	Frequency   Frequency `json:"frequency" yaml:"frequency" validate:"required"`
	Interval    int       `json:"interval" yaml:"interval" validate:"min=1"`
	DaysOfWeek  []int     `json:"daysOfWeek,omitempty" yaml:"daysOfWeek,omitempty" validate:"unique,dive,min=0,max=6"`
	DayOfMonth  int       `json:"dayOfMonth,omitempty" yaml:"dayOfMonth,omitempty" validate:"omitempty,min=1,max=31,excluded_with=WeekOfMonth"`
	WeekOfMonth int       `json:"weekOfMonth,omitempty" yaml:"weekOfMonth,omitempty" validate:"omitempty,min=1,max=5"`
	StartDate   Day       `json:"startDate" yaml:"startDate"`
}

var validate = validator.New()

// NewPattern validates opts and builds the Pattern. Unlike the loose
// client model it rejects Interval < 1 outright. Unknown frequencies are
// accepted and produce a pattern that is never due.
func NewPattern(opts PatternOptions) (Pattern, error) {
	if err := validate.Struct(opts); err != nil {
		return Pattern{}, fmt.Errorf("%w: %s", ErrInvalidPattern, describeValidation(err))
	}
	if opts.StartDate.IsZero() {
		return Pattern{}, fmt.Errorf("%w: start date is required", ErrInvalidPattern)
	}

	p := Pattern{
		frequency: opts.Frequency,
		interval:  opts.Interval,
		startDate: opts.StartDate,
	}
	if len(opts.DaysOfWeek) > 0 {
		p.daysOfWeek = make([]time.Weekday, len(opts.DaysOfWeek))
		for i, wd := range opts.DaysOfWeek {
			p.daysOfWeek[i] = time.Weekday(wd)
		}
	}

	switch {
	case opts.DayOfMonth > 0:
		p.monthly = OnDayOfMonth(opts.DayOfMonth)
	case opts.WeekOfMonth > 0:
		if len(opts.DaysOfWeek) != 1 {
			return Pattern{}, fmt.Errorf("%w: weekOfMonth needs exactly one weekday, got %d",
				ErrInvalidPattern, len(opts.DaysOfWeek))
		}
		p.monthly = OnWeekdayOccurrence(opts.WeekOfMonth, p.daysOfWeek[0])
	}
	return p, nil
}

// MustPattern is NewPattern for static patterns; it panics on error.
func MustPattern(opts PatternOptions) Pattern {
	p, err := NewPattern(opts)
	if err != nil {
		panic(err)
	}
	return p
}

// Options returns the persisted form of p.
func (p Pattern) Options() PatternOptions {
	opts := PatternOptions{
		Frequency: p.frequency,
		Interval:  p.interval,
		StartDate: p.startDate,
	}
	for _, wd := range p.daysOfWeek {
		opts.DaysOfWeek = append(opts.DaysOfWeek, int(wd))
	}
	if n, ok := p.monthly.DayOfMonth(); ok {
		opts.DayOfMonth = n
	}
	if week, wd, ok := p.monthly.WeekdayOccurrence(); ok {
		opts.WeekOfMonth = week
		opts.DaysOfWeek = []int{int(wd)}
	}
	return opts
}

func (p Pattern) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Options())
}

func (p *Pattern) UnmarshalJSON(b []byte) error {
	var opts PatternOptions
	if err := json.Unmarshal(b, &opts); err != nil {
		return err
	}
	parsed, err := NewPattern(opts)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// EveryDays builds a daily pattern stepping interval days.
func EveryDays(interval int, start Day) (Pattern, error) {
	return NewPattern(PatternOptions{Frequency: Daily, Interval: interval, StartDate: start})
}

// EveryWeeks builds a weekly pattern on the given weekdays.
func EveryWeeks(interval int, start Day, days ...time.Weekday) (Pattern, error) {
	opts := PatternOptions{Frequency: Weekly, Interval: interval, StartDate: start}
	for _, d := range days {
		opts.DaysOfWeek = append(opts.DaysOfWeek, int(d))
	}
	return NewPattern(opts)
}

// EveryMonths builds a monthly pattern using rule to pick the day.
func EveryMonths(interval int, start Day, rule MonthlyRule) (Pattern, error) {
	opts := Pattern{monthly: rule}.Options()
	opts.Frequency = Monthly
	opts.Interval = interval
	opts.StartDate = start
	return NewPattern(opts)
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("field '%s' failed rule '%s' (value: '%v')", e.Field(), e.Tag(), e.Value()))
	}
	return strings.Join(msgs, "; ")
}
