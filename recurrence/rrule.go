package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// ErrNoRRule is returned by ToRRule for patterns that never occur, which
// RFC 5545 cannot express.
var ErrNoRRule = errors.New("pattern has no RRULE equivalent")

// indexed by time.Weekday
var rruleWeekdays = [7]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

func toTimeWeekday(wd rrule.Weekday) time.Weekday {
	// rrule counts Monday as 0
	return time.Weekday((wd.Day() + 1) % 7)
}

// ToRRule converts p into an equivalent RFC 5545 rule anchored at its
// start date. Weekly rules set WKST to the start weekday so that
// multi-week intervals are counted from the start date, as IsDueOn does.
func ToRRule(p Pattern) (*rrule.RRule, error) {
	opt, err := rruleOption(p)
	if err != nil {
		return nil, err
	}
	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("failed to build RRULE: %w", err)
	}
	return r, nil
}

// RRuleString returns the RRULE value (without DTSTART) for p.
func RRuleString(p Pattern) (string, error) {
	opt, err := rruleOption(p)
	if err != nil {
		return "", err
	}
	opt.Dtstart = time.Time{}
	return opt.RRuleString(), nil
}

func rruleOption(p Pattern) (rrule.ROption, error) {
	if p.interval < 1 || p.startDate.IsZero() {
		return rrule.ROption{}, fmt.Errorf("%w: incomplete pattern", ErrNoRRule)
	}
	opt := rrule.ROption{
		Interval: p.interval,
		Dtstart:  p.startDate.Time(),
	}

	switch p.frequency {
	case Daily:
		opt.Freq = rrule.DAILY

	case Weekly:
		if len(p.daysOfWeek) == 0 {
			return rrule.ROption{}, fmt.Errorf("%w: weekly pattern without weekdays", ErrNoRRule)
		}
		opt.Freq = rrule.WEEKLY
		opt.Wkst = rruleWeekdays[p.startDate.Weekday()]
		for _, wd := range p.daysOfWeek {
			opt.Byweekday = append(opt.Byweekday, rruleWeekdays[wd])
		}

	case Monthly:
		opt.Freq = rrule.MONTHLY
		if n, ok := p.monthly.DayOfMonth(); ok {
			opt.Bymonthday = []int{n}
		} else if week, wd, ok := p.monthly.WeekdayOccurrence(); ok {
			opt.Byweekday = []rrule.Weekday{rruleWeekdays[wd].Nth(week)}
		} else {
			return rrule.ROption{}, fmt.Errorf("%w: monthly pattern without a day rule", ErrNoRRule)
		}

	default:
		return rrule.ROption{}, fmt.Errorf("%w: frequency %q", ErrNoRRule, p.frequency)
	}
	return opt, nil
}

// FromRRule parses an RRULE value (with or without the "RRULE:" prefix)
// into a Pattern starting at start. Only DAILY, WEEKLY and MONTHLY rules
// without COUNT, UNTIL or BYSETPOS map onto a Pattern. Weekly intervals
// are always counted from start; WKST is ignored.
func FromRRule(s string, start Day) (Pattern, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "RRULE:")
	opt, err := rrule.StrToROption(s)
	if err != nil {
		return Pattern{}, fmt.Errorf("%w: failed to parse RRULE '%s': %v", ErrInvalidPattern, s, err)
	}
	if opt.Count != 0 || !opt.Until.IsZero() || len(opt.Bysetpos) > 0 ||
		len(opt.Bymonth) > 0 || len(opt.Byyearday) > 0 || len(opt.Byweekno) > 0 {
		return Pattern{}, fmt.Errorf("%w: RRULE '%s' uses unsupported parts", ErrInvalidPattern, s)
	}

	opts := PatternOptions{Interval: opt.Interval, StartDate: start}
	if opts.Interval == 0 {
		opts.Interval = 1
	}

	switch opt.Freq {
	case rrule.DAILY:
		opts.Frequency = Daily

	case rrule.WEEKLY:
		opts.Frequency = Weekly
		for _, wd := range opt.Byweekday {
			if wd.N() != 0 {
				return Pattern{}, fmt.Errorf("%w: weekly BYDAY cannot carry an ordinal", ErrInvalidPattern)
			}
			opts.DaysOfWeek = append(opts.DaysOfWeek, int(toTimeWeekday(wd)))
		}
		if len(opts.DaysOfWeek) == 0 {
			opts.DaysOfWeek = []int{int(start.Weekday())}
		}

	case rrule.MONTHLY:
		opts.Frequency = Monthly
		switch {
		case len(opt.Bymonthday) == 1 && len(opt.Byweekday) == 0:
			opts.DayOfMonth = opt.Bymonthday[0]
		case len(opt.Byweekday) == 1 && len(opt.Bymonthday) == 0:
			wd := opt.Byweekday[0]
			opts.WeekOfMonth = wd.N()
			opts.DaysOfWeek = []int{int(toTimeWeekday(wd))}
		case len(opt.Byweekday) == 0 && len(opt.Bymonthday) == 0:
			opts.DayOfMonth = start.DayOfMonth()
		default:
			return Pattern{}, fmt.Errorf("%w: RRULE '%s' selects more than one day per month", ErrInvalidPattern, s)
		}

	default:
		return Pattern{}, fmt.Errorf("%w: unsupported RRULE frequency in '%s'", ErrInvalidPattern, s)
	}

	return NewPattern(opts)
}
