package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cyp0633/librecur/recurrence"
	"github.com/spf13/cobra"
)

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// parseWeekdays accepts names ("mon", "Tuesday") or indices 0 (Sunday)
// to 6 (Saturday).
func parseWeekdays(values []string) ([]int, error) {
	var out []int
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if wd, ok := weekdayNames[v]; ok {
			out = append(out, int(wd))
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 6 {
			return nil, fmt.Errorf("unknown weekday %q", v)
		}
		out = append(out, n)
	}
	return out, nil
}

// ruleFlags are the recurrence flags shared by add.
type ruleFlags struct {
	frequency   string
	interval    int
	weekdays    []string
	dayOfMonth  int
	weekOfMonth int
	start       string
	rrule       string
}

func (f *ruleFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.frequency, "every", "daily", "frequency: daily, weekly or monthly")
	flags.IntVarP(&f.interval, "interval", "n", 1, "repeat every n days, weeks or months")
	flags.StringSliceVar(&f.weekdays, "on", nil, "weekdays for weekly rules, or the weekday of --week (e.g. mon,wed)")
	flags.IntVar(&f.dayOfMonth, "day", 0, "day of the month for monthly rules")
	flags.IntVar(&f.weekOfMonth, "week", 0, "week of the month (1-5) for monthly rules on a weekday")
	flags.StringVar(&f.start, "start", "", "start date, YYYY-MM-DD (default today)")
	flags.StringVar(&f.rrule, "rrule", "", "RFC 5545 RRULE instead of the flags above")
}

func (f *ruleFlags) pattern(today recurrence.Day) (recurrence.Pattern, error) {
	start := today
	if f.start != "" {
		d, err := recurrence.ParseDay(f.start)
		if err != nil {
			return recurrence.Pattern{}, fmt.Errorf("--start: %w", err)
		}
		start = d
	}
	if f.rrule != "" {
		return recurrence.FromRRule(f.rrule, start)
	}

	days, err := parseWeekdays(f.weekdays)
	if err != nil {
		return recurrence.Pattern{}, err
	}
	opts := recurrence.PatternOptions{
		Frequency:   recurrence.Frequency(strings.ToLower(f.frequency)),
		Interval:    f.interval,
		DaysOfWeek:  days,
		DayOfMonth:  f.dayOfMonth,
		WeekOfMonth: f.weekOfMonth,
		StartDate:   start,
	}
	switch opts.Frequency {
	case recurrence.Daily, recurrence.Weekly, recurrence.Monthly:
	default:
		return recurrence.Pattern{}, fmt.Errorf("--every must be daily, weekly or monthly, got %q", f.frequency)
	}
	if opts.Frequency == recurrence.Weekly && len(days) == 0 {
		opts.DaysOfWeek = []int{int(start.Weekday())}
	}
	if opts.Frequency == recurrence.Monthly && opts.DayOfMonth == 0 && opts.WeekOfMonth == 0 {
		opts.DayOfMonth = start.DayOfMonth()
	}
	return recurrence.NewPattern(opts)
}
