package recurrence

import (
	"fmt"
	"strconv"
	"strings"
)

// Describe renders p as a short English phrase, e.g. "Every 3 days" or
// "Every Monday, Wednesday". Weekdays keep the pattern's stored order.
func Describe(p Pattern) string {
	prefix := "Every"
	if p.interval > 1 {
		prefix = "Every " + strconv.Itoa(p.interval)
	}

	switch p.frequency {
	case Daily:
		return prefix + " " + unit("day", p.interval)

	case Weekly:
		if len(p.daysOfWeek) == 0 {
			return prefix + " " + unit("week", p.interval)
		}
		names := make([]string, len(p.daysOfWeek))
		for i, wd := range p.daysOfWeek {
			names[i] = wd.String()
		}
		return prefix + " " + strings.Join(names, ", ")

	case Monthly:
		base := prefix + " " + unit("month", p.interval)
		if n, ok := p.monthly.DayOfMonth(); ok {
			return fmt.Sprintf("%s on day %d", base, n)
		}
		if week, wd, ok := p.monthly.WeekdayOccurrence(); ok {
			return fmt.Sprintf("%s on the %s %s", base, ordinal(week), wd)
		}
		return base

	default:
		return "Custom"
	}
}

// String is Describe(p).
func (p Pattern) String() string { return Describe(p) }

func unit(noun string, interval int) string {
	if interval > 1 {
		return noun + "s"
	}
	return noun
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}
