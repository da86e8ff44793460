/*
Package recurrence decides on which calendar days a recurring task is due.

All queries are pure functions of an immutable Pattern and a Day, so they
can be evaluated from any number of goroutines.

# Patterns

	p, err := recurrence.EveryWeeks(2, recurrence.Date(2024, 1, 7), time.Sunday)
	if err != nil {
		// interval < 1, weekday out of range, ...
	}
	p.IsDueOn(recurrence.Date(2024, 1, 21)) // true
	recurrence.Describe(p)                   // "Every 2 Sunday"

A weekly pattern counts its interval in 7-day blocks starting at the start
date. A monthly pattern counts calendar months from the start month,
ignoring the day of month, and then applies its MonthlyRule.

# Searching

NextOccurrenceAfter scans at most Horizon days, starting with the given
day itself, and returns mo.None when nothing matched:

	next, ok := recurrence.NextOccurrenceAfter(p, recurrence.Today()).Get()

Engine wraps the same queries with a RecurrenceCache for callers that
render the same agenda repeatedly.

# Interop

ToRRule and FromRRule translate to and from RFC 5545 RRULE values using
github.com/teambition/rrule-go.
*/
package recurrence
