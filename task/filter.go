package task

import (
	"github.com/cyp0633/librecur/recurrence"
)

// DueOn returns the tasks due on day, in input order.
func DueOn(tasks []Task, day recurrence.Day) []Task {
	var out []Task
	for _, t := range tasks {
		if t.IsDueOn(day) {
			out = append(out, t)
		}
	}
	return out
}

// DueInRange returns the tasks due on at least one day of the inclusive
// range [start, start+days], in input order. DueInRange(tasks, d, 0) is
// DueOn(tasks, d); a negative days selects nothing.
func DueInRange(tasks []Task, start recurrence.Day, days int) []Task {
	var out []Task
	for _, t := range tasks {
		if recurrence.HasOccurrenceInRange(t.Recurrence, start, days) {
			out = append(out, t)
		}
	}
	return out
}

// Occurrence is one due day of one task.
type Occurrence struct {
	Task      Task
	Day       recurrence.Day
	Completed bool
}

// Upcoming lists every occurrence in [start, start+days], ordered by day
// and then by input order.
func Upcoming(tasks []Task, start recurrence.Day, days int) []Occurrence {
	var out []Occurrence
	for i := 0; i <= days; i++ {
		d := start.AddDays(i)
		for _, t := range tasks {
			if t.IsDueOn(d) {
				out = append(out, Occurrence{Task: t, Day: d, Completed: t.IsCompletedOn(d)})
			}
		}
	}
	return out
}

// Search returns the tasks whose title, notes or recurrence description
// contain query, ignoring case. An empty query matches everything.
func Search(tasks []Task, query string) []Task {
	var out []Task
	for _, t := range tasks {
		if query == "" || t.matches(query) {
			out = append(out, t)
		}
	}
	return out
}

// InCategory returns the tasks referring to categoryID.
func InCategory(tasks []Task, categoryID string) []Task {
	var out []Task
	for _, t := range tasks {
		if t.CategoryID == categoryID {
			out = append(out, t)
		}
	}
	return out
}
