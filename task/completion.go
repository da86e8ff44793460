package task

import (
	"github.com/cyp0633/librecur/recurrence"
	"github.com/samber/mo"
)

// maxStreakDays bounds how far back Streak looks.
const maxStreakDays = 366

// CompletionOn returns the record for day, if any.
func (t Task) CompletionOn(day recurrence.Day) mo.Option[CompletionRecord] {
	for _, r := range t.CompletionHistory {
		if r.Day.Equal(day) {
			return mo.Some(r)
		}
	}
	return mo.None[CompletionRecord]()
}

// IsCompletedOn reports the completion flag stored for day; false when
// nothing was recorded.
func (t Task) IsCompletedOn(day recurrence.Day) bool {
	r, ok := t.CompletionOn(day).Get()
	return ok && r.Completed
}

// WithCompletion returns a copy of t holding exactly one record for day,
// set to completed; records of other days keep their order. Completing
// a day moves LastCompleted to it, un-completing never clears it.
func (t Task) WithCompletion(day recurrence.Day, completed bool) Task {
	history := make([]CompletionRecord, 0, len(t.CompletionHistory)+1)
	for _, r := range t.CompletionHistory {
		if !r.Day.Equal(day) {
			history = append(history, r)
		}
	}
	history = append(history, CompletionRecord{Day: day, Completed: completed})

	out := t
	out.CompletionHistory = history
	if completed {
		out.LastCompleted = mo.Some(day)
	}
	return out
}

// CompletedDays lists the days marked completed, in history order.
func (t Task) CompletedDays() []recurrence.Day {
	var days []recurrence.Day
	for _, r := range t.CompletionHistory {
		if r.Completed {
			days = append(days, r.Day)
		}
	}
	return days
}

// Streak counts consecutive completed occurrences ending at asOf. An
// occurrence on asOf that is not completed yet does not break the
// streak; any earlier missed occurrence does.
func (t Task) Streak(asOf recurrence.Day) int {
	streak := 0
	start := t.Recurrence.StartDate()
	for i := 0; i < maxStreakDays; i++ {
		d := asOf.AddDays(-i)
		if d.Before(start) {
			break
		}
		if !t.IsDueOn(d) {
			continue
		}
		if t.IsCompletedOn(d) {
			streak++
			continue
		}
		if i == 0 {
			continue
		}
		break
	}
	return streak
}
