package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	start := Date(2024, 1, 1)

	tests := []struct {
		name string
		opts PatternOptions
		want string
	}{
		{"daily", PatternOptions{Frequency: Daily, Interval: 1}, "Every day"},
		{"every 3 days", PatternOptions{Frequency: Daily, Interval: 3}, "Every 3 days"},
		{"weekly no days", PatternOptions{Frequency: Weekly, Interval: 1}, "Every week"},
		{"every 2 weeks", PatternOptions{Frequency: Weekly, Interval: 2}, "Every 2 weeks"},
		{"weekly days", PatternOptions{Frequency: Weekly, Interval: 1, DaysOfWeek: []int{1, 3}}, "Every Monday, Wednesday"},
		{"weekly stored order", PatternOptions{Frequency: Weekly, Interval: 1, DaysOfWeek: []int{5, 0}}, "Every Friday, Sunday"},
		{"biweekly days", PatternOptions{Frequency: Weekly, Interval: 2, DaysOfWeek: []int{6}}, "Every 2 Saturday"},
		{"monthly day", PatternOptions{Frequency: Monthly, Interval: 1, DayOfMonth: 15}, "Every month on day 15"},
		{"every 3 months day", PatternOptions{Frequency: Monthly, Interval: 3, DayOfMonth: 1}, "Every 3 months on day 1"},
		{"monthly no rule", PatternOptions{Frequency: Monthly, Interval: 1}, "Every month"},
		{"every 2 months no rule", PatternOptions{Frequency: Monthly, Interval: 2}, "Every 2 months"},
		{"weekday occurrence", PatternOptions{Frequency: Monthly, Interval: 1, WeekOfMonth: 2, DaysOfWeek: []int{2}}, "Every month on the 2nd Tuesday"},
		{"unknown", PatternOptions{Frequency: "hourly", Interval: 1}, "Custom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.StartDate = start
			p := MustPattern(tt.opts)
			assert.Equal(t, tt.want, Describe(p))
			assert.Equal(t, tt.want, p.String())
		})
	}

	assert.Equal(t, "Custom", Describe(Pattern{}))
}

func TestOrdinal(t *testing.T) {
	assert.Equal(t, "1st", ordinal(1))
	assert.Equal(t, "3rd", ordinal(3))
	assert.Equal(t, "5th", ordinal(5))
	assert.Equal(t, "11th", ordinal(11))
	assert.Equal(t, "22nd", ordinal(22))
}

func TestDescribe_WeekdayNames(t *testing.T) {
	p, err := EveryWeeks(1, Date(2024, 1, 1), time.Sunday, time.Saturday)
	assert.NoError(t, err)
	assert.Equal(t, "Every Sunday, Saturday", Describe(p))
}
