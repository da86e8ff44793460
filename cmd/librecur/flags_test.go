package main

import (
	"testing"
	"time"

	"github.com/cyp0633/librecur/recurrence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeekdays(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    []int
		wantErr bool
	}{
		{name: "short names", input: []string{"mon", "wed"}, want: []int{1, 3}},
		{name: "long names any case", input: []string{"Sunday", " SATURDAY "}, want: []int{0, 6}},
		{name: "indices", input: []string{"0", "6"}, want: []int{0, 6}},
		{name: "blank entries skipped", input: []string{"", "fri"}, want: []int{5}},
		{name: "out of range", input: []string{"7"}, wantErr: true},
		{name: "unknown name", input: []string{"funday"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseWeekdays(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRuleFlags_Pattern(t *testing.T) {
	today := recurrence.Date(2024, time.January, 10) // Wednesday

	tests := []struct {
		name     string
		flags    ruleFlags
		describe string
		start    string
		wantErr  bool
	}{
		{
			name:     "daily default",
			flags:    ruleFlags{frequency: "daily", interval: 1},
			describe: "Every day",
			start:    "2024-01-10",
		},
		{
			name:     "every three days from start",
			flags:    ruleFlags{frequency: "Daily", interval: 3, start: "2024-02-01"},
			describe: "Every 3 days",
			start:    "2024-02-01",
		},
		{
			name:     "weekly defaults to start weekday",
			flags:    ruleFlags{frequency: "weekly", interval: 1},
			describe: "Every Wednesday",
			start:    "2024-01-10",
		},
		{
			name:     "biweekly on days",
			flags:    ruleFlags{frequency: "weekly", interval: 2, weekdays: []string{"sat", "sun"}},
			describe: "Every 2 Saturday, Sunday",
			start:    "2024-01-10",
		},
		{
			name:     "monthly defaults to start day",
			flags:    ruleFlags{frequency: "monthly", interval: 1},
			describe: "Every month on day 10",
			start:    "2024-01-10",
		},
		{
			name:     "monthly weekday occurrence",
			flags:    ruleFlags{frequency: "monthly", interval: 1, weekOfMonth: 2, weekdays: []string{"tue"}},
			describe: "Every month on the 2nd Tuesday",
			start:    "2024-01-10",
		},
		{
			name:     "rrule",
			flags:    ruleFlags{rrule: "FREQ=DAILY;INTERVAL=2", frequency: "weekly", interval: 5},
			describe: "Every 2 days",
			start:    "2024-01-10",
		},
		{name: "unknown frequency", flags: ruleFlags{frequency: "hourly", interval: 1}, wantErr: true},
		{name: "week without weekday", flags: ruleFlags{frequency: "monthly", interval: 1, weekOfMonth: 2}, wantErr: true},
		{name: "day and week", flags: ruleFlags{frequency: "monthly", interval: 1, dayOfMonth: 3, weekOfMonth: 2, weekdays: []string{"tue"}}, wantErr: true},
		{name: "bad start", flags: ruleFlags{frequency: "daily", interval: 1, start: "10-01-2024"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.flags.pattern(today)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.describe, p.String())
			assert.Equal(t, tt.start, p.StartDate().String())
		})
	}
}
