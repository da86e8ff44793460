package task

import (
	"encoding/json"
	"testing"

	"github.com/cyp0633/librecur/recurrence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRecord_CollapsesDuplicateDays(t *testing.T) {
	day := recurrence.Date(2024, 1, 3)
	r := Record{
		ID:    "7",
		Title: "Feed the cats",
		Recurrence: recurrence.PatternOptions{
			Frequency: recurrence.Daily,
			Interval:  1,
			StartDate: recurrence.Date(2024, 1, 1),
		},
		CompletionHistory: []CompletionRecord{
			{Day: day, Completed: true},
			{Day: recurrence.Date(2024, 1, 4), Completed: true},
			{Day: day, Completed: false},
		},
	}

	tk, err := FromRecord(r)
	require.NoError(t, err)
	assert.Len(t, tk.CompletionHistory, 2)
	assert.False(t, tk.IsCompletedOn(day))
	assert.True(t, tk.LastCompleted.IsAbsent())
}

func TestFromRecord_Invalid(t *testing.T) {
	good := recurrence.PatternOptions{Frequency: recurrence.Daily, Interval: 1, StartDate: recurrence.Date(2024, 1, 1)}

	tests := []struct {
		name string
		r    Record
	}{
		{"missing id", Record{Title: "x", Recurrence: good}},
		{"missing title", Record{ID: "1", Recurrence: good}},
		{"zero interval", Record{ID: "1", Title: "x", Recurrence: recurrence.PatternOptions{Frequency: recurrence.Daily, StartDate: recurrence.Date(2024, 1, 1)}}},
		{"undated completion", Record{ID: "1", Title: "x", Recurrence: good, CompletionHistory: []CompletionRecord{{Completed: true}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromRecord(tt.r)
			assert.ErrorIs(t, err, ErrInvalidTask)
		})
	}
}

func TestRecord_JSONShape(t *testing.T) {
	tk := newTestTask(t, "Feed the cats", daily(t, recurrence.Date(2024, 1, 1))).
		WithCompletion(recurrence.Date(2024, 1, 2), true)

	b, err := json.Marshal(tk.Record())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, "2024-01-02", raw["lastCompleted"])
	assert.Equal(t, "2024-01-01", raw["recurrence"].(map[string]any)["startDate"])
	history := raw["completionHistory"].([]any)
	require.Len(t, history, 1)
	assert.Equal(t, "2024-01-02", history[0].(map[string]any)["date"])

	var decoded Record
	require.NoError(t, json.Unmarshal(b, &decoded))
	back, err := FromRecord(decoded)
	require.NoError(t, err)
	assert.Equal(t, tk.CompletionHistory, back.CompletionHistory)
	assert.Equal(t, tk.LastCompleted, back.LastCompleted)
	assert.True(t, tk.Recurrence.Equal(back.Recurrence))
}
