package task

import (
	"testing"
	"time"

	"github.com/cyp0633/librecur/recurrence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTask(t *testing.T, title string, p recurrence.Pattern) Task {
	t.Helper()
	tk, err := New(Options{Title: title, CategoryID: "home", Recurrence: p})
	require.NoError(t, err)
	return tk
}

func daily(t *testing.T, start recurrence.Day) recurrence.Pattern {
	t.Helper()
	p, err := recurrence.EveryDays(1, start)
	require.NoError(t, err)
	return p
}

func TestNew(t *testing.T) {
	p := daily(t, recurrence.Date(2024, 1, 1))

	tk, err := New(Options{Title: "Feed the cats", CategoryID: "pets", Recurrence: p, EstimatedMinutes: 5})
	require.NoError(t, err)
	_, err = uuid.Parse(tk.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Every day", tk.Describe())

	other, err := New(Options{Title: "Feed the cats", Recurrence: p})
	require.NoError(t, err)
	assert.NotEqual(t, tk.ID, other.ID)

	tests := []struct {
		name string
		opts Options
	}{
		{"missing title", Options{Recurrence: p}},
		{"missing recurrence", Options{Title: "x"}},
		{"negative minutes", Options{Title: "x", Recurrence: p, EstimatedMinutes: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			assert.ErrorIs(t, err, ErrInvalidTask)
		})
	}

	_, err = NewWithID("", Options{Title: "x", Recurrence: p})
	assert.ErrorIs(t, err, ErrInvalidTask)
}

func TestUpdate_KeepsIdentityAndHistory(t *testing.T) {
	day := recurrence.Date(2024, 1, 2)
	tk := newTestTask(t, "Water plants", daily(t, recurrence.Date(2024, 1, 1))).WithCompletion(day, true)

	weekly, err := recurrence.EveryWeeks(1, recurrence.Date(2024, 1, 1), time.Sunday)
	require.NoError(t, err)
	opts := tk.Options()
	opts.Recurrence = weekly
	opts.Title = "Water indoor plants"

	updated, err := tk.Update(opts)
	require.NoError(t, err)
	assert.Equal(t, tk.ID, updated.ID)
	assert.Equal(t, "Water indoor plants", updated.Title)
	assert.True(t, updated.IsCompletedOn(day))
	assert.Equal(t, "Every Sunday", updated.Describe())
	assert.Equal(t, "Water plants", tk.Title)

	_, err = tk.Update(Options{})
	assert.ErrorIs(t, err, ErrInvalidTask)
}

func TestWithRecurrence(t *testing.T) {
	tk := newTestTask(t, "Vacuum", daily(t, recurrence.Date(2024, 1, 1)))
	p, err := recurrence.EveryDays(7, recurrence.Date(2024, 1, 1))
	require.NoError(t, err)

	moved := tk.WithRecurrence(p)
	assert.False(t, moved.IsDueOn(recurrence.Date(2024, 1, 2)))
	assert.True(t, tk.IsDueOn(recurrence.Date(2024, 1, 2)))
}

func TestNextOccurrence(t *testing.T) {
	p, err := recurrence.EveryWeeks(1, recurrence.Date(2024, 1, 1), time.Saturday)
	require.NoError(t, err)
	tk := newTestTask(t, "Deep clean bathroom", p)

	next, ok := tk.NextOccurrence(recurrence.Date(2024, 1, 1)).Get()
	require.True(t, ok)
	assert.Equal(t, recurrence.Date(2024, 1, 6), next)
}
