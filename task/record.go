package task

import (
	"fmt"

	"github.com/cyp0633/librecur/recurrence"
	"github.com/samber/mo"
)

// Record is the flat, serializable form of a Task as callers persist it.
type Record struct {
	ID                string                    `json:"id" yaml:"id" validate:"required"`
	Title             string                    `json:"title" yaml:"title" validate:"required"`
	CategoryID        string                    `json:"categoryId" yaml:"categoryId"`
	Recurrence        recurrence.PatternOptions `json:"recurrence" yaml:"recurrence"`
	LastCompleted     *recurrence.Day           `json:"lastCompleted,omitempty" yaml:"lastCompleted,omitempty"`
	CompletionHistory []CompletionRecord        `json:"completionHistory,omitempty" yaml:"completionHistory,omitempty"`
	Notes             string                    `json:"notes,omitempty" yaml:"notes,omitempty"`
	EstimatedMinutes  int                       `json:"estimatedMinutes,omitempty" yaml:"estimatedMinutes,omitempty" validate:"min=0"`
}

// Record returns the serializable form of t.
func (t Task) Record() Record {
	r := Record{
		ID:                t.ID,
		Title:             t.Title,
		CategoryID:        t.CategoryID,
		Recurrence:        t.Recurrence.Options(),
		CompletionHistory: t.clone().CompletionHistory,
		Notes:             t.Notes,
		EstimatedMinutes:  t.EstimatedMinutes,
	}
	if d, ok := t.LastCompleted.Get(); ok {
		r.LastCompleted = &d
	}
	return r
}

// FromRecord validates r and rebuilds the Task. History entries sharing
// a day collapse into one, the later entry winning, so a stored history
// that predates the one-record-per-day rule loads cleanly.
func FromRecord(r Record) (Task, error) {
	if err := validate.Struct(r); err != nil {
		return Task{}, fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}
	p, err := recurrence.NewPattern(r.Recurrence)
	if err != nil {
		return Task{}, fmt.Errorf("%w: task %s: %w", ErrInvalidTask, r.ID, err)
	}

	t := Task{
		ID:               r.ID,
		Title:            r.Title,
		CategoryID:       r.CategoryID,
		Recurrence:       p,
		Notes:            r.Notes,
		EstimatedMinutes: r.EstimatedMinutes,
	}
	if r.LastCompleted != nil && !r.LastCompleted.IsZero() {
		t.LastCompleted = mo.Some(*r.LastCompleted)
	}

	index := make(map[recurrence.Day]int, len(r.CompletionHistory))
	for _, rec := range r.CompletionHistory {
		if rec.Day.IsZero() {
			return Task{}, fmt.Errorf("%w: task %s: completion record without a date", ErrInvalidTask, r.ID)
		}
		if i, ok := index[rec.Day]; ok {
			t.CompletionHistory[i] = rec
			continue
		}
		index[rec.Day] = len(t.CompletionHistory)
		t.CompletionHistory = append(t.CompletionHistory, rec)
	}
	return t, nil
}
