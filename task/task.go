package task

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/cyp0633/librecur/recurrence"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/mo"
)

// ErrInvalidTask is wrapped by construction and decoding errors.
var ErrInvalidTask = errors.New("invalid task")

// Category groups tasks. Tasks refer to it only by ID.
type Category struct {
	ID          string `json:"id" yaml:"id" validate:"required"`
	Name        string `json:"name" yaml:"name" validate:"required"`
	Color       string `json:"color,omitempty" yaml:"color,omitempty" validate:"omitempty,hexcolor"`
	Icon        string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// CompletionRecord is the completion flag of one calendar day.
type CompletionRecord struct {
	Day       recurrence.Day `json:"date" yaml:"date"`
	Completed bool           `json:"completed" yaml:"completed"`
}

// Task is a recurring chore. Treat it as a value: the With* methods
// return modified copies and never touch the receiver.
type Task struct {
	ID                string
	Title             string
	CategoryID        string
	Recurrence        recurrence.Pattern
	CompletionHistory []CompletionRecord
	// LastCompleted is the most recent day ever marked completed. Marking
	// a day not completed leaves it alone.
	LastCompleted    mo.Option[recurrence.Day]
	Notes            string
	EstimatedMinutes int
}

// Options are the user-editable fields of a Task.
type Options struct {
	Title            string `validate:"required,max=200"`
	CategoryID       string
	Recurrence       recurrence.Pattern
	Notes            string
	EstimatedMinutes int `validate:"min=0"`
}

var validate = validator.New()

// New creates a task with a fresh random UUID.
func New(opts Options) (Task, error) {
	return NewWithID(uuid.NewString(), opts)
}

// NewWithID creates a task with a caller-chosen identifier.
func NewWithID(id string, opts Options) (Task, error) {
	if id == "" {
		return Task{}, fmt.Errorf("%w: empty id", ErrInvalidTask)
	}
	if err := checkOptions(opts); err != nil {
		return Task{}, err
	}
	return Task{
		ID:               id,
		Title:            opts.Title,
		CategoryID:       opts.CategoryID,
		Recurrence:       opts.Recurrence,
		Notes:            opts.Notes,
		EstimatedMinutes: opts.EstimatedMinutes,
	}, nil
}

func checkOptions(opts Options) error {
	if err := validate.Struct(opts); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}
	if opts.Recurrence.IsZero() {
		return fmt.Errorf("%w: recurrence is required", ErrInvalidTask)
	}
	return nil
}

// Options returns the editable fields of t.
func (t Task) Options() Options {
	return Options{
		Title:            t.Title,
		CategoryID:       t.CategoryID,
		Recurrence:       t.Recurrence,
		Notes:            t.Notes,
		EstimatedMinutes: t.EstimatedMinutes,
	}
}

// Update replaces every editable field, keeping identity and history.
func (t Task) Update(opts Options) (Task, error) {
	if err := checkOptions(opts); err != nil {
		return Task{}, err
	}
	out := t.clone()
	out.Title = opts.Title
	out.CategoryID = opts.CategoryID
	out.Recurrence = opts.Recurrence
	out.Notes = opts.Notes
	out.EstimatedMinutes = opts.EstimatedMinutes
	return out, nil
}

// WithRecurrence returns a copy of t using p.
func (t Task) WithRecurrence(p recurrence.Pattern) Task {
	out := t.clone()
	out.Recurrence = p
	return out
}

// IsDueOn reports whether the task's pattern has an occurrence on day.
func (t Task) IsDueOn(day recurrence.Day) bool {
	return recurrence.IsDueOn(t.Recurrence, day)
}

// NextOccurrence is recurrence.NextOccurrenceAfter for the task's pattern.
func (t Task) NextOccurrence(after recurrence.Day) mo.Option[recurrence.Day] {
	return recurrence.NextOccurrenceAfter(t.Recurrence, after)
}

// Describe renders the task's recurrence rule.
func (t Task) Describe() string {
	return recurrence.Describe(t.Recurrence)
}

func (t Task) matches(query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Notes), q) ||
		strings.Contains(strings.ToLower(t.Describe()), q)
}

// Clone returns a copy of t that shares no mutable state with it.
func (t Task) Clone() Task { return t.clone() }

func (t Task) clone() Task {
	t.CompletionHistory = slices.Clone(t.CompletionHistory)
	return t
}
