package calendar

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cyp0633/librecur/recurrence"
	"github.com/cyp0633/librecur/task"
	"github.com/emersion/go-ical"
)

const (
	ProductID = "-//librecur//Recurring Tasks//EN"

	// PropPattern carries the exact pattern as JSON. It is the source of
	// truth on import; RRULE is written for other clients.
	PropPattern = "X-LIBRECUR-PATTERN"
	// PropCompletion holds one completion record as a DATE value.
	PropCompletion = "X-LIBRECUR-COMPLETION"
	// ParamCompleted is FALSE on a PropCompletion for a day marked not
	// completed. Absent means completed.
	ParamCompleted = "X-COMPLETED"
)

// ErrNotRecurring marks a VTODO that has neither an RRULE nor a stored
// pattern. Decode skips such components.
var ErrNotRecurring = errors.New("todo has no recurrence")

// NewCalendar builds a VCALENDAR with one VTODO per task.
func NewCalendar(tasks []task.Task, stamp time.Time) (*ical.Calendar, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)

	for _, t := range tasks {
		comp, err := ToComponent(t, stamp)
		if err != nil {
			return nil, err
		}
		cal.Children = append(cal.Children, comp)
	}
	return cal, nil
}

// ToComponent converts a task into a VTODO.
func ToComponent(t task.Task, stamp time.Time) (*ical.Component, error) {
	comp := ical.NewComponent(ical.CompToDo)
	comp.Props.SetText(ical.PropUID, t.ID)
	comp.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	comp.Props.SetText(ical.PropSummary, t.Title)
	comp.Props.SetDate(ical.PropDateTimeStart, t.Recurrence.StartDate().Time())

	if rule, err := recurrence.RRuleString(t.Recurrence); err == nil {
		// RRULE values are not TEXT; SetText would escape the commas.
		comp.Props.Set(&ical.Prop{Name: ical.PropRecurrenceRule, Params: ical.Params{}, Value: rule})
	} else if !errors.Is(err, recurrence.ErrNoRRule) {
		return nil, fmt.Errorf("task %s: %w", t.ID, err)
	}

	pattern, err := json.Marshal(t.Recurrence.Options())
	if err != nil {
		return nil, fmt.Errorf("task %s: failed to encode pattern: %w", t.ID, err)
	}
	comp.Props.SetText(PropPattern, string(pattern))

	if t.CategoryID != "" {
		comp.Props.SetText(ical.PropCategories, t.CategoryID)
	}
	if t.Notes != "" {
		comp.Props.SetText(ical.PropDescription, t.Notes)
	}
	if t.EstimatedMinutes > 0 {
		comp.Props.Set(&ical.Prop{
			Name:   ical.PropDuration,
			Params: ical.Params{},
			Value:  fmt.Sprintf("PT%dM", t.EstimatedMinutes),
		})
	}
	if last, ok := t.LastCompleted.Get(); ok {
		comp.Props.SetDateTime(ical.PropCompleted, last.Time())
	}
	for _, rec := range t.CompletionHistory {
		prop := ical.NewProp(PropCompletion)
		prop.SetDate(rec.Day.Time())
		if !rec.Completed {
			prop.Params.Set(ParamCompleted, "FALSE")
		}
		comp.Props.Add(prop)
	}
	return comp, nil
}

// FromComponent converts a VTODO back into a task.
func FromComponent(comp *ical.Component) (task.Task, error) {
	if comp.Name != ical.CompToDo {
		return task.Task{}, fmt.Errorf("unexpected component %s", comp.Name)
	}

	uid, err := comp.Props.Text(ical.PropUID)
	if err != nil {
		return task.Task{}, fmt.Errorf("failed to read UID: %w", err)
	}
	rec := task.Record{ID: uid}

	if rec.Title, err = comp.Props.Text(ical.PropSummary); err != nil {
		return task.Task{}, fmt.Errorf("todo %s: failed to read SUMMARY: %w", uid, err)
	}
	if rec.CategoryID, err = firstCategory(comp); err != nil {
		return task.Task{}, fmt.Errorf("todo %s: failed to read CATEGORIES: %w", uid, err)
	}
	if rec.Notes, err = comp.Props.Text(ical.PropDescription); err != nil {
		return task.Task{}, fmt.Errorf("todo %s: failed to read DESCRIPTION: %w", uid, err)
	}
	if prop := comp.Props.Get(ical.PropDuration); prop != nil {
		d, err := prop.Duration()
		if err != nil {
			return task.Task{}, fmt.Errorf("todo %s: failed to read DURATION: %w", uid, err)
		}
		rec.EstimatedMinutes = int(d / time.Minute)
	}

	if rec.Recurrence, err = patternOf(comp); err != nil {
		return task.Task{}, fmt.Errorf("todo %s: %w", uid, err)
	}

	if prop := comp.Props.Get(ical.PropCompleted); prop != nil {
		t, err := prop.DateTime(time.UTC)
		if err != nil {
			return task.Task{}, fmt.Errorf("todo %s: failed to read COMPLETED: %w", uid, err)
		}
		last := recurrence.DayOf(t)
		rec.LastCompleted = &last
	}
	for _, prop := range comp.Props.Values(PropCompletion) {
		t, err := prop.DateTime(time.UTC)
		if err != nil {
			return task.Task{}, fmt.Errorf("todo %s: failed to read %s: %w", uid, PropCompletion, err)
		}
		rec.CompletionHistory = append(rec.CompletionHistory, task.CompletionRecord{
			Day:       recurrence.DayOf(t),
			Completed: !strings.EqualFold(prop.Params.Get(ParamCompleted), "FALSE"),
		})
	}

	return task.FromRecord(rec)
}

func firstCategory(comp *ical.Component) (string, error) {
	text, err := comp.Props.Text(ical.PropCategories)
	if err != nil || text == "" {
		return "", err
	}
	first, _, _ := strings.Cut(text, ",")
	return strings.TrimSpace(first), nil
}

// patternOf prefers the stored pattern and falls back to DTSTART+RRULE
// for todos written by other clients.
func patternOf(comp *ical.Component) (recurrence.PatternOptions, error) {
	if raw, err := comp.Props.Text(PropPattern); err == nil && raw != "" {
		var opts recurrence.PatternOptions
		if err := json.Unmarshal([]byte(raw), &opts); err != nil {
			return opts, fmt.Errorf("failed to decode %s: %w", PropPattern, err)
		}
		return opts, nil
	}

	ruleProp := comp.Props.Get(ical.PropRecurrenceRule)
	if ruleProp == nil {
		return recurrence.PatternOptions{}, ErrNotRecurring
	}
	startProp := comp.Props.Get(ical.PropDateTimeStart)
	if startProp == nil {
		return recurrence.PatternOptions{}, fmt.Errorf("RRULE without DTSTART")
	}
	start, err := startProp.DateTime(time.UTC)
	if err != nil {
		return recurrence.PatternOptions{}, fmt.Errorf("failed to read DTSTART: %w", err)
	}
	p, err := recurrence.FromRRule(ruleProp.Value, recurrence.DayOf(start))
	if err != nil {
		return recurrence.PatternOptions{}, err
	}
	return p.Options(), nil
}

// Encode writes tasks as an iCalendar stream of VTODOs.
func Encode(w io.Writer, tasks []task.Task) error {
	cal, err := NewCalendar(tasks, time.Now())
	if err != nil {
		return err
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

// Decode reads every recurring VTODO of an iCalendar stream. Other
// component types and VTODOs without recurrence are skipped.
func Decode(r io.Reader) ([]task.Task, error) {
	cal, err := ical.NewDecoder(r).Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode calendar: %w", err)
	}
	return FromCalendar(cal)
}

// FromCalendar converts the recurring VTODOs of cal into tasks.
func FromCalendar(cal *ical.Calendar) ([]task.Task, error) {
	var tasks []task.Task
	for _, child := range cal.Children {
		if child.Name != ical.CompToDo {
			continue
		}
		t, err := FromComponent(child)
		if errors.Is(err, ErrNotRecurring) {
			continue
		}
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
