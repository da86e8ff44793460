package tracker

import (
	"strconv"
	"time"

	"github.com/cyp0633/librecur/recurrence"
	"github.com/cyp0633/librecur/task"
)

// SampleCategories are installed when the user opts into sample data.
var SampleCategories = []task.Category{
	{ID: "kitchen", Name: "Kitchen", Color: "#FF6B6B", Icon: "🍳", Description: "Kitchen and cooking related tasks"},
	{ID: "bathroom", Name: "Bathroom", Color: "#4ECDC4", Icon: "🚿", Description: "Bathroom cleaning and maintenance"},
	{ID: "pets", Name: "Pets", Color: "#FFD93D", Icon: "🐱", Description: "Pet care and maintenance"},
	{ID: "health", Name: "Health", Color: "#95E1D3", Icon: "💊", Description: "Personal health and medication"},
	{ID: "plants", Name: "Plants", Color: "#6C9", Icon: "🌿", Description: "Plant care and watering"},
	{ID: "exercise", Name: "Exercise", Color: "#FF8C42", Icon: "💪", Description: "Fitness and workout routines"},
	{ID: "study", Name: "Study", Color: "#845EC2", Icon: "📚", Description: "Learning and skill development"},
	{ID: "selfcare", Name: "Self Care", Color: "#F8A5C2", Icon: "🧘", Description: "Mental health and relaxation"},
}

type sampleTask struct {
	title    string
	category string
	minutes  int
	notes    string
	freq     recurrence.Frequency
	days     []time.Weekday
	monthDay int
}

var sampleTasks = []sampleTask{
	{title: "Feed the cats", category: "pets", minutes: 5, freq: recurrence.Daily},
	{title: "Clean litter box", category: "pets", minutes: 10, freq: recurrence.Daily},
	{title: "Take medication", category: "health", minutes: 1, notes: "Take with food", freq: recurrence.Daily},
	{title: "Water indoor plants", category: "plants", minutes: 15, freq: recurrence.Weekly, days: []time.Weekday{time.Sunday, time.Wednesday}},
	{title: "Deep clean bathroom", category: "bathroom", minutes: 30, freq: recurrence.Weekly, days: []time.Weekday{time.Saturday}},
	{title: "Clean kitchen counters", category: "kitchen", minutes: 10, freq: recurrence.Daily},
	{title: "Take out kitchen trash", category: "kitchen", minutes: 5, freq: recurrence.Weekly, days: []time.Weekday{time.Monday, time.Thursday}},
	{title: "Clean coffee maker", category: "kitchen", minutes: 20, notes: "Use vinegar solution", freq: recurrence.Monthly, monthDay: 1},
	{title: "Morning yoga", category: "exercise", minutes: 20, notes: "Follow the morning flow routine", freq: recurrence.Daily},
	{title: "Study programming", category: "study", minutes: 60, notes: "Focus on Go and SQL", freq: recurrence.Weekly, days: []time.Weekday{time.Monday, time.Wednesday, time.Friday}},
	{title: "Meditation session", category: "selfcare", minutes: 15, notes: "Use the Calm app", freq: recurrence.Daily},
	{title: "Strength training", category: "exercise", minutes: 45, notes: "Focus on upper body", freq: recurrence.Weekly, days: []time.Weekday{time.Monday, time.Thursday}},
	{title: "Language practice", category: "study", minutes: 30, notes: "Duolingo streak", freq: recurrence.Daily},
	{title: "Journal writing", category: "selfcare", minutes: 15, notes: "Reflect on daily achievements", freq: recurrence.Daily},
	{title: "Weekly meal prep", category: "kitchen", minutes: 120, notes: "Prepare lunches for the week", freq: recurrence.Weekly, days: []time.Weekday{time.Sunday}},
	{title: "Take vitamins", category: "health", minutes: 1, freq: recurrence.Daily},
	{title: "Clean kitchen surfaces", category: "kitchen", minutes: 10, freq: recurrence.Daily},
	{title: "Water outdoor plants", category: "plants", minutes: 20, freq: recurrence.Weekly, days: []time.Weekday{time.Tuesday, time.Friday}},
	{title: "Monthly budget review", category: "study", minutes: 45, notes: "Review expenses and adjust budget", freq: recurrence.Monthly, monthDay: 1},
	{title: "Deep breathing exercises", category: "selfcare", minutes: 10, notes: "Box breathing technique", freq: recurrence.Daily},
}

// SampleTasks builds the sample task set with every rule starting on
// start. IDs are the 1-based position in the set.
func SampleTasks(start recurrence.Day) ([]task.Task, error) {
	out := make([]task.Task, 0, len(sampleTasks))
	for i, s := range sampleTasks {
		p, err := s.pattern(start)
		if err != nil {
			return nil, err
		}
		t, err := task.NewWithID(sampleID(i), task.Options{
			Title:            s.title,
			CategoryID:       s.category,
			Recurrence:       p,
			Notes:            s.notes,
			EstimatedMinutes: s.minutes,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (s sampleTask) pattern(start recurrence.Day) (recurrence.Pattern, error) {
	switch s.freq {
	case recurrence.Weekly:
		return recurrence.EveryWeeks(1, start, s.days...)
	case recurrence.Monthly:
		return recurrence.EveryMonths(1, start, recurrence.OnDayOfMonth(s.monthDay))
	default:
		return recurrence.EveryDays(1, start)
	}
}

func sampleID(i int) string { return strconv.Itoa(i + 1) }
