package tracker

import (
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/cyp0633/librecur/recurrence"
	"github.com/cyp0633/librecur/task"
	"github.com/samber/mo"
)

// Tracker is the in-memory working set of tasks and categories. It is
// safe for concurrent use; every read returns copies, so callers never
// see a task change underneath them.
type Tracker struct {
	mu         sync.RWMutex
	config     Config
	tasks      map[string]task.Task // map[id]Task
	order      []string             // insertion order of tasks
	categories []task.Category

	engine     *recurrence.Engine
	ownsEngine bool
	clock      func() time.Time
	logger     *slog.Logger
}

// Option represents a configuration option for the Tracker
type Option func(*Tracker)

// WithLogger sets the logger for the tracker
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithEngine shares a recurrence engine with the tracker. The caller
// keeps ownership and closes it.
func WithEngine(engine *recurrence.Engine) Option {
	return func(t *Tracker) {
		if engine != nil {
			t.engine = engine
			t.ownsEngine = false
		}
	}
}

// WithClock overrides the clock used for "today".
func WithClock(clock func() time.Time) Option {
	return func(t *Tracker) {
		if clock != nil {
			t.clock = clock
		}
	}
}

// New creates a tracker. When config asks for sample data the sample
// categories and tasks are installed, starting today.
func New(config Config, opts ...Option) (*Tracker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	t := &Tracker{
		config:     config,
		tasks:      make(map[string]task.Task),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:      time.Now,
		ownsEngine: true,
	}

	// Apply options
	for _, opt := range opts {
		opt(t)
	}
	if t.ownsEngine {
		t.engine = recurrence.NewEngine()
	}

	if config.UseSampleData {
		if err := t.seed(); err != nil {
			t.Close()
			return nil, err
		}
	}
	return t, nil
}

// Close releases the engine if the tracker created it.
func (t *Tracker) Close() {
	if t.ownsEngine && t.engine != nil {
		t.engine.Close()
	}
}

// Today is the current calendar day according to the tracker's clock.
func (t *Tracker) Today() recurrence.Day {
	return recurrence.DayOf(t.clock())
}

// Config returns the tracker's current configuration.
func (t *Tracker) Config() Config {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.config
}

// CompleteOnboarding records the first-run choice. With useSampleData
// the sample set is installed unless tasks already exist.
func (t *Tracker) CompleteOnboarding(useSampleData bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.config.OnboardingCompleted {
		return &Error{Type: ErrAlreadyExists, Message: "onboarding already completed"}
	}
	t.config.OnboardingCompleted = true
	t.config.UseSampleData = useSampleData
	if useSampleData && len(t.tasks) == 0 {
		if err := t.seedLocked(); err != nil {
			return err
		}
	}
	t.logger.Info("onboarding completed", "sample_data", useSampleData)
	return nil
}

func (t *Tracker) seed() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seedLocked()
}

func (t *Tracker) seedLocked() error {
	tasks, err := SampleTasks(recurrence.DayOf(t.clock()))
	if err != nil {
		return &Error{Type: ErrInvalidInput, Message: "failed to build sample tasks", Err: err}
	}
	for _, c := range SampleCategories {
		if !t.hasCategory(c.ID) {
			t.categories = append(t.categories, c)
		}
	}
	for _, tk := range tasks {
		t.putLocked(tk)
	}
	t.logger.Info("sample data installed", "tasks", len(tasks), "categories", len(SampleCategories))
	return nil
}

// Tasks returns a snapshot of every task in insertion order.
func (t *Tracker) Tasks() []task.Task {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshot()
}

func (t *Tracker) snapshot() []task.Task {
	out := make([]task.Task, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.tasks[id].Clone())
	}
	return out
}

// Len is the number of tasks.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.order)
}

// Get returns a copy of the task with the given ID.
func (t *Tracker) Get(id string) (task.Task, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	tk, ok := t.tasks[id]
	if !ok {
		return task.Task{}, notFound(id)
	}
	return tk.Clone(), nil
}

// Add creates a task with a fresh ID. An empty category falls back to
// the configured default.
func (t *Tracker) Add(opts task.Options) (task.Task, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if opts.CategoryID == "" {
		opts.CategoryID = t.config.DefaultCategory
	}
	tk, err := task.New(opts)
	if err != nil {
		return task.Task{}, &Error{Type: ErrInvalidInput, Message: "invalid task", Err: err}
	}
	if _, exists := t.tasks[tk.ID]; exists {
		return task.Task{}, &Error{Type: ErrAlreadyExists, Message: "task " + tk.ID + " already exists"}
	}
	t.putLocked(tk)
	t.logger.Info("task added", "id", tk.ID, "title", tk.Title, "rule", tk.Describe())
	return tk.Clone(), nil
}

// Put inserts tk or replaces the task with the same ID, keeping its
// position.
func (t *Tracker) Put(tk task.Task) error {
	if tk.ID == "" {
		return &Error{Type: ErrInvalidInput, Message: "task ID is required"}
	}
	if tk.Recurrence.IsZero() {
		return &Error{Type: ErrInvalidInput, Message: "task " + tk.ID + " has no recurrence"}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.putLocked(tk.Clone())
	t.logger.Debug("task stored", "id", tk.ID)
	return nil
}

func (t *Tracker) putLocked(tk task.Task) {
	if _, exists := t.tasks[tk.ID]; !exists {
		t.order = append(t.order, tk.ID)
	}
	t.tasks[tk.ID] = tk
}

// Update replaces the editable fields of a task.
func (t *Tracker) Update(id string, opts task.Options) (task.Task, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tk, ok := t.tasks[id]
	if !ok {
		return task.Task{}, notFound(id)
	}
	updated, err := tk.Update(opts)
	if err != nil {
		return task.Task{}, &Error{Type: ErrInvalidInput, Message: "invalid task", Err: err}
	}
	t.tasks[id] = updated
	t.logger.Info("task updated", "id", id, "title", updated.Title)
	return updated.Clone(), nil
}

// Delete removes a task.
func (t *Tracker) Delete(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.tasks[id]; !ok {
		return notFound(id)
	}
	delete(t.tasks, id)
	t.order = slices.DeleteFunc(t.order, func(s string) bool { return s == id })
	t.logger.Info("task deleted", "id", id)
	return nil
}

// SetCompleted marks the task completed or not completed on day.
func (t *Tracker) SetCompleted(id string, day recurrence.Day, completed bool) (task.Task, error) {
	return t.complete(id, day, func(bool) bool { return completed })
}

// Toggle flips the completion state of the task on day.
func (t *Tracker) Toggle(id string, day recurrence.Day) (task.Task, error) {
	return t.complete(id, day, func(was bool) bool { return !was })
}

func (t *Tracker) complete(id string, day recurrence.Day, next func(was bool) bool) (task.Task, error) {
	if day.IsZero() {
		return task.Task{}, &Error{Type: ErrInvalidInput, Message: "day is required"}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	tk, ok := t.tasks[id]
	if !ok {
		return task.Task{}, notFound(id)
	}
	completed := next(tk.IsCompletedOn(day))
	tk = tk.WithCompletion(day, completed)
	t.tasks[id] = tk
	t.logger.Info("completion recorded", "id", id, "day", day, "completed", completed)
	return tk.Clone(), nil
}

// DueOn lists the tasks due on day. Tasks already completed that day are
// left out unless the config shows completed tasks.
func (t *Tracker) DueOn(day recurrence.Day) []task.Task {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []task.Task
	for _, tk := range task.DueOn(t.snapshot(), day) {
		if !t.config.ShowCompletedTasks && tk.IsCompletedOn(day) {
			continue
		}
		out = append(out, tk)
	}
	return out
}

// DueToday is DueOn for the tracker's current day.
func (t *Tracker) DueToday() []task.Task {
	return t.DueOn(t.Today())
}

// DueInRange lists the tasks with at least one occurrence in
// [start, start+days]. Unless the config shows completed tasks, a task
// whose occurrences in the range are all completed is left out, so a
// zero-length range agrees with DueOn.
func (t *Tracker) DueInRange(start recurrence.Day, days int) []task.Task {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []task.Task
	for _, tk := range t.snapshot() {
		if !t.engine.HasOccurrenceInRange(tk.Recurrence, start, days) {
			continue
		}
		if !t.config.ShowCompletedTasks && !hasOpenOccurrence(tk, start, days) {
			continue
		}
		out = append(out, tk)
	}
	return out
}

func hasOpenOccurrence(tk task.Task, start recurrence.Day, days int) bool {
	return slices.ContainsFunc(recurrence.Occurrences(tk.Recurrence, start, days), func(d recurrence.Day) bool {
		return !tk.IsCompletedOn(d)
	})
}

// Upcoming lists every occurrence in [start, start+days].
func (t *Tracker) Upcoming(start recurrence.Day, days int) []task.Occurrence {
	t.mu.RLock()
	defer t.mu.RUnlock()

	occ := task.Upcoming(t.snapshot(), start, days)
	if t.config.ShowCompletedTasks {
		return occ
	}
	return slices.DeleteFunc(occ, func(o task.Occurrence) bool { return o.Completed })
}

// NextOccurrence finds the task's next due day on or after after.
func (t *Tracker) NextOccurrence(id string, after recurrence.Day) (mo.Option[recurrence.Day], error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	tk, ok := t.tasks[id]
	if !ok {
		return mo.None[recurrence.Day](), notFound(id)
	}
	return t.engine.NextOccurrenceAfter(tk.Recurrence, after), nil
}

// Search filters tasks by a case-insensitive query.
func (t *Tracker) Search(query string) []task.Task {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return task.Search(t.snapshot(), query)
}

// Categories returns a copy of the known categories.
func (t *Tracker) Categories() []task.Category {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.categories)
}

// AddCategory registers a new category.
func (t *Tracker) AddCategory(c task.Category) error {
	if err := validate.Struct(c); err != nil {
		return &Error{Type: ErrInvalidInput, Message: "invalid category", Err: err}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.hasCategory(c.ID) {
		return &Error{Type: ErrAlreadyExists, Message: "category " + c.ID + " already exists"}
	}
	t.categories = append(t.categories, c)
	t.logger.Info("category added", "id", c.ID, "name", c.Name)
	return nil
}

func (t *Tracker) hasCategory(id string) bool {
	return slices.ContainsFunc(t.categories, func(c task.Category) bool { return c.ID == id })
}

func notFound(id string) error {
	return &Error{Type: ErrNotFound, Message: "task " + id + " not found"}
}
