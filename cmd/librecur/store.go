package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cyp0633/librecur/task"
	"github.com/cyp0633/librecur/tracker"
	"gopkg.in/yaml.v3"
)

// errNotInitialized is returned when the task file does not exist yet.
var errNotInitialized = errors.New("no task file; run 'librecur init' first")

// taskFile is the on-disk layout of the working set.
type taskFile struct {
	OnboardingCompleted bool            `yaml:"onboardingCompleted" json:"onboardingCompleted"`
	Categories          []task.Category `yaml:"categories,omitempty" json:"categories,omitempty"`
	Tasks               []task.Record   `yaml:"tasks" json:"tasks"`
}

type fileStore struct {
	path   string
	format string
}

func (s fileStore) exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

func (s fileStore) read() (taskFile, error) {
	var f taskFile
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return f, fmt.Errorf("%s: %w", s.path, errNotInitialized)
	}
	if err != nil {
		return f, fmt.Errorf("failed to read task file: %w", err)
	}

	switch s.format {
	case "json":
		err = json.Unmarshal(data, &f)
	default:
		err = yaml.Unmarshal(data, &f)
	}
	if err != nil {
		return f, fmt.Errorf("failed to parse task file %s: %w", s.path, err)
	}
	return f, nil
}

// write replaces the task file atomically.
func (s fileStore) write(f taskFile) error {
	var (
		data []byte
		err  error
	)
	switch s.format {
	case "json":
		data, err = json.MarshalIndent(f, "", "  ")
	default:
		data, err = yaml.Marshal(f)
	}
	if err != nil {
		return fmt.Errorf("failed to encode task file: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write task file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace task file: %w", err)
	}
	return nil
}

// open loads the task file into a tracker.
func (s fileStore) open(cfg tracker.Config, logger *slog.Logger, clock func() time.Time) (*tracker.Tracker, error) {
	f, err := s.read()
	if err != nil {
		return nil, err
	}

	cfg.OnboardingCompleted = f.OnboardingCompleted
	cfg.UseSampleData = false
	tr, err := tracker.New(cfg, tracker.WithLogger(logger), tracker.WithClock(clock))
	if err != nil {
		return nil, err
	}
	for _, c := range f.Categories {
		if err := tr.AddCategory(c); err != nil {
			tr.Close()
			return nil, fmt.Errorf("category %q: %w", c.ID, err)
		}
	}
	for _, r := range f.Tasks {
		t, err := task.FromRecord(r)
		if err != nil {
			tr.Close()
			return nil, err
		}
		if err := tr.Put(t); err != nil {
			tr.Close()
			return nil, err
		}
	}
	logger.Debug("task file loaded", "path", s.path, "tasks", len(f.Tasks))
	return tr, nil
}

// save writes the tracker's current state.
func (s fileStore) save(tr *tracker.Tracker) error {
	tasks := tr.Tasks()
	f := taskFile{
		OnboardingCompleted: tr.Config().OnboardingCompleted,
		Categories:          tr.Categories(),
		Tasks:               make([]task.Record, len(tasks)),
	}
	for i, t := range tasks {
		f.Tasks[i] = t.Record()
	}
	return s.write(f)
}
