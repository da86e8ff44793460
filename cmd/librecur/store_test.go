package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cyp0633/librecur/recurrence"
	"github.com/cyp0633/librecur/task"
	"github.com/cyp0633/librecur/tracker"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time { return testNow }

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func defaultTrackerConfig() tracker.Config { return tracker.DefaultConfig }

func newTestStore(env testEnv) fileStore {
	format := "yaml"
	if filepath.Ext(env.taskFile) == ".json" {
		format = "json"
	}
	return fileStore{path: env.taskFile, format: format}
}

func TestFileStore_RoundTrip(t *testing.T) {
	for _, format := range []string{"yaml", "json"} {
		t.Run(format, func(t *testing.T) {
			s := fileStore{path: filepath.Join(t.TempDir(), "nested", "tasks."+format), format: format}
			assert.False(t, s.exists())

			tr, err := tracker.New(tracker.Config{UseSampleData: true}, tracker.WithClock(fixedClock))
			require.NoError(t, err)
			_, err = tr.SetCompleted("1", recurrence.Date(2024, time.January, 1), true)
			require.NoError(t, err)
			require.NoError(t, tr.CompleteOnboarding(false))
			require.NoError(t, s.save(tr))
			tr.Close()
			assert.True(t, s.exists())
			assert.NoFileExists(t, s.path+".tmp")

			loaded, err := s.open(tracker.DefaultConfig, discardLogger(), fixedClock)
			require.NoError(t, err)
			defer loaded.Close()

			assert.True(t, loaded.Config().OnboardingCompleted)
			assert.Len(t, loaded.Categories(), len(tracker.SampleCategories))
			require.Equal(t, 20, loaded.Len())

			feed, err := loaded.Get("1")
			require.NoError(t, err)
			assert.Equal(t, "Feed the cats", feed.Title)
			assert.True(t, feed.IsCompletedOn(recurrence.Date(2024, time.January, 1)))
			last, ok := feed.LastCompleted.Get()
			require.True(t, ok)
			assert.Equal(t, "2024-01-01", last.String())
		})
	}
}

func TestFileStore_Errors(t *testing.T) {
	dir := t.TempDir()

	missing := fileStore{path: filepath.Join(dir, "missing.yaml"), format: "yaml"}
	_, err := missing.open(tracker.DefaultConfig, discardLogger(), fixedClock)
	assert.ErrorIs(t, err, errNotInitialized)

	tests := []struct {
		name    string
		format  string
		content string
	}{
		{name: "malformed yaml", format: "yaml", content: "tasks: [\n"},
		{name: "malformed json", format: "json", content: "{"},
		{name: "invalid task", format: "yaml", content: "tasks:\n  - id: \"1\"\n    title: \"\"\n"},
		{name: "invalid category", format: "yaml", content: "categories:\n  - id: pets\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+"."+tt.format)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := fileStore{path: path, format: tt.format}.open(tracker.DefaultConfig, discardLogger(), fixedClock)
			assert.Error(t, err)
		})
	}
}

func TestFileSource_ReloadsOnChange(t *testing.T) {
	env := newTestEnv(t, "yaml")
	env.mustRun(t, "init", "--sample")

	a := newApp()
	a.clock = fixedClock
	a.logger = discardLogger()
	a.cfg.Tracker = tracker.DefaultConfig
	src := &fileSource{store: newTestStore(env), app: a}

	assert.Len(t, src.Tasks(), 20)

	env.mustRun(t, "delete", "1")
	// Force a distinct modification time regardless of filesystem resolution.
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(env.taskFile, later, later))
	assert.Len(t, src.Tasks(), 19)

	require.NoError(t, os.WriteFile(env.taskFile, []byte("tasks: [\n"), 0o644))
	require.NoError(t, os.Chtimes(env.taskFile, later.Add(time.Minute), later.Add(time.Minute)))
	assert.Len(t, src.Tasks(), 19, "a broken file keeps the last good snapshot")
}

func TestRunServer_Shutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runServer(ctx, "127.0.0.1:0", nil, discardLogger(), io.Discard)
	assert.NoError(t, err)
}

func TestWriteTasks_JSON(t *testing.T) {
	p, err := recurrence.EveryDays(2, recurrence.Date(2024, time.January, 1))
	require.NoError(t, err)
	tk, err := task.NewWithID("feed", task.Options{Title: "Feed the cats", Recurrence: p})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeTasks(&buf, "json", []task.Task{tk}))
	assert.Contains(t, buf.String(), `"id": "feed"`)
	assert.Contains(t, buf.String(), `"interval": 2`)

	assert.Error(t, writeTasks(&buf, "csv", nil))
}

func TestExportFile(t *testing.T) {
	p, err := recurrence.EveryDays(1, recurrence.Date(2024, time.January, 1))
	require.NoError(t, err)
	tk, err := task.NewWithID("feed", task.Options{Title: "Feed the cats", Recurrence: p})
	require.NoError(t, err)
	dir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		format  string
		want    string
		wantErr bool
	}{
		{name: "ics", path: filepath.Join(dir, "tasks.ics"), format: "ics", want: "SUMMARY:Feed the cats"},
		{name: "json", path: filepath.Join(dir, "tasks.json"), format: "json", want: `"title": "Feed the cats"`},
		{name: "unknown format", path: filepath.Join(dir, "tasks.csv"), format: "csv", wantErr: true},
		{name: "missing directory", path: filepath.Join(dir, "absent", "tasks.ics"), format: "ics", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := exportFile(tt.path, tt.format, []task.Task{tk})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			data, err := os.ReadFile(tt.path)
			require.NoError(t, err)
			assert.Contains(t, string(data), tt.want)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	t.Run("defaults", func(t *testing.T) {
		cfg, err := loadConfig(viper.New(), "")
		require.NoError(t, err)
		assert.Equal(t, "librecur.yaml", cfg.Data.File)
		assert.Equal(t, "yaml", cfg.Data.Format)
		assert.Equal(t, "127.0.0.1:8080", cfg.Serve.Addr)
		assert.True(t, cfg.Tracker.ShowCompletedTasks)
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("LIBRECUR_DATA_FORMAT", "json")
		t.Setenv("LIBRECUR_SERVE_ADDR", ":9000")
		cfg, err := loadConfig(viper.New(), "")
		require.NoError(t, err)
		assert.Equal(t, "json", cfg.Data.Format)
		assert.Equal(t, ":9000", cfg.Serve.Addr)
	})

	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{name: "valid file", content: "data:\n  file: chores.json\n  format: json\ntracker:\n  show_completed_tasks: false\n"},
		{name: "unknown format", content: "data:\n  format: xml\n", wantErr: true},
		{name: "username without password", content: "serve:\n  username: admin\n", wantErr: true},
		{name: "category too long", content: "tracker:\n  default_category: " + strings.Repeat("a", 65) + "\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			cfg, err := loadConfig(viper.New(), path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "chores.json", cfg.Data.File)
			assert.False(t, cfg.Tracker.ShowCompletedTasks)
		})
	}

	_, err := loadConfig(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
