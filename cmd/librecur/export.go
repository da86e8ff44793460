package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cyp0633/librecur/calendar"
	"github.com/cyp0633/librecur/server"
	"github.com/cyp0633/librecur/task"
	"github.com/spf13/cobra"
)

func (a *app) exportCmd() *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all tasks as iCalendar, xCal or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := a.open()
			if err != nil {
				return err
			}
			defer tr.Close()
			tasks := tr.Tasks()

			if output == "" || output == "-" {
				return writeTasks(cmd.OutOrStdout(), format, tasks)
			}
			if err := exportFile(output, format, tasks); err != nil {
				return err
			}
			a.logger.Debug("tasks exported", "format", format, "tasks", len(tasks), "output", output)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "ics", "output format: ics, xcal or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

// exportFile writes tasks to path. The file's close error is reported,
// since a failed flush loses the export.
func exportFile(path, format string, tasks []task.Task) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeTasks(f, format, tasks); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

func writeTasks(w io.Writer, format string, tasks []task.Task) error {
	switch format {
	case "ics":
		return calendar.Encode(w, tasks)
	case "xcal":
		return calendar.EncodeXCal(w, tasks)
	case "json":
		records := make([]task.Record, len(tasks))
		for i, t := range tasks {
			records[i] = t.Record()
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	default:
		return fmt.Errorf("unknown format %q (want ics, xcal or json)", format)
	}
}

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Publish the tasks as a subscribable calendar feed",
		Long: `Serve the task file over HTTP:

  GET /tasks.ics   iCalendar feed
  GET /tasks.xml   xCal feed
  GET /agenda      JSON agenda (?date=YYYY-MM-DD&days=N&category=ID)

The task file is re-read whenever it changes on disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				addr, _ := cmd.Flags().GetString("addr")
				a.cfg.Serve.Addr = addr
			}

			src := &fileSource{store: a.store(), app: a}
			if _, err := src.load(); err != nil {
				return err
			}

			handler := server.NewFeedHandler(src, a.logger,
				server.WithClock(a.clock),
				server.WithBasicAuth(a.cfg.Serve.Realm, a.cfg.Serve.Username, a.cfg.Serve.Password),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, a.cfg.Serve.Addr, handler, a.logger, cmd.OutOrStdout())
		},
	}
	cmd.Flags().String("addr", "", "listen address (default serve.addr from config, 127.0.0.1:8080)")
	return cmd
}

func runServer(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger, out io.Writer) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	fmt.Fprintf(out, "Serving tasks on http://%s/tasks.ics\n", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down feed server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// fileSource serves the task file, reloading it when its modification
// time changes. A file that fails to load keeps the last good snapshot.
type fileSource struct {
	store fileStore
	app   *app

	mu      sync.Mutex
	modTime time.Time
	tasks   []task.Task
}

func (s *fileSource) Tasks() []task.Task {
	tasks, err := s.load()
	if err != nil {
		s.app.logger.Error("failed to reload task file", "path", s.store.path, "error", err)
	}
	return tasks
}

func (s *fileSource) load() ([]task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.store.path)
	if err != nil {
		return s.tasks, err
	}
	if s.tasks != nil && info.ModTime().Equal(s.modTime) {
		return s.tasks, nil
	}

	tr, err := s.store.open(s.app.cfg.Tracker, s.app.logger, s.app.clock)
	if err != nil {
		return s.tasks, err
	}
	defer tr.Close()

	s.tasks = tr.Tasks()
	if s.tasks == nil {
		s.tasks = []task.Task{}
	}
	s.modTime = info.ModTime()
	s.app.logger.Debug("task file reloaded", "path", s.store.path, "tasks", len(s.tasks))
	return s.tasks, nil
}
