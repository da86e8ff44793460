package server

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cyp0633/librecur/calendar"
	"github.com/cyp0633/librecur/task"
	"github.com/emersion/go-ical"
)

const (
	// HTTP headers
	HeaderContentType = "Content-Type"
	HeaderETag        = "ETag"

	// MIME types
	MimeTypeCalendar = "text/calendar; charset=utf-8"
	MimeTypeXCal     = "application/calendar+xml; charset=utf-8"
	MimeTypeJSON     = "application/json; charset=utf-8"

	// MaxAgendaDays bounds the days parameter of the agenda.
	MaxAgendaDays = 366
)

// TaskSource provides the working set served by the feed.
// *tracker.Tracker satisfies it.
type TaskSource interface {
	Tasks() []task.Task
}

// FeedHandler serves a read-only view of a task source: the tasks as a
// subscribable iCalendar or xCal feed, and a JSON agenda.
type FeedHandler struct {
	source TaskSource
	mux    *http.ServeMux
	logger *slog.Logger
	clock  func() time.Time
	auth   *basicAuth
}

// Option represents a configuration option for the FeedHandler
type Option func(*FeedHandler)

// WithClock overrides the clock used for DTSTAMP and the default agenda
// day.
func WithClock(clock func() time.Time) Option {
	return func(h *FeedHandler) {
		if clock != nil {
			h.clock = clock
		}
	}
}

// NewFeedHandler creates the feed handler. A nil logger discards logs.
func NewFeedHandler(source TaskSource, logger *slog.Logger, opts ...Option) *FeedHandler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	h := &FeedHandler{
		source: source,
		mux:    http.NewServeMux(),
		logger: logger,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}

	h.mux.HandleFunc("GET /tasks.ics", h.handleICS)
	h.mux.HandleFunc("GET /tasks.xml", h.handleXCal)
	h.mux.HandleFunc("GET /agenda", h.handleAgenda)
	return h
}

// ServeHTTP implements http.Handler interface
func (h *FeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("received request",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	if h.auth != nil {
		if _, ok := h.checkAuth(w, r); !ok {
			return
		}
	}
	h.mux.ServeHTTP(w, r)
}

func (h *FeedHandler) handleICS(w http.ResponseWriter, r *http.Request) {
	tasks := h.source.Tasks()
	cal, ok := h.buildCalendar(w, tasks)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		h.logger.Error("failed to encode calendar", "error", err)
		http.Error(w, "Internal Server Error: Failed to encode calendar", http.StatusInternalServerError)
		return
	}
	h.writeFeed(w, r, tasks, MimeTypeCalendar, buf.Bytes())
}

func (h *FeedHandler) handleXCal(w http.ResponseWriter, r *http.Request) {
	tasks := h.source.Tasks()
	cal, ok := h.buildCalendar(w, tasks)
	if !ok {
		return
	}

	doc, err := calendar.ToXCal(cal)
	if err != nil {
		h.logger.Error("failed to render xCal", "error", err)
		http.Error(w, "Internal Server Error: Failed to encode calendar", http.StatusInternalServerError)
		return
	}
	doc.Indent(2)
	body, err := doc.WriteToBytes()
	if err != nil {
		h.logger.Error("failed to write xCal", "error", err)
		http.Error(w, "Internal Server Error: Failed to encode calendar", http.StatusInternalServerError)
		return
	}
	h.writeFeed(w, r, tasks, MimeTypeXCal, body)
}

func (h *FeedHandler) buildCalendar(w http.ResponseWriter, tasks []task.Task) (*ical.Calendar, bool) {
	cal, err := calendar.NewCalendar(tasks, h.clock())
	if err != nil {
		h.logger.Error("failed to build calendar", "error", err, "tasks", len(tasks))
		http.Error(w, "Internal Server Error: Failed to build calendar", http.StatusInternalServerError)
		return nil, false
	}
	return cal, true
}

// writeFeed answers 304 when the client's ETag still matches the task
// set. The ETag ignores DTSTAMP, which changes on every request.
func (h *FeedHandler) writeFeed(w http.ResponseWriter, r *http.Request, tasks []task.Task, contentType string, body []byte) {
	etag, err := tasksETag(tasks)
	if err != nil {
		h.logger.Error("failed to compute etag", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set(HeaderContentType, contentType)
	w.Header().Set("Content-Length", fmt.Sprint(len(body)))
	w.Header().Set(HeaderETag, etag)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func tasksETag(tasks []task.Task) (string, error) {
	records := make([]task.Record, len(tasks))
	for i, t := range tasks {
		records[i] = t.Record()
	}
	b, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return `"` + hex.EncodeToString(sum[:8]) + `"`, nil
}
