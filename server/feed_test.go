package server

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cyp0633/librecur/calendar"
	"github.com/cyp0633/librecur/recurrence"
	"github.com/cyp0633/librecur/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSource implements TaskSource for testing
type MockSource struct {
	mock.Mock
}

func (m *MockSource) Tasks() []task.Task {
	args := m.Called()
	return args.Get(0).([]task.Task)
}

var testNow = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

func feedTasks(t *testing.T) []task.Task {
	t.Helper()
	start := recurrence.Date(2024, 1, 1)

	daily, err := recurrence.EveryDays(1, start)
	require.NoError(t, err)
	weekly, err := recurrence.EveryWeeks(1, start, time.Tuesday, time.Friday)
	require.NoError(t, err)

	feed, err := task.NewWithID("feed", task.Options{Title: "Feed the cats", CategoryID: "pets", Recurrence: daily, EstimatedMinutes: 5})
	require.NoError(t, err)
	feed = feed.WithCompletion(start, true)
	water, err := task.NewWithID("water", task.Options{Title: "Water outdoor plants", CategoryID: "plants", Recurrence: weekly})
	require.NoError(t, err)
	return []task.Task{feed, water}
}

func newTestHandler(t *testing.T, tasks []task.Task, opts ...Option) (*FeedHandler, *MockSource) {
	t.Helper()
	source := new(MockSource)
	source.On("Tasks").Return(tasks)
	return NewFeedHandler(source, nil, append([]Option{WithClock(func() time.Time { return testNow })}, opts...)...), source
}

func TestHandleFeeds(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		contentType string
		decode      func(body string) ([]task.Task, error)
	}{
		{
			name:        "ics",
			path:        "/tasks.ics",
			contentType: MimeTypeCalendar,
			decode:      func(body string) ([]task.Task, error) { return calendar.Decode(strings.NewReader(body)) },
		},
		{
			name:        "xcal",
			path:        "/tasks.xml",
			contentType: MimeTypeXCal,
			decode:      func(body string) ([]task.Task, error) { return calendar.DecodeXCal(strings.NewReader(body)) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := feedTasks(t)
			h, source := newTestHandler(t, tasks)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tt.contentType, rr.Header().Get(HeaderContentType))
			etag := rr.Header().Get(HeaderETag)
			assert.NotEmpty(t, etag)

			got, err := tt.decode(rr.Body.String())
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, "feed", got[0].ID)
			assert.True(t, got[0].IsCompletedOn(recurrence.Date(2024, 1, 1)))

			// unchanged task set
			req = httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("If-None-Match", etag)
			rr = httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, http.StatusNotModified, rr.Code)
			assert.Empty(t, rr.Body.String())

			source.AssertNumberOfCalls(t, "Tasks", 2)
		})
	}
}

func TestETagTracksChanges(t *testing.T) {
	tasks := feedTasks(t)
	before, err := tasksETag(tasks)
	require.NoError(t, err)

	tasks[1] = tasks[1].WithCompletion(recurrence.Date(2024, 1, 2), true)
	after, err := tasksETag(tasks)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)

	again, err := tasksETag(tasks)
	require.NoError(t, err)
	assert.Equal(t, after, again)
}

func TestHandleAgenda(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantStart  string
		wantItems  []string
	}{
		{"defaults to today", "", http.StatusOK, "2024-01-01", []string{"2024-01-01 feed"}},
		{"range", "?date=2024-01-01&days=2", http.StatusOK, "2024-01-01",
			[]string{"2024-01-01 feed", "2024-01-02 feed", "2024-01-02 water", "2024-01-03 feed"}},
		{"category", "?date=2024-01-01&days=4&category=plants", http.StatusOK, "2024-01-01",
			[]string{"2024-01-02 water", "2024-01-05 water"}},
		{"before start", "?date=2023-12-30&days=1", http.StatusOK, "2023-12-30", []string{}},
		{"malformed date", "?date=01/02/2024", http.StatusBadRequest, "", nil},
		{"negative days", "?days=-1", http.StatusBadRequest, "", nil},
		{"too many days", "?days=367", http.StatusBadRequest, "", nil},
		{"non-numeric days", "?days=week", http.StatusBadRequest, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(t, feedTasks(t))

			req := httptest.NewRequest(http.MethodGet, "/agenda"+tt.query, nil)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}
			assert.Equal(t, MimeTypeJSON, rr.Header().Get(HeaderContentType))

			var resp AgendaResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStart, resp.Start.String())

			items := []string{}
			for _, o := range resp.Occurrences {
				items = append(items, o.Date.String()+" "+o.TaskID)
			}
			assert.Equal(t, tt.wantItems, items)
		})
	}
}

func TestHandleAgenda_Fields(t *testing.T) {
	h, _ := newTestHandler(t, feedTasks(t))

	req := httptest.NewRequest(http.MethodGet, "/agenda?date=2024-01-01", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	items := raw["occurrences"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "2024-01-01", item["date"])
	assert.Equal(t, "Feed the cats", item["title"])
	assert.Equal(t, "Every day", item["rule"])
	assert.Equal(t, true, item["completed"])
	assert.Equal(t, float64(5), item["estimatedMinutes"])
}

func TestRouting(t *testing.T) {
	tests := []struct {
		method     string
		path       string
		wantStatus int
	}{
		{http.MethodPost, "/tasks.ics", http.StatusMethodNotAllowed},
		{http.MethodDelete, "/agenda", http.StatusMethodNotAllowed},
		{http.MethodGet, "/tasks.json", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			h, _ := newTestHandler(t, feedTasks(t))
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestBasicAuth(t *testing.T) {
	basic := func(user, pass string) string {
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Bearer token", http.StatusBadRequest},
		{"bad base64", "Basic !!!", http.StatusBadRequest},
		{"no colon", "Basic " + base64.StdEncoding.EncodeToString([]byte("alice")), http.StatusBadRequest},
		{"wrong password", basic("alice", "nope"), http.StatusUnauthorized},
		{"wrong user", basic("bob", "secret"), http.StatusUnauthorized},
		{"valid", basic("alice", "secret"), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(t, feedTasks(t), WithBasicAuth("", "alice", "secret"))

			req := httptest.NewRequest(http.MethodGet, "/agenda", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, `Basic realm="librecur"`, rr.Header().Get("WWW-Authenticate"))
			}
		})
	}
}
