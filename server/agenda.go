package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cyp0633/librecur/recurrence"
	"github.com/cyp0633/librecur/task"
)

// AgendaResponse is the JSON body of GET /agenda.
type AgendaResponse struct {
	Start       recurrence.Day `json:"start"`
	Days        int            `json:"days"`
	Occurrences []AgendaItem   `json:"occurrences"`
}

// AgendaItem is one due occurrence of a task.
type AgendaItem struct {
	Date       recurrence.Day `json:"date"`
	TaskID     string         `json:"taskId"`
	Title      string         `json:"title"`
	CategoryID string         `json:"categoryId,omitempty"`
	Rule       string         `json:"rule"`
	Completed  bool           `json:"completed"`
	Minutes    int            `json:"estimatedMinutes,omitempty"`
}

// handleAgenda lists occurrences in [date, date+days]. date defaults to
// today and days to 0; category narrows the result.
func (h *FeedHandler) handleAgenda(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	start := recurrence.DayOf(h.clock())
	if s := query.Get("date"); s != "" {
		d, err := recurrence.ParseDay(s)
		if err != nil {
			h.logger.Info("invalid agenda date", "date", s, "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		start = d
	}

	days := 0
	if s := query.Get("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 || n > MaxAgendaDays {
			h.logger.Info("invalid agenda length", "days", s)
			http.Error(w, "days must be an integer between 0 and "+strconv.Itoa(MaxAgendaDays), http.StatusBadRequest)
			return
		}
		days = n
	}

	tasks := h.source.Tasks()
	if category := query.Get("category"); category != "" {
		tasks = task.InCategory(tasks, category)
	}

	resp := AgendaResponse{Start: start, Days: days, Occurrences: []AgendaItem{}}
	for _, o := range task.Upcoming(tasks, start, days) {
		resp.Occurrences = append(resp.Occurrences, AgendaItem{
			Date:       o.Day,
			TaskID:     o.Task.ID,
			Title:      o.Task.Title,
			CategoryID: o.Task.CategoryID,
			Rule:       o.Task.Describe(),
			Completed:  o.Completed,
			Minutes:    o.Task.EstimatedMinutes,
		})
	}

	w.Header().Set(HeaderContentType, MimeTypeJSON)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to write agenda", "error", err)
	}
}
