package transport

import (
	"encoding/json"
	"time"

	"github.com/taskwave/backend/domain"
)

// Envelope is the uniform wrapper applied to every API response.
type Envelope struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message"`
	Errors    interface{} `json:"errors,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}, message string) Envelope {
	return Envelope{
		Success:   true,
		Data:      data,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// NewError returns a failure envelope with optional detail.
func NewError(message string, errs interface{}) Envelope {
	return Envelope{
		Success:   false,
		Message:   message,
		Errors:    errs,
		Timestamp: time.Now().UTC(),
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// TaskResponse projects a task for clients: normalized tag slice, display
// labels and the derived due-date fields, which are computed at response
// time and never stored.
type TaskResponse struct {
	ID              int64      `json:"id"`
	UserID          string     `json:"user_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Status          string     `json:"status"`
	StatusDisplay   string     `json:"status_display"`
	Priority        string     `json:"priority"`
	PriorityDisplay string     `json:"priority_display"`
	PriorityWeight  int        `json:"priority_weight"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	Category        string     `json:"category,omitempty"`
	Tags            []string   `json:"tags"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
	IsOverdue       bool       `json:"is_overdue"`
	DaysUntilDue    int        `json:"days_until_due"`
}

// NewTaskResponse builds the client projection of a task relative to now.
func NewTaskResponse(t *domain.Task, now time.Time) TaskResponse {
	return TaskResponse{
		ID:              t.ID,
		UserID:          t.UserID,
		Title:           t.Title,
		Description:     t.Description,
		Status:          string(t.Status),
		StatusDisplay:   t.Status.Display(),
		Priority:        string(t.Priority),
		PriorityDisplay: t.Priority.Display(),
		PriorityWeight:  t.Priority.Weight(),
		DueDate:         t.DueDate,
		Category:        t.Category,
		Tags:            domain.SplitTags(t.Tags),
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
		IsOverdue:       t.IsOverdue(now),
		DaysUntilDue:    t.DaysUntilDue(now),
	}
}

// NewTaskListResponse projects a slice of tasks, preserving order.
func NewTaskListResponse(tasks []domain.Task, now time.Time) []TaskResponse {
	out := make([]TaskResponse, len(tasks))
	for i := range tasks {
		out[i] = NewTaskResponse(&tasks[i], now)
	}
	return out
}
