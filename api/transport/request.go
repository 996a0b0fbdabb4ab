package transport

import (
	"time"

	"github.com/taskwave/backend/domain"
	"github.com/taskwave/backend/usecase/task"
)

// CreateTaskRequest is the body accepted by the create endpoint. Status and
// priority are optional. Due dates are RFC 3339 timestamps.
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
}

// ToInput converts the request into a usecase input. A non-empty status or
// priority that does not name a known value is rejected.
func (r *CreateTaskRequest) ToInput() (task.CreateInput, error) {
	in := task.CreateInput{
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		Category:    r.Category,
		Tags:        r.Tags,
	}
	if r.Status != "" {
		st, ok := domain.ParseTaskStatus(r.Status)
		if !ok {
			return task.CreateInput{}, domain.NewError(domain.ErrCodeInvalid, "unknown status: "+r.Status)
		}
		in.Status = &st
	}
	if r.Priority != "" {
		pr, ok := domain.ParseTaskPriority(r.Priority)
		if !ok {
			return task.CreateInput{}, domain.NewError(domain.ErrCodeInvalid, "unknown priority: "+r.Priority)
		}
		in.Priority = &pr
	}
	return in, nil
}

// UpdateTaskRequest carries a partial update. Absent fields leave the stored
// value untouched. A present empty description, category or tags clears it.
type UpdateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	Category    *string    `json:"category"`
	Tags        *[]string  `json:"tags"`
}

// ToInput converts the request into a usecase input, validating any present
// status or priority value.
func (r *UpdateTaskRequest) ToInput() (task.UpdateInput, error) {
	in := task.UpdateInput{
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		Category:    r.Category,
		Tags:        r.Tags,
	}
	if r.Status != nil {
		st, ok := domain.ParseTaskStatus(*r.Status)
		if !ok {
			return task.UpdateInput{}, domain.NewError(domain.ErrCodeInvalid, "unknown status: "+*r.Status)
		}
		in.Status = &st
	}
	if r.Priority != nil {
		pr, ok := domain.ParseTaskPriority(*r.Priority)
		if !ok {
			return task.UpdateInput{}, domain.NewError(domain.ErrCodeInvalid, "unknown priority: "+*r.Priority)
		}
		in.Priority = &pr
	}
	return in, nil
}

// ParseFilterQuery builds a filter input from URL query values. Parsing is
// lenient: an unrecognized status or priority simply contributes no
// constraint, and a malformed date is ignored.
func ParseFilterQuery(get func(key string) string) task.FilterInput {
	var in task.FilterInput
	if v := get("status"); v != "" {
		if st, ok := domain.ParseTaskStatus(v); ok {
			in.Status = &st
		}
	}
	if v := get("priority"); v != "" {
		if pr, ok := domain.ParseTaskPriority(v); ok {
			in.Priority = &pr
		}
	}
	in.Category = get("category")
	if v := firstValue(get, "dueDateFrom", "due_date_from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			in.DueDateFrom = &t
		}
	}
	if v := firstValue(get, "dueDateTo", "due_date_to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			in.DueDateTo = &t
		}
	}
	return in
}

func firstValue(get func(key string) string, keys ...string) string {
	for _, key := range keys {
		if v := get(key); v != "" {
			return v
		}
	}
	return ""
}
