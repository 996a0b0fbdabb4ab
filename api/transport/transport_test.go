package transport

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/taskwave/backend/domain"
)

func TestParseFilterQueryLenient(t *testing.T) {
	query := map[string]string{
		"status":        "banana",
		"priority":      "urgent",
		"category":      "work",
		"due_date_from": "not-a-date",
		"due_date_to":   "2026-07-01T00:00:00Z",
	}
	in := ParseFilterQuery(func(key string) string { return query[key] })

	if in.Status != nil {
		t.Errorf("unrecognized status must impose no constraint, got %v", *in.Status)
	}
	if in.Priority != nil {
		t.Errorf("unrecognized priority must impose no constraint, got %v", *in.Priority)
	}
	if in.Category != "work" {
		t.Errorf("category = %q", in.Category)
	}
	if in.DueDateFrom != nil {
		t.Error("malformed date must be ignored")
	}
	if in.DueDateTo == nil || !in.DueDateTo.Equal(time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("due_date_to = %v", in.DueDateTo)
	}
}

func TestParseFilterQueryDateParamNames(t *testing.T) {
	from := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)

	camel := map[string]string{
		"dueDateFrom": "2026-07-01T00:00:00Z",
		"dueDateTo":   "2026-07-31T00:00:00Z",
	}
	in := ParseFilterQuery(func(key string) string { return camel[key] })
	if in.DueDateFrom == nil || !in.DueDateFrom.Equal(from) {
		t.Errorf("dueDateFrom = %v, want %v", in.DueDateFrom, from)
	}
	if in.DueDateTo == nil || !in.DueDateTo.Equal(to) {
		t.Errorf("dueDateTo = %v, want %v", in.DueDateTo, to)
	}

	snake := map[string]string{
		"due_date_from": "2026-07-01T00:00:00Z",
		"due_date_to":   "2026-07-31T00:00:00Z",
	}
	in = ParseFilterQuery(func(key string) string { return snake[key] })
	if in.DueDateFrom == nil || !in.DueDateFrom.Equal(from) {
		t.Errorf("due_date_from alias = %v, want %v", in.DueDateFrom, from)
	}
	if in.DueDateTo == nil || !in.DueDateTo.Equal(to) {
		t.Errorf("due_date_to alias = %v, want %v", in.DueDateTo, to)
	}
}

func TestParseFilterQueryRecognizedValues(t *testing.T) {
	query := map[string]string{"status": "InProgress", "priority": "high"}
	in := ParseFilterQuery(func(key string) string { return query[key] })

	if in.Status == nil || *in.Status != domain.StatusInProgress {
		t.Errorf("status = %v, want InProgress", in.Status)
	}
	if in.Priority == nil || *in.Priority != domain.PriorityHigh {
		t.Errorf("priority = %v, want High", in.Priority)
	}
}

func TestCreateRequestRejectsUnknownEnums(t *testing.T) {
	req := CreateTaskRequest{Title: "x", Status: "someday"}
	if _, err := req.ToInput(); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Errorf("unknown status: err = %v, want INVALID", err)
	}

	req = CreateTaskRequest{Title: "x", Priority: "asap"}
	if _, err := req.ToInput(); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Errorf("unknown priority: err = %v, want INVALID", err)
	}

	req = CreateTaskRequest{Title: "x"}
	in, err := req.ToInput()
	if err != nil {
		t.Fatalf("ToInput: %v", err)
	}
	if in.Status != nil || in.Priority != nil {
		t.Error("omitted enums must stay nil so defaults apply downstream")
	}
}

func TestUpdateRequestDistinguishesAbsentFromEmpty(t *testing.T) {
	var req UpdateTaskRequest
	if err := json.Unmarshal([]byte(`{"description":""}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	in, err := req.ToInput()
	if err != nil {
		t.Fatalf("ToInput: %v", err)
	}
	if in.Description == nil || *in.Description != "" {
		t.Error("present empty description must survive as an empty pointer")
	}
	if in.Title != nil || in.Status != nil || in.Category != nil || in.Tags != nil {
		t.Error("absent fields must stay nil")
	}
}

func TestNewTaskResponseProjection(t *testing.T) {
	now := time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, -2)
	task := &domain.Task{
		ID:        7,
		UserID:    "alice",
		Title:     "Report",
		Status:    domain.StatusInProgress,
		Priority:  domain.PriorityHigh,
		DueDate:   &due,
		Tags:      "work,urgent",
		CreatedAt: now.AddDate(0, 0, -5),
	}

	resp := NewTaskResponse(task, now)
	if resp.StatusDisplay != "In Progress" {
		t.Errorf("status display = %q", resp.StatusDisplay)
	}
	if resp.PriorityWeight != 3 {
		t.Errorf("priority weight = %d, want 3", resp.PriorityWeight)
	}
	if len(resp.Tags) != 2 || resp.Tags[0] != "work" || resp.Tags[1] != "urgent" {
		t.Errorf("tags = %v", resp.Tags)
	}
	if !resp.IsOverdue {
		t.Error("task due two days ago must project as overdue")
	}
	if resp.DaysUntilDue != -2 {
		t.Errorf("days until due = %d, want -2", resp.DaysUntilDue)
	}
}

func TestTaskResponseTagsNeverNull(t *testing.T) {
	now := time.Now()
	resp := NewTaskResponse(&domain.Task{Title: "bare"}, now)

	body, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := decoded["tags"].([]interface{}); !ok {
		t.Errorf("tags field = %v, want an array even when empty", decoded["tags"])
	}
}

func TestEnvelopeShape(t *testing.T) {
	env := NewSuccess(map[string]int{"n": 1}, "ok")
	if !env.Success || env.Message != "ok" || env.Timestamp.IsZero() {
		t.Errorf("success envelope = %+v", env)
	}

	fail := NewError("boom", "INTERNAL")
	if fail.Success || fail.Message != "boom" || fail.Errors != "INTERNAL" {
		t.Errorf("error envelope = %+v", fail)
	}

	body, err := json.Marshal(fail)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := decoded["data"]; ok {
		t.Error("nil data must be omitted from the wire form")
	}
	if decoded["success"] != false {
		t.Errorf("success = %v", decoded["success"])
	}
}
