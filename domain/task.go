package domain

import (
	"math"
	"strings"
	"time"
)

// TaskStatus enumerates the lifecycle states of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "Pending"
	StatusInProgress TaskStatus = "InProgress"
	StatusCompleted  TaskStatus = "Completed"
	StatusCancelled  TaskStatus = "Cancelled"
)

// TaskPriority enumerates urgency levels, ordered by increasing weight.
type TaskPriority string

const (
	PriorityLow      TaskPriority = "Low"
	PriorityMedium   TaskPriority = "Medium"
	PriorityHigh     TaskPriority = "High"
	PriorityCritical TaskPriority = "Critical"
)

// DaysUntilDueNone is the sentinel returned when a task has no due date or
// is already completed.
const DaysUntilDueNone = math.MaxInt32

// Task represents a user-owned activity item.
type Task struct {
	ID          int64        `json:"id"`
	UserID      string       `json:"user_id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	Category    string       `json:"category,omitempty"`
	Tags        string       `json:"tags,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   *time.Time   `json:"updated_at,omitempty"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusCompleted
}

// IsOverdue reports whether the due date falls on a calendar day strictly
// before the reference day. Completed tasks are never overdue. This rule is
// date-only; the statistics overdue count compares full timestamps.
func (t *Task) IsOverdue(now time.Time) bool {
	if t == nil || t.DueDate == nil || t.Status == StatusCompleted {
		return false
	}
	return truncateDay(*t.DueDate).Before(truncateDay(now))
}

// DaysUntilDue returns the calendar-day difference between the due date and
// the reference day, negative once past due, or DaysUntilDueNone when the
// task has no due date or is completed.
func (t *Task) DaysUntilDue(now time.Time) int {
	if t == nil || t.DueDate == nil || t.Status == StatusCompleted {
		return DaysUntilDueNone
	}
	return int(truncateDay(*t.DueDate).Sub(truncateDay(now)).Hours() / 24)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseTaskStatus parses a status name case-insensitively. The boolean is
// false for unrecognized input so filter callers can treat it as absent.
func ParseTaskStatus(s string) (TaskStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return StatusPending, true
	case "inprogress":
		return StatusInProgress, true
	case "completed":
		return StatusCompleted, true
	case "cancelled":
		return StatusCancelled, true
	}
	return "", false
}

// ParseTaskPriority parses a priority name case-insensitively.
func ParseTaskPriority(s string) (TaskPriority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow, true
	case "medium":
		return PriorityMedium, true
	case "high":
		return PriorityHigh, true
	case "critical":
		return PriorityCritical, true
	}
	return "", false
}

// Weight returns the urgency weight 1-4, or 0 for an unknown priority.
func (p TaskPriority) Weight() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityCritical:
		return 4
	}
	return 0
}

// Display returns the human-readable status label.
func (s TaskStatus) Display() string {
	if s == StatusInProgress {
		return "In Progress"
	}
	return string(s)
}

// Display returns the human-readable priority label.
func (p TaskPriority) Display() string {
	return string(p)
}

// SplitTags breaks a stored comma-joined tag string into trimmed, non-empty
// labels.
func SplitTags(tags string) []string {
	if strings.TrimSpace(tags) == "" {
		return []string{}
	}
	parts := strings.Split(tags, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// JoinTags rejoins labels into the stored form, dropping blanks.
func JoinTags(tags []string) string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, ",")
}

// NormalizeTags canonicalizes a raw tag string. Applying it twice yields the
// same result as applying it once.
func NormalizeTags(tags string) string {
	return strings.Join(SplitTags(tags), ",")
}
