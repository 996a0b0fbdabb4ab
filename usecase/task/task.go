package task

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/taskwave/backend/domain"
	"github.com/taskwave/backend/repository"
	"github.com/taskwave/backend/usecase"
)

// Field length bounds enforced on create and update.
const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 1000
	MaxCategoryLen    = 100
	MaxTagsLen        = 500
)

// DueSoonWindow is the horizon used for the due-soon statistic.
const DueSoonWindow = 7 * 24 * time.Hour

// CreateInput carries the client-controllable fields of a new task. The
// owner always comes from the authenticated identity, never from here.
type CreateInput struct {
	Title       string
	Description string
	Status      *domain.TaskStatus
	Priority    *domain.TaskPriority
	DueDate     *time.Time
	Category    string
	Tags        []string
}

// UpdateInput is a partial payload: nil means "leave unchanged". A present
// empty description or category clears the field; a present empty title is
// ignored rather than applied.
type UpdateInput struct {
	Title       *string
	Description *string
	Status      *domain.TaskStatus
	Priority    *domain.TaskPriority
	DueDate     *time.Time
	Category    *string
	Tags        *[]string
}

// FilterInput composes optional conjunctive criteria. Nil fields impose no
// constraint.
type FilterInput struct {
	Status      *domain.TaskStatus
	Priority    *domain.TaskPriority
	Category    string
	DueDateFrom *time.Time
	DueDateTo   *time.Time
}

// Statistics summarizes a user's full task set in a single pass.
type Statistics struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	Pending        int     `json:"pending"`
	InProgress     int     `json:"in_progress"`
	Overdue        int     `json:"overdue"`
	DueSoon        int     `json:"due_soon"`
	CompletionRate float64 `json:"completion_rate"`
}

// UseCase is the sole authorization point for task access: every read and
// mutation is scoped to the owning user, and an ownership mismatch is
// indistinguishable from a missing task.
type UseCase struct {
	tasks    repository.TaskRepository
	users    repository.UserRepository
	activity usecase.ActivityRecorder
	logger   *zap.Logger
	now      func() time.Time
}

func New(tasks repository.TaskRepository, users repository.UserRepository, activity usecase.ActivityRecorder, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:    tasks,
		users:    users,
		activity: activity,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the time source. Used by tests.
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	if now != nil {
		uc.now = now
	}
	return uc
}

// Now exposes the use case's time source so projections stay consistent
// with it.
func (uc *UseCase) Now() time.Time {
	return uc.now()
}

// Get fetches a task owned by userID. Absent and not-owned both yield
// ErrTaskNotFound.
func (uc *UseCase) Get(ctx context.Context, id int64, userID string) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, uc.storeFailure("get task", err)
	}
	if task.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

// List returns all tasks owned by userID, newest created first.
func (uc *UseCase) List(ctx context.Context, userID string) ([]domain.Task, error) {
	tasks, err := uc.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, uc.storeFailure("list tasks", err)
	}
	return tasks, nil
}

// Filter applies the conjunctive criteria on top of the implicit owner scope.
func (uc *UseCase) Filter(ctx context.Context, userID string, input FilterInput) ([]domain.Task, error) {
	tasks, err := uc.tasks.Filter(ctx, repository.TaskFilter{
		UserID:      userID,
		Status:      input.Status,
		Priority:    input.Priority,
		Category:    input.Category,
		DueDateFrom: input.DueDateFrom,
		DueDateTo:   input.DueDateTo,
	})
	if err != nil {
		return nil, uc.storeFailure("filter tasks", err)
	}
	return tasks, nil
}

// Create validates the input, verifies the owner exists, applies defaults
// (Pending / Medium) and persists the task. Client-supplied ids and owners
// are never honored.
func (uc *UseCase) Create(ctx context.Context, userID string, input CreateInput) (*domain.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, domain.ErrTitleRequired
	}
	if err := validateLengths(title, input.Description, input.Category, domain.JoinTags(input.Tags)); err != nil {
		return nil, err
	}

	exists, err := uc.users.Exists(ctx, userID)
	if err != nil {
		return nil, uc.storeFailure("check owner", err)
	}
	if !exists {
		return nil, domain.ErrInvalidOwner
	}

	task := &domain.Task{
		UserID:      userID,
		Title:       title,
		Description: input.Description,
		Status:      domain.StatusPending,
		Priority:    domain.PriorityMedium,
		DueDate:     input.DueDate,
		Category:    input.Category,
		Tags:        domain.JoinTags(input.Tags),
		CreatedAt:   uc.now(),
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, uc.storeFailure("create task", err)
	}

	uc.record(ctx, userID, usecase.ActionCreate, created.ID)
	return created, nil
}

// Update applies a partial payload to a task owned by userID. UpdatedAt is
// refreshed on every accepted update, even when nothing changed value.
func (uc *UseCase) Update(ctx context.Context, id int64, userID string, input UpdateInput) (*domain.Task, error) {
	task, err := uc.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if title := strings.TrimSpace(*input.Title); title != "" {
			task.Title = title
		}
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.Category != nil {
		task.Category = *input.Category
	}
	if input.Tags != nil {
		task.Tags = domain.JoinTags(*input.Tags)
	}

	if err := validateLengths(task.Title, task.Description, task.Category, task.Tags); err != nil {
		return nil, err
	}

	updatedAt := uc.now()
	task.UpdatedAt = &updatedAt

	if err := uc.tasks.Update(ctx, task); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, uc.storeFailure("update task", err)
	}

	uc.record(ctx, userID, usecase.ActionUpdate, task.ID)
	return task, nil
}

// Delete removes a task owned by userID. A missing or foreign task yields
// false, not an error; true means a row was actually removed.
func (uc *UseCase) Delete(ctx context.Context, id int64, userID string) (bool, error) {
	if _, err := uc.Get(ctx, id, userID); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return false, nil
		}
		return false, err
	}

	deleted, err := uc.tasks.Delete(ctx, id)
	if err != nil {
		return false, uc.storeFailure("delete task", err)
	}
	if deleted {
		uc.record(ctx, userID, usecase.ActionDelete, id)
	}
	return deleted, nil
}

// MarkCompleted transitions an owned task to Completed.
func (uc *UseCase) MarkCompleted(ctx context.Context, id int64, userID string) (bool, error) {
	return uc.transition(ctx, id, userID, domain.StatusCompleted)
}

// MarkInProgress transitions an owned task to InProgress.
func (uc *UseCase) MarkInProgress(ctx context.Context, id int64, userID string) (bool, error) {
	return uc.transition(ctx, id, userID, domain.StatusInProgress)
}

func (uc *UseCase) transition(ctx context.Context, id int64, userID string, status domain.TaskStatus) (bool, error) {
	task, err := uc.Get(ctx, id, userID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return false, nil
		}
		return false, err
	}

	task.Status = status
	updatedAt := uc.now()
	task.UpdatedAt = &updatedAt

	if err := uc.tasks.Update(ctx, task); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return false, nil
		}
		return false, uc.storeFailure("update task status", err)
	}

	uc.record(ctx, userID, usecase.ActionUpdate, id)
	return true, nil
}

// Statistics computes the aggregate counters over the user's full task set.
// Overdue and due-soon compare full timestamps here, unlike the date-only
// per-task overdue projection; both rules are deliberate.
func (uc *UseCase) Statistics(ctx context.Context, userID string) (Statistics, error) {
	tasks, err := uc.tasks.ListByUser(ctx, userID)
	if err != nil {
		return Statistics{}, uc.storeFailure("load tasks for statistics", err)
	}

	now := uc.now()
	horizon := now.Add(DueSoonWindow)

	stats := Statistics{Total: len(tasks)}
	for i := range tasks {
		t := &tasks[i]
		switch t.Status {
		case domain.StatusCompleted:
			stats.Completed++
		case domain.StatusPending:
			stats.Pending++
		case domain.StatusInProgress:
			stats.InProgress++
		}
		if t.DueDate == nil || t.Status == domain.StatusCompleted {
			continue
		}
		if t.DueDate.Before(now) {
			stats.Overdue++
		} else if !t.DueDate.After(horizon) {
			stats.DueSoon++
		}
	}

	if stats.Total > 0 {
		rate := float64(stats.Completed) / float64(stats.Total) * 100
		stats.CompletionRate = math.Round(rate*100) / 100
	}
	return stats, nil
}

// validateLengths bounds are in characters, not bytes, so multibyte input
// is not penalized.
func validateLengths(title, description, category, tags string) error {
	switch {
	case utf8.RuneCountInString(title) > MaxTitleLen:
		return domain.ErrTitleTooLong
	case utf8.RuneCountInString(description) > MaxDescriptionLen:
		return domain.ErrDescriptionTooLong
	case utf8.RuneCountInString(category) > MaxCategoryLen:
		return domain.ErrCategoryTooLong
	case utf8.RuneCountInString(tags) > MaxTagsLen:
		return domain.ErrTagsTooLong
	}
	return nil
}

func (uc *UseCase) record(ctx context.Context, userID, action string, taskID int64) {
	if uc.activity == nil {
		return
	}
	detail := fmt.Sprintf("task %d", taskID)
	if err := uc.activity.Record(ctx, userID, usecase.EntityTask, action, detail); err != nil {
		uc.logger.Warn("activity recording failed",
			zap.String("action", action),
			zap.Int64("task_id", taskID),
			zap.Error(err))
	}
}

func (uc *UseCase) storeFailure(op string, err error) error {
	uc.logger.Error("task store failure", zap.String("op", op), zap.Error(err))
	return domain.WrapError(domain.ErrCodeInternal, "internal error", err)
}
