package repository

import (
	"context"
	"time"

	"github.com/taskwave/backend/domain"
)

// TaskFilter composes optional conjunctive criteria over a user's tasks.
// Nil fields impose no constraint. Category matches exactly, the due-date
// range is inclusive on both ends.
type TaskFilter struct {
	UserID      string
	Status      *domain.TaskStatus
	Priority    *domain.TaskPriority
	Category    string
	DueDateFrom *time.Time
	DueDateTo   *time.Time
}

type TaskRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Task, error)
	Filter(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id int64) (bool, error)
}
