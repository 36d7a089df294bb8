package ports

import (
	"context"

	"github.com/madunda/task-manager-api/internal/core/domain"
)

// ListTasksFilter narrows and pages a task listing for one owner.
type ListTasksFilter struct {
	Completed *bool
	Skip      int64
	Limit     int64
	Sort      *SortSpec
}

// TaskRepository defines persistence for tasks. Every lookup is scoped to an
// owner id so one user can never reach another user's tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	FindByIDAndOwner(ctx context.Context, id, owner string) (*domain.Task, error)
	ListByOwner(ctx context.Context, owner string, filter ListTasksFilter) ([]domain.Task, error)
	Update(ctx context.Context, task *domain.Task) (*domain.Task, error)
	DeleteByIDAndOwner(ctx context.Context, id, owner string) error
	DeleteByOwner(ctx context.Context, owner string) error
}
