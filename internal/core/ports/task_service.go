package ports

import (
	"context"

	"github.com/madunda/task-manager-api/internal/core/domain"
)

// CreateTaskInput carries the allow-listed task creation fields.
type CreateTaskInput struct {
	Description string
	Completed   bool
}

// UpdateTaskInput carries the allow-listed task update fields; nil means
// "leave as is".
type UpdateTaskInput struct {
	Description *string
	Completed   *bool
}

// ListTasksInput mirrors the task listing query parameters.
type ListTasksInput struct {
	Completed *bool
	Skip      int64
	Limit     int64
	SortBy    string
}

type TaskService interface {
	Create(ctx context.Context, owner string, input CreateTaskInput) (*domain.Task, error)
	Get(ctx context.Context, owner, id string) (*domain.Task, error)
	List(ctx context.Context, owner string, input ListTasksInput) ([]domain.Task, error)
	Update(ctx context.Context, owner, id string, input UpdateTaskInput) (*domain.Task, error)
	Delete(ctx context.Context, owner, id string) error
}
