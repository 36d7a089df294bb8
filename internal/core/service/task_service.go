package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/madunda/task-manager-api/internal/core/domain"
	"github.com/madunda/task-manager-api/internal/core/ports"
)

// TaskService implements owner-scoped task CRUD.
type TaskService struct {
	tasks  ports.TaskRepository
	logger zerolog.Logger
}

func NewTaskService(tasks ports.TaskRepository, logger zerolog.Logger) *TaskService {
	return &TaskService{tasks: tasks, logger: logger}
}

func (s *TaskService) Create(ctx context.Context, owner string, input ports.CreateTaskInput) (*domain.Task, error) {
	now := time.Now().UTC()
	task := &domain.Task{
		Description: input.Description,
		Completed:   input.Completed,
		Owner:       owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("task_id", created.ID).Str("owner", owner).Msg("task created")
	return created, nil
}

func (s *TaskService) Get(ctx context.Context, owner, id string) (*domain.Task, error) {
	return s.tasks.FindByIDAndOwner(ctx, id, owner)
}

func (s *TaskService) List(ctx context.Context, owner string, input ports.ListTasksInput) ([]domain.Task, error) {
	return s.tasks.ListByOwner(ctx, owner, ports.ListTasksFilter{
		Completed: input.Completed,
		Skip:      input.Skip,
		Limit:     input.Limit,
		Sort:      parseSort(input.SortBy),
	})
}

func (s *TaskService) Update(ctx context.Context, owner, id string, input ports.UpdateTaskInput) (*domain.Task, error) {
	task, err := s.tasks.FindByIDAndOwner(ctx, id, owner)
	if err != nil {
		return nil, err
	}

	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Completed != nil {
		task.Completed = *input.Completed
	}
	task.UpdatedAt = time.Now().UTC()

	return s.tasks.Update(ctx, task)
}

func (s *TaskService) Delete(ctx context.Context, owner, id string) error {
	return s.tasks.DeleteByIDAndOwner(ctx, id, owner)
}
