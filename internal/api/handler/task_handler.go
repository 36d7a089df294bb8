package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/madunda/task-manager-api/internal/core/ports"
)

// TaskHandler handles HTTP requests for task operations. Every route is
// scoped to the authenticated owner.
type TaskHandler struct {
	tasks ports.TaskService
}

func NewTaskHandler(tasks ports.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

type createTaskRequest struct {
	Description string `json:"description" validate:"required"`
	Completed   bool   `json:"completed"`
}

type updateTaskRequest struct {
	Description *string `json:"description" validate:"omitempty,min=1"`
	Completed   *bool   `json:"completed"`
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := decodeStrict(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.tasks.Create(c.Request().Context(), user.ID, ports.CreateTaskInput{
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}

// List handles GET /tasks with completed/skip/limit/sortBy query parameters.
func (h *TaskHandler) List(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	tasks, err := h.tasks.List(c.Request().Context(), user.ID, ports.ListTasksInput{
		Completed: queryBool(c, "completed"),
		Skip:      queryInt(c, "skip"),
		Limit:     queryInt(c, "limit"),
		SortBy:    c.QueryParam("sortBy"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

// Get handles GET /tasks/:id. A task belonging to someone else is a 404, not
// a 403, so task ids cannot be probed.
func (h *TaskHandler) Get(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	task, err := h.tasks.Get(c.Request().Context(), user.ID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// Update handles PATCH /tasks/:id with the {description, completed} allow-list.
func (h *TaskHandler) Update(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req updateTaskRequest
	if err := decodeStrict(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.tasks.Update(c.Request().Context(), user.ID, c.Param("id"), ports.UpdateTaskInput{
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// Delete handles DELETE /tasks/:id.
func (h *TaskHandler) Delete(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	task, err := h.tasks.Get(c.Request().Context(), user.ID, c.Param("id"))
	if err != nil {
		return err
	}
	if err := h.tasks.Delete(c.Request().Context(), user.ID, task.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}
