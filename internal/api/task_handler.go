package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arisetyawan/multi-tenant-task-platform/internal/models"
)

// TaskServiceInterface defines the methods required by the handler
type TaskServiceInterface interface {
	Create(ctx context.Context, req *models.CreateTaskRequest) (*models.Task, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Task, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Task, error)
	ListByStatus(ctx context.Context, status models.TaskStatus) ([]models.Task, error)
	Update(ctx context.Context, id uuid.UUID, req *models.UpdateTaskRequest) (*models.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type TaskHandler struct {
	tasks  TaskServiceInterface
	logger *zap.Logger
}

func NewTaskHandler(tasks TaskServiceInterface, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:  tasks,
		logger: logger,
	}
}

// CreateTask godoc
// @Summary Create a task
// @Description Create a task in one of the current tenant's projects, subject to quota
// @Tags tasks
// @Accept json
// @Produce json
// @Param task body models.CreateTaskRequest true "Task creation request"
// @Success 201 {object} models.Task
// @Failure 400 {object} ErrorResponse
// @Failure 402 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tasks [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req models.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("Failed to create task", zap.Error(err), zap.String("title", req.Title))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// GetTask godoc
// @Summary Get a task by ID
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} models.Task
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid task ID format"})
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// ListTasks godoc
// @Summary List the current tenant's tasks
// @Description Filter by status with ?status=, or by project with ?project_id=
// @Tags tasks
// @Produce json
// @Param status query string false "Task status filter"
// @Param project_id query string false "Project ID filter"
// @Success 200 {array} models.Task
// @Failure 400 {object} ErrorResponse
// @Router /tasks [get]
func (h *TaskHandler) ListTasks(c *gin.Context) {
	if projectParam := c.Query("project_id"); projectParam != "" {
		projectID, err := uuid.Parse(projectParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid project ID format"})
			return
		}

		tasks, err := h.tasks.ListByProject(c.Request.Context(), projectID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, tasks)
		return
	}

	statusParam := c.Query("status")
	if statusParam == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "status or project_id query parameter required"})
		return
	}

	tasks, err := h.tasks.ListByStatus(c.Request.Context(), models.TaskStatus(statusParam))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tasks)
}

// ListProjectTasks godoc
// @Summary List the tasks of one project
// @Tags tasks
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {array} models.Task
// @Failure 400 {object} ErrorResponse
// @Router /projects/{id}/tasks [get]
func (h *TaskHandler) ListProjectTasks(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid project ID format"})
		return
	}

	tasks, err := h.tasks.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tasks)
}

// UpdateTask godoc
// @Summary Update a task
// @Description Apply a partial update; status transitions are tracked
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param task body models.UpdateTaskRequest true "Task update request"
// @Success 200 {object} models.Task
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tasks/{id} [put]
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid task ID format"})
		return
	}

	var req models.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.logger.Error("Failed to update task", zap.Error(err), zap.String("id", id.String()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// DeleteTask godoc
// @Summary Delete a task
// @Tags tasks
// @Param id path string true "Task ID"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid task ID format"})
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("Failed to delete task", zap.Error(err), zap.String("id", id.String()))
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
