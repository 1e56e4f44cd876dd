// Package task implements tenant-scoped task management.
package task

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arisetyawan/multi-tenant-task-platform/internal/models"
	"github.com/arisetyawan/multi-tenant-task-platform/internal/tenantctx"
)

type Repository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Task, error)
	ListByProject(ctx context.Context, tenantID, projectID uuid.UUID) ([]models.Task, error)
	ListByStatus(ctx context.Context, tenantID uuid.UUID, status models.TaskStatus) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// ProjectStore verifies the parent project exists in the tenant's scope
// before a task is attached to it.
type ProjectStore interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Project, error)
}

type AdmissionGate interface {
	CheckAndAdmit(ctx context.Context, tenantID uuid.UUID) error
}

type EventSink interface {
	Publish(ctx context.Context, tenantID uuid.UUID, eventType string, resourceID uuid.UUID, resourceType string, payload map[string]any)
}

type Service struct {
	repo     Repository
	projects ProjectStore
	gate     AdmissionGate
	events   EventSink
	logger   *zap.Logger
}

func NewService(repo Repository, projects ProjectStore, gate AdmissionGate, events EventSink, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		projects: projects,
		gate:     gate,
		events:   events,
		logger:   logger,
	}
}

// Create admits the task through the quota gate, verifies the parent project
// belongs to the tenant, persists, then publishes task.created.
func (s *Service) Create(ctx context.Context, req *models.CreateTaskRequest) (*models.Task, error) {
	t, err := tenantctx.MustFrom(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.gate.CheckAndAdmit(ctx, t.ID); err != nil {
		return nil, err
	}

	if _, err := s.projects.GetByID(ctx, t.ID, req.ProjectID); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.TaskTodo
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	task := &models.Task{
		ID:          uuid.New(),
		TenantID:    t.ID,
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Info("Task created",
		zap.String("task_id", task.ID.String()),
		zap.String("project_id", task.ProjectID.String()),
		zap.String("tenant_id", t.ID.String()))

	s.events.Publish(ctx, t.ID, "task.created", task.ID, "task", map[string]any{
		"title":      task.Title,
		"project_id": task.ProjectID.String(),
		"status":     string(task.Status),
		"priority":   string(task.Priority),
	})

	return task, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	t, err := tenantctx.MustFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, t.ID, id)
}

func (s *Service) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Task, error) {
	t, err := tenantctx.MustFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByProject(ctx, t.ID, projectID)
}

func (s *Service) ListByStatus(ctx context.Context, status models.TaskStatus) ([]models.Task, error) {
	t, err := tenantctx.MustFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByStatus(ctx, t.ID, status)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	t, err := tenantctx.MustFrom(ctx)
	if err != nil {
		return 0, err
	}
	return s.repo.CountByTenant(ctx, t.ID)
}

// Update applies the non-nil fields of req. task.updated carries the old/new
// change map; a status transition additionally publishes task.status.changed,
// and a transition into COMPLETED also publishes task.completed.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *models.UpdateTaskRequest) (*models.Task, error) {
	t, err := tenantctx.MustFrom(ctx)
	if err != nil {
		return nil, err
	}

	task, err := s.repo.GetByID(ctx, t.ID, id)
	if err != nil {
		return nil, err
	}

	oldStatus := task.Status
	changes := map[string]any{}

	if req.Title != nil && *req.Title != task.Title {
		changes["title"] = change(task.Title, *req.Title)
		task.Title = *req.Title
	}
	if req.Description != nil && *req.Description != task.Description {
		changes["description"] = change(task.Description, *req.Description)
		task.Description = *req.Description
	}
	if req.Status != nil && *req.Status != task.Status {
		changes["status"] = change(string(task.Status), string(*req.Status))
		task.Status = *req.Status
	}
	if req.Priority != nil && *req.Priority != task.Priority {
		changes["priority"] = change(string(task.Priority), string(*req.Priority))
		task.Priority = *req.Priority
	}
	if req.AssigneeID != nil && !equalUUID(req.AssigneeID, task.AssigneeID) {
		changes["assignee_id"] = change(formatUUID(task.AssigneeID), req.AssigneeID.String())
		task.AssigneeID = req.AssigneeID
	}
	if req.DueDate != nil && !equalTime(req.DueDate, task.DueDate) {
		changes["due_date"] = change(formatTime(task.DueDate), formatTime(req.DueDate))
		task.DueDate = req.DueDate
	}

	if len(changes) == 0 {
		return task, nil
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info("Task updated",
		zap.String("task_id", task.ID.String()),
		zap.String("tenant_id", t.ID.String()),
		zap.Int("changed_fields", len(changes)))

	s.events.Publish(ctx, t.ID, "task.updated", task.ID, "task", map[string]any{
		"changes": changes,
	})

	if task.Status != oldStatus {
		s.events.Publish(ctx, t.ID, "task.status.changed", task.ID, "task", map[string]any{
			"old_status": string(oldStatus),
			"new_status": string(task.Status),
		})

		if task.Status == models.TaskCompleted {
			s.events.Publish(ctx, t.ID, "task.completed", task.ID, "task", map[string]any{
				"title":      task.Title,
				"project_id": task.ProjectID.String(),
			})
		}
	}

	return task, nil
}

// Delete removes the task and publishes task.deleted after the committed
// delete.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	t, err := tenantctx.MustFrom(ctx)
	if err != nil {
		return err
	}

	task, err := s.repo.GetByID(ctx, t.ID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, t.ID, id); err != nil {
		return err
	}

	s.logger.Info("Task deleted",
		zap.String("task_id", id.String()),
		zap.String("tenant_id", t.ID.String()))

	s.events.Publish(ctx, t.ID, "task.deleted", id, "task", map[string]any{
		"title":      task.Title,
		"project_id": task.ProjectID.String(),
	})

	return nil
}

func change(old, new any) map[string]any {
	return map[string]any{"old": old, "new": new}
}

func equalUUID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func formatUUID(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
