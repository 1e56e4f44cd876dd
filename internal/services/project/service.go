// Package project implements tenant-scoped project management.
package project

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
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Project, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

type AdmissionGate interface {
	CheckAndAdmit(ctx context.Context, tenantID uuid.UUID) error
}

type EventSink interface {
	Publish(ctx context.Context, tenantID uuid.UUID, eventType string, resourceID uuid.UUID, resourceType string, payload map[string]any)
}

// Service resolves the tenant from the request context on every operation.
// A missing tenant binding is a hard error, never a fallback to some default
// scope.
type Service struct {
	repo   Repository
	gate   AdmissionGate
	events EventSink
	logger *zap.Logger
}

func NewService(repo Repository, gate AdmissionGate, events EventSink, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		gate:   gate,
		events: events,
		logger: logger,
	}
}

// Create admits the project through the quota gate, persists it, then
// publishes project.created. The event runs after the committed insert, so a
// publish failure can never roll the project back.
func (s *Service) Create(ctx context.Context, req *models.CreateProjectRequest) (*models.Project, error) {
	t, err := tenantctx.MustFrom(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.gate.CheckAndAdmit(ctx, t.ID); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.ProjectPlanning
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	project := &models.Project{
		ID:          uuid.New(),
		TenantID:    t.ID,
		Name:        req.Name,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		OwnerID:     req.OwnerID,
		DueDate:     req.DueDate,
	}

	if err := s.repo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.logger.Info("Project created",
		zap.String("project_id", project.ID.String()),
		zap.String("tenant_id", t.ID.String()))

	s.events.Publish(ctx, t.ID, "project.created", project.ID, "project", map[string]any{
		"name":     project.Name,
		"status":   string(project.Status),
		"priority": string(project.Priority),
		"owner_id": project.OwnerID.String(),
	})

	return project, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	t, err := tenantctx.MustFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, t.ID, id)
}

func (s *Service) List(ctx context.Context) ([]models.Project, error) {
	t, err := tenantctx.MustFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByTenant(ctx, t.ID)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	t, err := tenantctx.MustFrom(ctx)
	if err != nil {
		return 0, err
	}
	return s.repo.CountByTenant(ctx, t.ID)
}

// Update applies the non-nil fields of req and publishes project.updated with
// an old/new change map. No change means no write and no event.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *models.UpdateProjectRequest) (*models.Project, error) {
	t, err := tenantctx.MustFrom(ctx)
	if err != nil {
		return nil, err
	}

	project, err := s.repo.GetByID(ctx, t.ID, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}

	if req.Name != nil && *req.Name != project.Name {
		changes["name"] = change(project.Name, *req.Name)
		project.Name = *req.Name
	}
	if req.Description != nil && *req.Description != project.Description {
		changes["description"] = change(project.Description, *req.Description)
		project.Description = *req.Description
	}
	if req.Status != nil && *req.Status != project.Status {
		changes["status"] = change(string(project.Status), string(*req.Status))
		project.Status = *req.Status
	}
	if req.Priority != nil && *req.Priority != project.Priority {
		changes["priority"] = change(string(project.Priority), string(*req.Priority))
		project.Priority = *req.Priority
	}
	if req.OwnerID != nil && *req.OwnerID != project.OwnerID {
		changes["owner_id"] = change(project.OwnerID.String(), req.OwnerID.String())
		project.OwnerID = *req.OwnerID
	}
	if req.DueDate != nil && !equalTime(req.DueDate, project.DueDate) {
		changes["due_date"] = change(formatTime(project.DueDate), formatTime(req.DueDate))
		project.DueDate = req.DueDate
	}
	if req.ProgressPercentage != nil && *req.ProgressPercentage != project.ProgressPercentage {
		changes["progress_percentage"] = change(project.ProgressPercentage, *req.ProgressPercentage)
		project.ProgressPercentage = *req.ProgressPercentage
	}

	if len(changes) == 0 {
		return project, nil
	}

	if err := s.repo.Update(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("Project updated",
		zap.String("project_id", project.ID.String()),
		zap.String("tenant_id", t.ID.String()),
		zap.Int("changed_fields", len(changes)))

	s.events.Publish(ctx, t.ID, "project.updated", project.ID, "project", map[string]any{
		"changes": changes,
	})

	return project, nil
}

// Delete removes the project and publishes project.deleted after the
// committed delete.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	t, err := tenantctx.MustFrom(ctx)
	if err != nil {
		return err
	}

	project, err := s.repo.GetByID(ctx, t.ID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, t.ID, id); err != nil {
		return err
	}

	s.logger.Info("Project deleted",
		zap.String("project_id", id.String()),
		zap.String("tenant_id", t.ID.String()))

	s.events.Publish(ctx, t.ID, "project.deleted", id, "project", map[string]any{
		"name": project.Name,
	})

	return nil
}

func change(old, new any) map[string]any {
	return map[string]any{"old": old, "new": new}
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
