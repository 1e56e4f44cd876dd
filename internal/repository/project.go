package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/arisetyawan/multi-tenant-task-platform/internal/apperrors"
	"github.com/arisetyawan/multi-tenant-task-platform/internal/models"
)

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (id, tenant_id, name, description, status, priority, owner_id, due_date, progress_percentage)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	row := r.db.QueryRow(ctx, query,
		project.ID, project.TenantID, project.Name, project.Description,
		project.Status, project.Priority, project.OwnerID, project.DueDate,
		project.ProgressPercentage)

	if err := row.Scan(&project.CreatedAt, &project.UpdatedAt); err != nil {
		r.logger.Error("Failed to create project", zap.Error(err), zap.String("name", project.Name))
		return fmt.Errorf("failed to create project: %w", err)
	}

	r.logger.Debug("Project created",
		zap.String("id", project.ID.String()),
		zap.String("tenant_id", project.TenantID.String()))
	return nil
}

// GetByID scopes the lookup to the tenant so one tenant can never read
// another tenant's project by guessing IDs.
func (r *ProjectRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Project, error) {
	query := `
		SELECT id, tenant_id, name, description, status, priority, owner_id, due_date, progress_percentage, created_at, updated_at
		FROM projects WHERE id = $1 AND tenant_id = $2`

	project, err := r.scanProject(r.db.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &apperrors.NotFoundError{Resource: "project", ID: id}
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

func (r *ProjectRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Project, error) {
	query := `
		SELECT id, tenant_id, name, description, status, priority, owner_id, due_date, progress_percentage, created_at, updated_at
		FROM projects WHERE tenant_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		project, err := r.scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return projects, nil
}

func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	query := `
		UPDATE projects
		SET name = $1, description = $2, status = $3, priority = $4, owner_id = $5,
		    due_date = $6, progress_percentage = $7, updated_at = NOW()
		WHERE id = $8 AND tenant_id = $9
		RETURNING updated_at`

	row := r.db.QueryRow(ctx, query,
		project.Name, project.Description, project.Status, project.Priority,
		project.OwnerID, project.DueDate, project.ProgressPercentage,
		project.ID, project.TenantID)

	if err := row.Scan(&project.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &apperrors.NotFoundError{Resource: "project", ID: project.ID}
		}
		return fmt.Errorf("failed to update project: %w", err)
	}

	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &apperrors.NotFoundError{Resource: "project", ID: id}
	}

	r.logger.Info("Project deleted", zap.String("id", id.String()), zap.String("tenant_id", tenantID.String()))
	return nil
}

func (r *ProjectRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM projects WHERE tenant_id = $1`, tenantID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return count, nil
}

func (r *ProjectRepository) scanProject(row pgx.Row) (*models.Project, error) {
	var project models.Project
	err := row.Scan(
		&project.ID, &project.TenantID, &project.Name, &project.Description,
		&project.Status, &project.Priority, &project.OwnerID, &project.DueDate,
		&project.ProgressPercentage, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &project, nil
}
