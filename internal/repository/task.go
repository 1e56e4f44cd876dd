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

type TaskRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTaskRepository(db *pgxpool.Pool, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{
		db:     db,
		logger: logger,
	}
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (id, tenant_id, project_id, title, description, status, priority, assignee_id, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	row := r.db.QueryRow(ctx, query,
		task.ID, task.TenantID, task.ProjectID, task.Title, task.Description,
		task.Status, task.Priority, task.AssigneeID, task.DueDate)

	if err := row.Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		r.logger.Error("Failed to create task", zap.Error(err), zap.String("title", task.Title))
		return fmt.Errorf("failed to create task: %w", err)
	}

	r.logger.Debug("Task created",
		zap.String("id", task.ID.String()),
		zap.String("tenant_id", task.TenantID.String()))
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Task, error) {
	query := `
		SELECT id, tenant_id, project_id, title, description, status, priority, assignee_id, due_date, created_at, updated_at
		FROM tasks WHERE id = $1 AND tenant_id = $2`

	task, err := r.scanTask(r.db.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &apperrors.NotFoundError{Resource: "task", ID: id}
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

func (r *TaskRepository) ListByProject(ctx context.Context, tenantID, projectID uuid.UUID) ([]models.Task, error) {
	query := `
		SELECT id, tenant_id, project_id, title, description, status, priority, assignee_id, due_date, created_at, updated_at
		FROM tasks WHERE tenant_id = $1 AND project_id = $2 ORDER BY created_at DESC`

	return r.queryTasks(ctx, query, tenantID, projectID)
}

func (r *TaskRepository) ListByStatus(ctx context.Context, tenantID uuid.UUID, status models.TaskStatus) ([]models.Task, error) {
	query := `
		SELECT id, tenant_id, project_id, title, description, status, priority, assignee_id, due_date, created_at, updated_at
		FROM tasks WHERE tenant_id = $1 AND status = $2 ORDER BY created_at DESC`

	return r.queryTasks(ctx, query, tenantID, status)
}

func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, priority = $4, assignee_id = $5,
		    due_date = $6, updated_at = NOW()
		WHERE id = $7 AND tenant_id = $8
		RETURNING updated_at`

	row := r.db.QueryRow(ctx, query,
		task.Title, task.Description, task.Status, task.Priority,
		task.AssigneeID, task.DueDate, task.ID, task.TenantID)

	if err := row.Scan(&task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &apperrors.NotFoundError{Resource: "task", ID: task.ID}
		}
		return fmt.Errorf("failed to update task: %w", err)
	}

	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &apperrors.NotFoundError{Resource: "task", ID: id}
	}

	r.logger.Info("Task deleted", zap.String("id", id.String()), zap.String("tenant_id", tenantID.String()))
	return nil
}

func (r *TaskRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE tenant_id = $1`, tenantID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

func (r *TaskRepository) queryTasks(ctx context.Context, query string, args ...any) ([]models.Task, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := r.scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepository) scanTask(row pgx.Row) (*models.Task, error) {
	var task models.Task
	err := row.Scan(
		&task.ID, &task.TenantID, &task.ProjectID, &task.Title, &task.Description,
		&task.Status, &task.Priority, &task.AssigneeID, &task.DueDate,
		&task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &task, nil
}
