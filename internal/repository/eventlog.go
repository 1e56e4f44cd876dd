package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/arisetyawan/multi-tenant-task-platform/internal/models"
)

// EventLogRepository is the append-only store for the audit trail. Rows are
// never updated once written; cleanup happens through DeleteOlderThan as a
// batch concern outside the hot path.
type EventLogRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewEventLogRepository(db *pgxpool.Pool, logger *zap.Logger) *EventLogRepository {
	return &EventLogRepository{
		db:     db,
		logger: logger,
	}
}

func (r *EventLogRepository) Create(ctx context.Context, entry *models.EventLog) error {
	payload, err := marshalJSONB(entry.EventPayload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	actionResult, err := marshalJSONB(entry.ActionResult)
	if err != nil {
		return fmt.Errorf("failed to marshal action result: %w", err)
	}

	query := `
		INSERT INTO event_logs (id, tenant_id, automation_rule_id, event_type, action_type, status,
			event_payload, action_result, error_message, error_stack_trace, execution_duration_ms,
			resource_id, resource_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at`

	row := r.db.QueryRow(ctx, query,
		entry.ID, entry.TenantID, entry.AutomationRuleID, entry.EventType, entry.ActionType,
		entry.Status, payload, actionResult, entry.ErrorMessage, entry.ErrorStackTrace,
		entry.ExecutionDurationMs, entry.ResourceID, entry.ResourceType)

	if err := row.Scan(&entry.CreatedAt); err != nil {
		r.logger.Error("Failed to create event log entry",
			zap.Error(err),
			zap.String("event_type", entry.EventType),
			zap.String("tenant_id", entry.TenantID.String()))
		return fmt.Errorf("failed to create event log entry: %w", err)
	}

	return nil
}

func (r *EventLogRepository) ListRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]models.EventLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `
		SELECT id, tenant_id, automation_rule_id, event_type, action_type, status,
			event_payload, action_result, error_message, error_stack_trace, execution_duration_ms,
			resource_id, resource_type, created_at
		FROM event_logs WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2`

	return r.queryEntries(ctx, query, tenantID, limit)
}

func (r *EventLogRepository) ListByStatus(ctx context.Context, tenantID uuid.UUID, status models.ExecutionStatus) ([]models.EventLog, error) {
	query := `
		SELECT id, tenant_id, automation_rule_id, event_type, action_type, status,
			event_payload, action_result, error_message, error_stack_trace, execution_duration_ms,
			resource_id, resource_type, created_at
		FROM event_logs WHERE tenant_id = $1 AND status = $2 ORDER BY created_at DESC`

	return r.queryEntries(ctx, query, tenantID, status)
}

func (r *EventLogRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, status models.ExecutionStatus) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM event_logs WHERE tenant_id = $1 AND status = $2`,
		tenantID, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count event logs: %w", err)
	}
	return count, nil
}

// DeleteOlderThan removes audit rows created before the cutoff. Retention
// batch operation, not part of the publish path.
func (r *EventLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM event_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old event logs: %w", err)
	}

	deleted := result.RowsAffected()
	if deleted > 0 {
		r.logger.Info("Old event logs deleted",
			zap.Int64("count", deleted),
			zap.Time("cutoff", cutoff))
	}
	return deleted, nil
}

func (r *EventLogRepository) queryEntries(ctx context.Context, query string, args ...any) ([]models.EventLog, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query event logs: %w", err)
	}
	defer rows.Close()

	var entries []models.EventLog
	for rows.Next() {
		entry, err := r.scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event log: %w", err)
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return entries, nil
}

func (r *EventLogRepository) scanEntry(row pgx.Row) (*models.EventLog, error) {
	var entry models.EventLog
	var payload, actionResult []byte

	err := row.Scan(
		&entry.ID, &entry.TenantID, &entry.AutomationRuleID, &entry.EventType, &entry.ActionType,
		&entry.Status, &payload, &actionResult, &entry.ErrorMessage, &entry.ErrorStackTrace,
		&entry.ExecutionDurationMs, &entry.ResourceID, &entry.ResourceType, &entry.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := unmarshalJSONB(payload, &entry.EventPayload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event payload: %w", err)
	}
	if err := unmarshalJSONB(actionResult, &entry.ActionResult); err != nil {
		return nil, fmt.Errorf("failed to unmarshal action result: %w", err)
	}

	return &entry, nil
}

func marshalJSONB(m map[string]any) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func unmarshalJSONB(data []byte, dst *map[string]any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}
