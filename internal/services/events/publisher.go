// Package events records every domain-significant state change as an audit
// row and best-effort forwards it to the external bus.
package events

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arisetyawan/multi-tenant-task-platform/internal/config"
	"github.com/arisetyawan/multi-tenant-task-platform/internal/metrics"
	"github.com/arisetyawan/multi-tenant-task-platform/internal/models"
)

// maxErrorTraceLen bounds stored failure traces.
const maxErrorTraceLen = 2000

// Store is the append-only audit sink.
type Store interface {
	Create(ctx context.Context, entry *models.EventLog) error
}

// Forwarder sends an envelope to the external bus.
type Forwarder interface {
	Forward(ctx context.Context, envelope Envelope) error
}

// Publisher owns the event pipeline: forward best-effort, then persist
// exactly one audit row per Publish call. Nothing in this pipeline ever
// surfaces to the triggering domain operation — the domain mutation is
// already committed when Publish runs, so a publish failure is an
// observability problem, not a rollback trigger.
type Publisher struct {
	store          Store
	forwarder      Forwarder
	enabled        bool
	source         string
	publishTimeout time.Duration
	logger         *zap.Logger
}

func NewPublisher(store Store, forwarder Forwarder, cfg config.EventBus, logger *zap.Logger) *Publisher {
	timeout := cfg.PublishTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	if cfg.Enabled {
		logger.Info("Event bus forwarding enabled", zap.String("queue", cfg.Queue))
	} else {
		logger.Warn("Event bus forwarding disabled, events will only be logged locally")
	}

	return &Publisher{
		store:          store,
		forwarder:      forwarder,
		enabled:        cfg.Enabled && forwarder != nil,
		source:         cfg.Source,
		publishTimeout: timeout,
		logger:         logger,
	}
}

// Publish records one domain event. Fire-and-forget for the caller: it
// never returns an error and never panics outward.
//
// The audit write is detached from the caller's cancellation so a client
// disconnect cannot lose the record; the forwarding attempt is bounded by
// the configured timeout since it sits on the request's critical path.
func (p *Publisher) Publish(ctx context.Context, tenantID uuid.UUID, eventType string, resourceID uuid.UUID, resourceType string, payload map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Panic in event publish pipeline",
				zap.Any("panic", r),
				zap.String("event_type", eventType),
				zap.String("tenant_id", tenantID.String()))
		}
	}()

	start := time.Now()
	ctx = context.WithoutCancel(ctx)

	if p.enabled {
		if err := p.forward(ctx, tenantID, eventType, resourceID, resourceType, payload); err != nil {
			p.logger.Error("Failed to forward event",
				zap.Error(err),
				zap.String("event_type", eventType),
				zap.String("tenant_id", tenantID.String()))
			metrics.IncrementForwardingFailures(tenantID.String())

			// The failure gets its own audit row; the local trail must
			// survive even when the bus does not.
			failed := &models.EventLog{
				ID:                  uuid.New(),
				TenantID:            tenantID,
				EventType:           eventType,
				Status:              models.StatusFailed,
				EventPayload:        payload,
				ErrorMessage:        err.Error(),
				ErrorStackTrace:     truncate(err.Error()+"\n"+string(debug.Stack()), maxErrorTraceLen),
				ExecutionDurationMs: time.Since(start).Milliseconds(),
				ResourceID:          resourceID,
				ResourceType:        resourceType,
			}
			p.persist(ctx, failed)
			return
		}

		metrics.RecordForwardingDuration(tenantID.String(), time.Since(start).Seconds())
		p.logger.Info("Event forwarded to bus",
			zap.String("event_type", eventType),
			zap.String("tenant_id", tenantID.String()))
	} else {
		p.logger.Debug("Event logged locally, forwarding disabled",
			zap.String("event_type", eventType),
			zap.String("tenant_id", tenantID.String()))
	}

	entry := &models.EventLog{
		ID:                  uuid.New(),
		TenantID:            tenantID,
		EventType:           eventType,
		Status:              models.StatusNoRulesMatched,
		EventPayload:        payload,
		ExecutionDurationMs: time.Since(start).Milliseconds(),
		ResourceID:          resourceID,
		ResourceType:        resourceType,
	}
	p.persist(ctx, entry)
}

func (p *Publisher) forward(ctx context.Context, tenantID uuid.UUID, eventType string, resourceID uuid.UUID, resourceType string, payload map[string]any) error {
	fctx, cancel := context.WithTimeout(ctx, p.publishTimeout)
	defer cancel()

	return p.forwarder.Forward(fctx, Envelope{
		Source:       p.source,
		TenantID:     tenantID,
		EventType:    eventType,
		ResourceID:   resourceID,
		ResourceType: resourceType,
		Timestamp:    time.Now().UTC(),
		Payload:      payload,
	})
}

// persist writes the audit row. A persistence failure here is logged and
// swallowed: this is the secondary audit path, not the primary transaction.
func (p *Publisher) persist(ctx context.Context, entry *models.EventLog) {
	if err := p.store.Create(ctx, entry); err != nil {
		p.logger.Error("Failed to persist event log entry",
			zap.Error(err),
			zap.String("event_type", entry.EventType),
			zap.String("tenant_id", entry.TenantID.String()))
		return
	}

	metrics.IncrementEventsPublished(entry.TenantID.String(), entry.EventType, string(entry.Status))
	p.logger.Debug("Event log entry persisted",
		zap.String("id", entry.ID.String()),
		zap.String("event_type", entry.EventType),
		zap.String("status", string(entry.Status)),
		zap.Int64("duration_ms", entry.ExecutionDurationMs))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "\n... (truncated)"
}
