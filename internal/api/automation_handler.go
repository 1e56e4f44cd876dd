package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arisetyawan/multi-tenant-task-platform/internal/models"
)

// AutomationServiceInterface defines the methods required by the handler
type AutomationServiceInterface interface {
	CreateRule(ctx context.Context, req *models.CreateAutomationRuleRequest) (*models.AutomationRule, error)
	GetRule(ctx context.Context, id uuid.UUID) (*models.AutomationRule, error)
	ListRules(ctx context.Context) ([]models.AutomationRule, error)
	UpdateRule(ctx context.Context, id uuid.UUID, req *models.UpdateAutomationRuleRequest) (*models.AutomationRule, error)
	DeleteRule(ctx context.Context, id uuid.UUID) error
	ToggleRule(ctx context.Context, id uuid.UUID, active bool) (*models.AutomationRule, error)
	RulesForEventType(ctx context.Context, eventType string) ([]models.AutomationRule, error)
	RecordExecution(ctx context.Context, tenantID, ruleID uuid.UUID) error
	RecentEvents(ctx context.Context, limit int) ([]models.EventLog, error)
	EventsByStatus(ctx context.Context, status models.ExecutionStatus) ([]models.EventLog, error)
	EventStatusCounts(ctx context.Context) (map[models.ExecutionStatus]int64, error)
}

type AutomationHandler struct {
	automation AutomationServiceInterface
	logger     *zap.Logger
}

func NewAutomationHandler(automation AutomationServiceInterface, logger *zap.Logger) *AutomationHandler {
	return &AutomationHandler{
		automation: automation,
		logger:     logger,
	}
}

// CreateRule godoc
// @Summary Create an automation rule
// @Tags automation
// @Accept json
// @Produce json
// @Param rule body models.CreateAutomationRuleRequest true "Rule creation request"
// @Success 201 {object} models.AutomationRule
// @Failure 400 {object} ErrorResponse
// @Router /automation-rules [post]
func (h *AutomationHandler) CreateRule(c *gin.Context) {
	var req models.CreateAutomationRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	rule, err := h.automation.CreateRule(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("Failed to create automation rule", zap.Error(err), zap.String("name", req.Name))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rule)
}

// GetRule godoc
// @Summary Get an automation rule by ID
// @Tags automation
// @Produce json
// @Param id path string true "Rule ID"
// @Success 200 {object} models.AutomationRule
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /automation-rules/{id} [get]
func (h *AutomationHandler) GetRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid rule ID format"})
		return
	}

	rule, err := h.automation.GetRule(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rule)
}

// ListRules godoc
// @Summary List the current tenant's automation rules
// @Description With ?event_type= only the active rules configured for that event type are returned
// @Tags automation
// @Produce json
// @Param event_type query string false "Event type filter (active rules only)"
// @Success 200 {array} models.AutomationRule
// @Router /automation-rules [get]
func (h *AutomationHandler) ListRules(c *gin.Context) {
	if eventType := c.Query("event_type"); eventType != "" {
		rules, err := h.automation.RulesForEventType(c.Request.Context(), eventType)
		if err != nil {
			h.logger.Error("Failed to look up rules by event type", zap.Error(err), zap.String("event_type", eventType))
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rules)
		return
	}

	rules, err := h.automation.ListRules(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list automation rules", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rules)
}

// UpdateRule godoc
// @Summary Update an automation rule
// @Tags automation
// @Accept json
// @Produce json
// @Param id path string true "Rule ID"
// @Param rule body models.UpdateAutomationRuleRequest true "Rule update request"
// @Success 200 {object} models.AutomationRule
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /automation-rules/{id} [put]
func (h *AutomationHandler) UpdateRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid rule ID format"})
		return
	}

	var req models.UpdateAutomationRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	rule, err := h.automation.UpdateRule(c.Request.Context(), id, &req)
	if err != nil {
		h.logger.Error("Failed to update automation rule", zap.Error(err), zap.String("id", id.String()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rule)
}

// DeleteRule godoc
// @Summary Delete an automation rule
// @Tags automation
// @Param id path string true "Rule ID"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /automation-rules/{id} [delete]
func (h *AutomationHandler) DeleteRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid rule ID format"})
		return
	}

	if err := h.automation.DeleteRule(c.Request.Context(), id); err != nil {
		h.logger.Error("Failed to delete automation rule", zap.Error(err), zap.String("id", id.String()))
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type toggleRuleRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// ToggleRule godoc
// @Summary Toggle an automation rule on or off
// @Tags automation
// @Accept json
// @Produce json
// @Param id path string true "Rule ID"
// @Param toggle body toggleRuleRequest true "Toggle request"
// @Success 200 {object} models.AutomationRule
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /automation-rules/{id}/toggle [post]
func (h *AutomationHandler) ToggleRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid rule ID format"})
		return
	}

	var req toggleRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	rule, err := h.automation.ToggleRule(c.Request.Context(), id, *req.IsActive)
	if err != nil {
		h.logger.Error("Failed to toggle automation rule", zap.Error(err), zap.String("id", id.String()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rule)
}

type recordExecutionRequest struct {
	TenantID uuid.UUID `json:"tenant_id" binding:"required"`
}

// RecordExecution godoc
// @Summary Record a rule execution (internal)
// @Description Write-back for the external execution engine after it runs a rule's action
// @Tags internal
// @Accept json
// @Param id path string true "Rule ID"
// @Param execution body recordExecutionRequest true "Execution report"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /internal/automation-rules/{id}/executions [post]
func (h *AutomationHandler) RecordExecution(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid rule ID format"})
		return
	}

	var req recordExecutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.automation.RecordExecution(c.Request.Context(), req.TenantID, id); err != nil {
		h.logger.Error("Failed to record rule execution", zap.Error(err), zap.String("id", id.String()))
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListEvents godoc
// @Summary List the current tenant's event log
// @Description Most recent first; filter with ?status=, bound with ?limit=
// @Tags events
// @Produce json
// @Param status query string false "Execution status filter"
// @Param limit query int false "Maximum entries to return"
// @Success 200 {array} models.EventLog
// @Failure 400 {object} ErrorResponse
// @Router /events [get]
func (h *AutomationHandler) ListEvents(c *gin.Context) {
	if statusParam := c.Query("status"); statusParam != "" {
		events, err := h.automation.EventsByStatus(c.Request.Context(), models.ExecutionStatus(statusParam))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, events)
		return
	}

	limit := 0
	if limitParam := c.Query("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = parsed
	}

	events, err := h.automation.RecentEvents(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

// EventStats godoc
// @Summary Event log counts by execution status
// @Tags events
// @Produce json
// @Success 200 {object} map[string]int64
// @Router /events/stats [get]
func (h *AutomationHandler) EventStats(c *gin.Context) {
	counts, err := h.automation.EventStatusCounts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, counts)
}
