package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arisetyawan/multi-tenant-task-platform/internal/models"
	"github.com/arisetyawan/multi-tenant-task-platform/internal/tenantctx"
)

// TenantServiceInterface defines the methods required by the handler
type TenantServiceInterface interface {
	Register(ctx context.Context, req *models.RegisterTenantRequest) (*models.Tenant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error)
	List(ctx context.Context) ([]models.Tenant, error)
	Usage(ctx context.Context, tenantID uuid.UUID) (*models.TenantUsageResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error
}

type TenantHandler struct {
	tenants TenantServiceInterface
	logger  *zap.Logger
}

func NewTenantHandler(tenants TenantServiceInterface, logger *zap.Logger) *TenantHandler {
	return &TenantHandler{
		tenants: tenants,
		logger:  logger,
	}
}

// Register godoc
// @Summary Register a new tenant
// @Description Register a new tenant with a unique subdomain
// @Tags tenants
// @Accept json
// @Produce json
// @Param tenant body models.RegisterTenantRequest true "Tenant registration request"
// @Success 201 {object} models.Tenant
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/register [post]
func (h *TenantHandler) Register(c *gin.Context) {
	var req models.RegisterTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	tenant, err := h.tenants.Register(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("Failed to register tenant", zap.Error(err), zap.String("subdomain", req.Subdomain))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tenant)
}

// CurrentTenant godoc
// @Summary Get the current tenant
// @Description Get the tenant resolved for this request
// @Tags tenants
// @Produce json
// @Success 200 {object} models.Tenant
// @Failure 500 {object} ErrorResponse
// @Router /tenant [get]
func (h *TenantHandler) CurrentTenant(c *gin.Context) {
	t, err := tenantctx.MustFrom(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	tenant, err := h.tenants.GetByID(c.Request.Context(), t.ID)
	if err != nil {
		h.logger.Error("Failed to get tenant", zap.Error(err), zap.String("tenant_id", t.ID.String()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tenant)
}

// CurrentUsage godoc
// @Summary Get the current tenant's quota usage
// @Description Get combined project and task counts against the quota limit
// @Tags tenants
// @Produce json
// @Success 200 {object} models.TenantUsageResponse
// @Failure 500 {object} ErrorResponse
// @Router /tenant/usage [get]
func (h *TenantHandler) CurrentUsage(c *gin.Context) {
	t, err := tenantctx.MustFrom(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	usage, err := h.tenants.Usage(c.Request.Context(), t.ID)
	if err != nil {
		h.logger.Error("Failed to get tenant usage", zap.Error(err), zap.String("tenant_id", t.ID.String()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, usage)
}

// ListTenants godoc
// @Summary List all tenants
// @Description Internal endpoint listing all registered tenants
// @Tags internal
// @Produce json
// @Success 200 {array} models.Tenant
// @Failure 500 {object} ErrorResponse
// @Router /internal/tenants [get]
func (h *TenantHandler) ListTenants(c *gin.Context) {
	tenants, err := h.tenants.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list tenants", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tenants)
}

// GetTenant godoc
// @Summary Get a tenant by ID
// @Description Internal endpoint fetching one tenant
// @Tags internal
// @Produce json
// @Param id path string true "Tenant ID"
// @Success 200 {object} models.Tenant
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /internal/tenants/{id} [get]
func (h *TenantHandler) GetTenant(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid tenant ID format"})
		return
	}

	tenant, err := h.tenants.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get tenant", zap.Error(err), zap.String("id", id.String()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tenant)
}

// GetTenantUsage godoc
// @Summary Get a tenant's quota usage by ID
// @Description Internal endpoint reporting usage for any tenant
// @Tags internal
// @Produce json
// @Param id path string true "Tenant ID"
// @Success 200 {object} models.TenantUsageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /internal/tenants/{id}/usage [get]
func (h *TenantHandler) GetTenantUsage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid tenant ID format"})
		return
	}

	usage, err := h.tenants.Usage(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get tenant usage", zap.Error(err), zap.String("id", id.String()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, usage)
}

// DeactivateTenant godoc
// @Summary Deactivate a tenant
// @Description Internal endpoint marking a tenant inactive
// @Tags internal
// @Produce json
// @Param id path string true "Tenant ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /internal/tenants/{id}/deactivate [post]
func (h *TenantHandler) DeactivateTenant(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid tenant ID format"})
		return
	}

	if err := h.tenants.Deactivate(c.Request.Context(), id); err != nil {
		h.logger.Error("Failed to deactivate tenant", zap.Error(err), zap.String("id", id.String()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "tenant deactivated"})
}

// ReactivateTenant godoc
// @Summary Reactivate a tenant
// @Description Internal endpoint marking a tenant active again
// @Tags internal
// @Produce json
// @Param id path string true "Tenant ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /internal/tenants/{id}/reactivate [post]
func (h *TenantHandler) ReactivateTenant(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid tenant ID format"})
		return
	}

	if err := h.tenants.Reactivate(c.Request.Context(), id); err != nil {
		h.logger.Error("Failed to reactivate tenant", zap.Error(err), zap.String("id", id.String()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "tenant reactivated"})
}
