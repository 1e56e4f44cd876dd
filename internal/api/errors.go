package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arisetyawan/multi-tenant-task-platform/internal/apperrors"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError maps domain errors onto HTTP responses. Unrecognized errors
// become opaque 500s so internals never leak to clients.
func respondError(c *gin.Context, err error) {
	var (
		validation     *apperrors.ValidationError
		subdomainTaken *apperrors.SubdomainTakenError
		quotaExceeded  *apperrors.QuotaExceededError
		tenantNotFound *apperrors.TenantNotFoundError
		tenantInactive *apperrors.TenantInactiveError
		notFound       *apperrors.NotFoundError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: validation.Error()})
	case errors.As(err, &subdomainTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Error: subdomainTaken.Error()})
	case errors.As(err, &quotaExceeded):
		c.JSON(http.StatusPaymentRequired, ErrorResponse{Error: quotaExceeded.Error()})
	case errors.As(err, &tenantNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "tenant not found"})
	case errors.As(err, &tenantInactive):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "tenant account is inactive"})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: notFound.Error()})
	case errors.Is(err, apperrors.ErrTenantContextMissing):
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}
