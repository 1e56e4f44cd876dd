package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arisetyawan/multi-tenant-task-platform/internal/apperrors"
	"github.com/arisetyawan/multi-tenant-task-platform/internal/config"
	"github.com/arisetyawan/multi-tenant-task-platform/internal/metrics"
	"github.com/arisetyawan/multi-tenant-task-platform/internal/models"
	"github.com/arisetyawan/multi-tenant-task-platform/internal/tenantctx"
)

// TenantLookup is the slice of the tenant store the resolver needs.
type TenantLookup interface {
	GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error)
}

// TenantResolver resolves the tenant for each request and installs it on the
// request context before any handler runs.
//
// Resolution order: the subdomain header wins over host parsing; known
// development hosts never yield a subdomain. Requests without a resolvable
// tenant are only allowed through on public path prefixes. The tenant
// binding lives on the request's context and dies with it, so no cleanup
// step can be missed, even when a handler panics.
func TenantResolver(cfg config.Tenancy, lookup TenantLookup, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		subdomain := extractSubdomain(c, cfg)

		if subdomain == "" {
			if !isPublicPath(c.Request.URL.Path, cfg.PublicPathPrefixes) {
				logger.Warn("Non-public path requested without tenant subdomain",
					zap.String("path", c.Request.URL.Path),
					zap.String("host", c.Request.Host))
				metrics.IncrementResolutionFailures("no_subdomain")
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "tenant subdomain required"})
				return
			}
			c.Next()
			return
		}

		tenant, err := lookup.GetBySubdomain(c.Request.Context(), subdomain)
		if err != nil {
			var notFound *apperrors.TenantNotFoundError
			if errors.As(err, &notFound) {
				if isPublicPath(c.Request.URL.Path, cfg.PublicPathPrefixes) {
					logger.Debug("Public path accessed without tenant context",
						zap.String("path", c.Request.URL.Path))
					c.Next()
					return
				}
				logger.Warn("Tenant not found for subdomain", zap.String("subdomain", subdomain))
				metrics.IncrementResolutionFailures("not_found")
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "tenant not found"})
				return
			}
			logger.Error("Tenant lookup failed", zap.Error(err), zap.String("subdomain", subdomain))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "tenant resolution failed"})
			return
		}

		if !tenant.IsActive {
			logger.Warn("Inactive tenant rejected", zap.String("subdomain", subdomain))
			metrics.IncrementResolutionFailures("inactive")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "tenant account is inactive"})
			return
		}

		ctx := tenantctx.With(c.Request.Context(), tenant.ID, tenant.Subdomain)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("Tenant context installed",
			zap.String("tenant_id", tenant.ID.String()),
			zap.String("subdomain", subdomain))

		c.Next()
	}
}

// extractSubdomain prefers the explicit override header, then falls back to
// the first label of the request host. Matching is case-insensitive and
// trimmed.
func extractSubdomain(c *gin.Context, cfg config.Tenancy) string {
	header := cfg.SubdomainHeader
	if header == "" {
		header = "X-Tenant-Subdomain"
	}
	if v := c.GetHeader(header); v != "" {
		return strings.ToLower(strings.TrimSpace(v))
	}

	host := c.Request.Host
	if host == "" {
		return ""
	}

	// Strip port (localhost:8080 -> localhost)
	hostname := host
	if i := strings.IndexByte(host, ':'); i >= 0 {
		hostname = host[:i]
	}
	hostname = strings.ToLower(hostname)

	if isExcludedHost(hostname, cfg.ExcludedHosts) {
		return ""
	}

	parts := strings.Split(hostname, ".")
	if len(parts) < 2 {
		return ""
	}

	return strings.TrimSpace(parts[0])
}

// isExcludedHost reports whether the hostname is a known development host.
// Entries starting with "." are suffix matches (".local" covers any *.local).
func isExcludedHost(hostname string, excluded []string) bool {
	for _, e := range excluded {
		if strings.HasPrefix(e, ".") {
			if strings.HasSuffix(hostname, e) {
				return true
			}
			continue
		}
		if hostname == e {
			return true
		}
	}
	return false
}

func isPublicPath(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
