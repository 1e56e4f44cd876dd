// Package tenantctx carries the active tenant identity on context.Context.
//
// The binding lives exactly as long as the request that created it: the
// resolver middleware derives a child context, the handler chain works with
// that context, and nothing stores the binding anywhere that outlives the
// request. That structural scoping is what keeps tenant identity from
// leaking between concurrently handled requests.
package tenantctx

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arisetyawan/multi-tenant-task-platform/internal/apperrors"
)

type contextKey struct{}

// Tenant is the identity installed for one request.
type Tenant struct {
	ID        uuid.UUID
	Subdomain string
}

// With returns a child context carrying the tenant identity. Installing a
// nil tenant ID is invalid; it logs a warning and returns ctx unchanged
// rather than binding an empty identity.
func With(ctx context.Context, id uuid.UUID, subdomain string) context.Context {
	if id == uuid.Nil {
		zap.L().Warn("attempted to set nil tenant ID on context",
			zap.String("subdomain", subdomain))
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, Tenant{ID: id, Subdomain: subdomain})
}

// From returns the tenant bound to ctx, if any.
func From(ctx context.Context) (Tenant, bool) {
	t, ok := ctx.Value(contextKey{}).(Tenant)
	return t, ok
}

// MustFrom returns the bound tenant or ErrTenantContextMissing. Callers that
// require a tenant must treat the error as a precondition violation and
// never fall back to a guessed identity.
func MustFrom(ctx context.Context) (Tenant, error) {
	t, ok := From(ctx)
	if !ok {
		zap.L().Warn("tenant context accessed but not set")
		return Tenant{}, apperrors.ErrTenantContextMissing
	}
	return t, nil
}

// Clear returns a context with any tenant binding shadowed. Idempotent and
// safe to call when nothing is bound. Request teardown does not need this —
// the request context dies on its own — but background work forked from a
// request should use it so audit and cleanup code never inherits a tenant
// it did not resolve.
func Clear(ctx context.Context) context.Context {
	if _, ok := From(ctx); !ok {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, nil)
}

// Run executes fn with the tenant installed, scoping the binding to the
// callback. Useful outside the HTTP path (batch jobs, tests).
func Run(ctx context.Context, id uuid.UUID, subdomain string, fn func(ctx context.Context) error) error {
	return fn(With(ctx, id, subdomain))
}
