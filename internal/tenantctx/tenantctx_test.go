package tenantctx

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arisetyawan/multi-tenant-task-platform/internal/apperrors"
)

func TestWithAndFrom(t *testing.T) {
	id := uuid.New()
	ctx := With(context.Background(), id, "acme")

	got, ok := From(ctx)
	require.True(t, ok)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "acme", got.Subdomain)
}

func TestFrom_Unset(t *testing.T) {
	_, ok := From(context.Background())
	assert.False(t, ok)
}

func TestWith_NilTenantID(t *testing.T) {
	ctx := With(context.Background(), uuid.Nil, "acme")

	_, ok := From(ctx)
	assert.False(t, ok, "nil tenant ID must not install a binding")
}

func TestMustFrom(t *testing.T) {
	id := uuid.New()
	ctx := With(context.Background(), id, "acme")

	got, err := MustFrom(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
}

func TestMustFrom_Missing(t *testing.T) {
	_, err := MustFrom(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrTenantContextMissing))
}

func TestClear(t *testing.T) {
	ctx := With(context.Background(), uuid.New(), "acme")
	cleared := Clear(ctx)

	_, ok := From(cleared)
	assert.False(t, ok)

	// Clearing an unbound context is a no-op
	same := Clear(context.Background())
	_, ok = From(same)
	assert.False(t, ok)

	// Clearing twice stays cleared
	_, ok = From(Clear(cleared))
	assert.False(t, ok)
}

func TestClear_DoesNotAffectParent(t *testing.T) {
	id := uuid.New()
	ctx := With(context.Background(), id, "acme")
	_ = Clear(ctx)

	got, ok := From(ctx)
	require.True(t, ok)
	assert.Equal(t, id, got.ID)
}

func TestRun_ScopesBinding(t *testing.T) {
	id := uuid.New()
	var inside Tenant

	err := Run(context.Background(), id, "acme", func(ctx context.Context) error {
		got, ok := From(ctx)
		require.True(t, ok)
		inside = got
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, id, inside.ID)
}

// Concurrent requests must each observe exactly the tenant installed on
// their own context, never a neighbor's.
func TestConcurrentIsolation(t *testing.T) {
	const goroutines = 100

	var wg sync.WaitGroup
	errs := make(chan error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			id := uuid.New()
			subdomain := fmt.Sprintf("tenant-%d", n)
			ctx := With(context.Background(), id, subdomain)

			for j := 0; j < 100; j++ {
				got, ok := From(ctx)
				if !ok {
					errs <- fmt.Errorf("goroutine %d: binding lost", n)
					return
				}
				if got.ID != id || got.Subdomain != subdomain {
					errs <- fmt.Errorf("goroutine %d: observed foreign tenant %s", n, got.Subdomain)
					return
				}
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestNestedWith_InnerWins(t *testing.T) {
	outer := uuid.New()
	inner := uuid.New()

	ctx := With(context.Background(), outer, "outer")
	child := With(ctx, inner, "inner")

	got, ok := From(child)
	require.True(t, ok)
	assert.Equal(t, inner, got.ID)

	// The outer context is untouched
	got, ok = From(ctx)
	require.True(t, ok)
	assert.Equal(t, outer, got.ID)
}
