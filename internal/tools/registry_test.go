package tools

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendtrack/internal/cache"
	"spendtrack/internal/core"
)

func countingTool(name string, mutates bool, calls *int) Tool {
	return Tool{
		Name:        name,
		Description: "test tool",
		Mutates:     mutates,
		InputSchema: objectSchema(map[string]any{}),
		Handler: func(ctx context.Context, args Args) (map[string]any, error) {
			*calls++
			return map[string]any{"calls": *calls}, nil
		},
	}
}

func TestCallReturnsEnvelope(t *testing.T) {
	reg := NewRegistry(nil)
	calls := 0
	reg.Register(countingTool("ping", false, &calls))

	result := reg.Call(context.Background(), "ping", nil)
	assert.Equal(t, "ok", result["status"])
	assert.Equal(t, 1, result["calls"])
}

func TestCallTranslatesErrors(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register(Tool{
		Name: "explode",
		Handler: func(ctx context.Context, args Args) (map[string]any, error) {
			return nil, core.NewStorageError("insert expense", errors.New("disk full at /var/lib/ledger.db"))
		},
	})
	reg.Register(Tool{
		Name: "opaque",
		Handler: func(ctx context.Context, args Args) (map[string]any, error) {
			return nil, errors.New("panic: nil pointer at repository.go:42")
		},
	})

	result := reg.Call(context.Background(), "explode", nil)
	assert.Equal(t, "error", result["status"])
	assert.Equal(t, "storage failure: insert expense", result["message"], "message must not leak internals")

	// Errors outside the taxonomy stay opaque.
	result = reg.Call(context.Background(), "opaque", nil)
	assert.Equal(t, "error", result["status"])
	assert.Equal(t, "internal error", result["message"])
}

func TestReadResultsAreCached(t *testing.T) {
	reg := NewRegistry(cache.New[Result](8, time.Minute))
	calls := 0
	reg.Register(countingTool("read", false, &calls))

	first := reg.Call(context.Background(), "read", map[string]any{"period": "all"})
	second := reg.Call(context.Background(), "read", map[string]any{"period": "all"})
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls, "identical read calls hit the cache")

	// Different arguments miss.
	reg.Call(context.Background(), "read", map[string]any{"period": "2024-01"})
	assert.Equal(t, 2, calls)
}

func TestMutationPurgesCache(t *testing.T) {
	reg := NewRegistry(cache.New[Result](8, time.Minute))
	reads, writes := 0, 0
	reg.Register(countingTool("read", false, &reads))
	reg.Register(countingTool("write", true, &writes))

	reg.Call(context.Background(), "read", nil)
	reg.Call(context.Background(), "write", nil)
	reg.Call(context.Background(), "read", nil)

	assert.Equal(t, 2, reads, "a mutating call purges memoized reads")
}

func TestErrorsAreNotCached(t *testing.T) {
	reg := NewRegistry(cache.New[Result](8, time.Minute))
	calls := 0
	reg.Register(Tool{
		Name: "flaky",
		Handler: func(ctx context.Context, args Args) (map[string]any, error) {
			calls++
			if calls == 1 {
				return nil, core.NewInvalidArgument("bad input")
			}
			return map[string]any{}, nil
		},
	})

	first := reg.Call(context.Background(), "flaky", nil)
	require.Equal(t, "error", first["status"])
	second := reg.Call(context.Background(), "flaky", nil)
	assert.Equal(t, "ok", second["status"], "failed results must not be replayed from cache")
}

func TestSpecsPreserveRegistrationOrder(t *testing.T) {
	reg := NewRegistry(nil)
	calls := 0
	reg.Register(countingTool("b", false, &calls))
	reg.Register(countingTool("a", false, &calls))

	specs := reg.Specs()
	require.Len(t, specs, 2)
	assert.Equal(t, "b", specs[0].Name)
	assert.Equal(t, "a", specs[1].Name)
	assert.Equal(t, "test tool", specs[0].Description)
	assert.NotNil(t, specs[0].InputSchema)
}
