package tools

import (
	"context"
	"encoding/json"
	"log/slog"

	"spendtrack/internal/cache"
	"spendtrack/internal/core"
)

// Registry holds the registered tools and dispatches calls through the one
// error-to-envelope boundary. Read-only results are memoized; any mutating
// call purges the memo, so reads always reflect the latest write.
type Registry struct {
	tools map[string]Tool
	order []string
	cache *cache.LRUCache[Result]
}

// NewRegistry creates a registry. The cache may be nil to disable
// memoization.
func NewRegistry(resultCache *cache.LRUCache[Result]) *Registry {
	return &Registry{
		tools: make(map[string]Tool),
		cache: resultCache,
	}
}

// Register adds a tool. Registration order is preserved in Specs.
func (r *Registry) Register(t Tool) {
	if _, exists := r.tools[t.Name]; !exists {
		r.order = append(r.order, t.Name)
	}
	r.tools[t.Name] = t
}

// Specs lists the registered tools in registration order.
func (r *Registry) Specs() []Spec {
	specs := make([]Spec, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		specs = append(specs, Spec{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		})
	}
	return specs
}

// Call invokes a tool by name and always returns a well-formed envelope.
// No failure escapes as an error: the protocol channel must stay alive for
// the next call.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) Result {
	t, ok := r.tools[name]
	if !ok {
		return errorResult(core.NewInvalidArgument("unknown tool %q", name))
	}

	key, cacheable := r.cacheKey(t, name, args)
	if cacheable {
		if cached, hit := r.cache.Get(key); hit {
			slog.DebugContext(ctx, "tool result served from cache", "tool", name)
			return cached
		}
	}

	payload, err := t.Handler(ctx, Args(args))
	if err != nil {
		slog.WarnContext(ctx, "tool call failed", "tool", name, "error", err)
		return errorResult(err)
	}

	result := okResult(payload)
	if t.Mutates {
		if r.cache != nil {
			r.cache.Purge()
		}
	} else if cacheable {
		r.cache.Set(key, result)
	}

	return result
}

// cacheKey derives a stable key from the tool name and its arguments.
// encoding/json sorts map keys, so equal argument sets encode identically.
func (r *Registry) cacheKey(t Tool, name string, args map[string]any) (string, bool) {
	if r.cache == nil || t.Mutates {
		return "", false
	}
	encoded, err := json.Marshal(args)
	if err != nil {
		return "", false
	}
	return name + ":" + string(encoded), true
}
