// Package tools defines the named operations exposed to an automated agent
// and the single boundary that turns their outcomes into protocol results.
package tools

import (
	"context"
	"math"

	"spendtrack/internal/core"
)

// Tool is one callable operation: its agent-facing schema plus the handler
// invoked when the agent calls it.
type Tool struct {
	// Name uniquely identifies the tool (e.g. "add_expense").
	Name string

	// Description is a human-readable explanation for the calling agent.
	Description string

	// InputSchema describes the tool's arguments in JSON Schema form.
	InputSchema map[string]any

	// Mutates marks tools that write to the ledger. The registry uses it to
	// decide between caching a result and purging the cache.
	Mutates bool

	// Handler executes the tool. It returns the payload fields of the ok
	// envelope, or an error from the core taxonomy. Handlers never build
	// protocol envelopes themselves.
	Handler Handler
}

// Handler executes a tool against decoded arguments.
type Handler func(ctx context.Context, args Args) (map[string]any, error)

// Spec is the wire-facing description of a tool, returned by tools/list.
type Spec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// Args holds a tool call's arguments as decoded from JSON. The accessors
// translate missing or ill-typed values into InvalidArgument errors so
// handlers stay free of type plumbing.
type Args map[string]any

// Has reports whether the argument was supplied at all.
func (a Args) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// String returns a string argument, or def when absent.
func (a Args) String(key, def string) (string, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", core.NewInvalidArgument("argument %q must be a string", key)
	}
	return s, nil
}

// RequiredString returns a string argument, rejecting absent or empty
// values.
func (a Args) RequiredString(key string) (string, error) {
	if !a.Has(key) {
		return "", core.NewInvalidArgument("missing required argument %q", key)
	}
	s, err := a.String(key, "")
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", core.NewInvalidArgument("argument %q must not be empty", key)
	}
	return s, nil
}

// RequiredNumber returns a numeric argument.
func (a Args) RequiredNumber(key string) (float64, error) {
	if !a.Has(key) {
		return 0, core.NewInvalidArgument("missing required argument %q", key)
	}
	return a.number(key)
}

// Int returns an integer argument, or def when absent. JSON numbers arrive
// as float64; non-integral values are rejected.
func (a Args) Int(key string, def int) (int, error) {
	if !a.Has(key) {
		return def, nil
	}
	f, err := a.number(key)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, core.NewInvalidArgument("argument %q must be an integer", key)
	}
	return int(f), nil
}

func (a Args) number(key string) (float64, error) {
	switch v := a[key].(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, core.NewInvalidArgument("argument %q must be a number", key)
	}
}
