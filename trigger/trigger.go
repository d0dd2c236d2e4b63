package trigger

import (
	"context"
	"sort"
	"time"
)

// Output is the standardized result every trigger produces. It is the
// contract between the executor and each implementation and is consumed
// immediately by the sweep to decide whether to materialize an event.
type Output struct {
	Triggered  bool                   `json:"triggered"`
	Importance string                 `json:"importance"`
	Ticker     string                 `json:"ticker"`
	Message    string                 `json:"message"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

// Params is the opaque parameter bag passed to a trigger, decoded from the
// rule's JSON parameters.
type Params map[string]interface{}

// Trigger is the interface all check implementations must satisfy.
// Check is expected to be safe to call on a fixed period; on internal
// failure it should return a triggered=false output with a diagnostic
// message rather than an error. Errors are reserved for transport-level
// failures and are caught and logged by the executor.
type Trigger interface {
	// Name returns the display name of the trigger
	Name() string

	// Description returns a short description of what the trigger checks
	Description() string

	// DefaultParams returns default parameters used to pre-populate forms
	DefaultParams() Params

	// Check runs the check logic and returns an Output
	Check(ctx context.Context, params Params) (*Output, error)
}

// Info describes a registered trigger for discovery.
type Info struct {
	Name          string `json:"name"`
	Script        string `json:"script"`
	Description   string `json:"description"`
	DefaultParams Params `json:"default_params"`
}

// Factory is a factory function type for creating triggers
type Factory func() Trigger

// Registry holds all registered trigger factories, keyed by script id
var Registry = make(map[string]Factory)

// Register registers a trigger factory under a stable script id
func Register(script string, factory Factory) {
	Registry[script] = factory
}

// Create creates a new trigger instance by script id
func Create(script string) (Trigger, error) {
	factory, exists := Registry[script]
	if !exists {
		return nil, ErrTriggerNotFound
	}
	t := factory()
	if t == nil {
		return nil, ErrBrokenFactory
	}
	return t, nil
}

// Scripts returns the script ids of all registered triggers, sorted.
func Scripts() []string {
	scripts := make([]string, 0, len(Registry))
	for script := range Registry {
		scripts = append(scripts, script)
	}
	sort.Strings(scripts)
	return scripts
}

// GetString reads a string parameter, falling back to def when absent or
// of the wrong type.
func (p Params) GetString(key, def string) string {
	if v, ok := p[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// GetFloat reads a numeric parameter. JSON decoding yields float64, but
// int values from hand-built maps are accepted too.
func (p Params) GetFloat(key string, def float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return def
	}
}

// GetBool reads a boolean parameter, falling back to def.
func (p Params) GetBool(key string, def bool) bool {
	if v, ok := p[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Has reports whether the key is present at all.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// merged returns defaults overlaid with the caller's parameters.
func merged(defaults, params Params) Params {
	out := make(Params, len(defaults)+len(params))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range params {
		out[k] = v
	}
	return out
}
