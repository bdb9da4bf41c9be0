package protocol

import (
	"fmt"
)

// Factory builds a protocol instance of type T from a params document
// decoded from the scenario's protocol selector.
type Factory[T any] func(params map[string]any) (T, error)

// Registry maps protocol names to factories for one protocol category
// (search, matching, or bargaining). It is populated once at engine
// startup; a lookup of a name that was never registered is a startup-fatal
// contract violation, never a silent fallback to a default.
type Registry[T any] struct {
	factories map[string]Factory[T]
}

// NewRegistry constructs an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{factories: make(map[string]Factory[T])}
}

// Register adds name to the registry, panicking on a duplicate — a
// duplicate registration is a programming error caught at startup, not a
// runtime condition to recover from.
func (r *Registry[T]) Register(name string, f Factory[T]) {
	if _, exists := r.factories[name]; exists {
		panic(fmt.Sprintf("protocol %q registered twice", name))
	}
	r.factories[name] = f
}

// New constructs the named protocol with the given params. An unknown name
// returns ErrUnknownProtocol wrapped with the offending name.
func (r *Registry[T]) New(name string, params map[string]any) (T, error) {
	var zero T
	f, ok := r.factories[name]
	if !ok {
		return zero, fmt.Errorf("protocol %q: %w", name, ErrUnknownProtocol)
	}
	return f(params)
}

// Names returns every registered name, for diagnostics.
func (r *Registry[T]) Names() []string {
	out := make([]string, 0, len(r.factories))
	for n := range r.factories {
		out = append(out, n)
	}
	return out
}

// ErrUnknownProtocol is returned by Registry.New when asked for a name that
// was never registered.
var ErrUnknownProtocol = fmt.Errorf("unknown protocol")
