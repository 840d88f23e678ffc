package storage

import (
	"fmt"
	"strings"
)

// Preset names a host-provided backend.
type Preset string

const (
	// Local is the persistent backend.
	Local Preset = "localStorage"
	// Session is the process-scoped backend.
	Session Preset = "sessionStorage"
)

// ParsePreset accepts the preset names and their short forms
// ("local", "session"), case-insensitively.
func ParsePreset(s string) (Preset, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "localstorage", "local":
		return Local, nil
	case "sessionstorage", "session":
		return Session, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPreset, s)
	}
}

// String returns the preset name.
func (p Preset) String() string {
	return string(p)
}

// Target selects the backend an atom persists through: a Preset, or a
// caller-supplied adapter wrapped with Custom.
type Target interface {
	target()
}

func (Preset) target() {}

type custom struct {
	adapter Adapter
}

func (custom) target() {}

// Custom wraps a caller-supplied adapter as a Target.
func Custom(a Adapter) Target {
	return custom{adapter: a}
}

// Resolver maps targets to concrete adapters.
type Resolver struct {
	presets map[Preset]Adapter
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithPreset binds a preset name to an adapter.
func WithPreset(p Preset, a Adapter) ResolverOption {
	return func(r *Resolver) {
		r.presets[p] = a
	}
}

// NewResolver creates a resolver with the given preset bindings.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		presets: make(map[Preset]Adapter),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the adapter for t.
//
// Custom adapters are returned as-is; a malformed one fails when it is
// first used.
func (r *Resolver) Resolve(t Target) (Adapter, error) {
	switch t := t.(type) {
	case Preset:
		a, ok := r.presets[t]
		if !ok || a == nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, string(t))
		}
		return a, nil
	case custom:
		if t.adapter == nil {
			return nil, ErrNilAdapter
		}
		return t.adapter, nil
	default:
		return nil, ErrNilAdapter
	}
}
