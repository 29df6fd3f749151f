package ai

import (
	"sort"

	"go.uber.org/zap"
)

// ScriptCaller is the interface required by the Registry to evaluate Lua preconditions.
type ScriptCaller interface {
	// CallPredicate calls a named Lua function with each map as a table argument.
	// Returns (false, nil) if the function is not defined.
	CallPredicate(hook string, args ...map[string]float64) (bool, error)
}

// Registry indexes Policies by archetype.
//
// Invariant: each archetype is registered at most once.
type Registry struct {
	fallback Fallback
	policies map[string]*Policy
	caller   ScriptCaller
	logger   *zap.Logger
}

// NewRegistry indexes doc. caller may be nil, in which case preconditions
// reduce to an MP check. A nil logger is replaced by a no-op logger.
//
// Precondition: doc must be non-nil and valid.
func NewRegistry(doc *Document, caller ScriptCaller, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		fallback: doc.Fallback,
		policies: make(map[string]*Policy, len(doc.Policies)),
		caller:   caller,
		logger:   logger,
	}
	for _, p := range doc.Policies {
		r.policies[p.Archetype] = p
	}
	return r
}

// PolicyFor returns the Policy for archetype, or false if it only uses the fallback.
func (r *Registry) PolicyFor(archetype string) (*Policy, bool) {
	p, ok := r.policies[archetype]
	return p, ok
}

// Archetypes returns the archetypes with special rules, sorted.
func (r *Registry) Archetypes() []string {
	out := make([]string, 0, len(r.policies))
	for a := range r.policies {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
