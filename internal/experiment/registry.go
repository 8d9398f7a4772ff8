package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/coingas/internal/exchange"
	"github.com/san-kum/coingas/internal/gas"
	"github.com/san-kum/coingas/internal/metrics"
	"github.com/san-kum/coingas/internal/physics"
)

// Registry is the one list of runnable policies and boundaries. It starts with
// the built-in policies of package exchange.
type Registry struct {
	policies   map[string]func(gas.Source) exchange.Policy
	boundaries map[string]func(width, height float64) physics.Boundary
}

func NewRegistry() *Registry {
	r := &Registry{
		policies:   make(map[string]func(gas.Source) exchange.Policy),
		boundaries: make(map[string]func(width, height float64) physics.Boundary),
	}

	for _, name := range exchange.Names() {
		r.policies[name] = func(src gas.Source) exchange.Policy {
			p, _ := exchange.New(name, src)
			return p
		}
	}

	r.boundaries[physics.BoundaryReflect] = func(w, h float64) physics.Boundary { return physics.Reflect{Width: w, Height: h} }
	r.boundaries[physics.BoundaryOpen] = func(_, _ float64) physics.Boundary { return physics.Open{} }

	return r
}

// RegisterPolicy adds or replaces a policy constructor.
func (r *Registry) RegisterPolicy(name string, fn func(gas.Source) exchange.Policy) {
	r.policies[name] = fn
}

func (r *Registry) GetPolicy(name string, src gas.Source) (exchange.Policy, error) {
	fn, ok := r.policies[name]
	if !ok {
		return nil, fmt.Errorf("unknown policy: %s (available: %v)", name, r.ListPolicies())
	}
	return fn(src), nil
}

func (r *Registry) GetBoundary(name string, width, height float64) (physics.Boundary, error) {
	fn, ok := r.boundaries[name]
	if !ok {
		return nil, fmt.Errorf("unknown boundary: %s", name)
	}
	return fn(width, height), nil
}

func (r *Registry) ListPolicies() []string {
	return sortedKeys(r.policies)
}

func (r *Registry) ListBoundaries() []string {
	return sortedKeys(r.boundaries)
}

// DefaultMetrics are attached to every run built from a config.
func (r *Registry) DefaultMetrics(capacity int) []metrics.Metric {
	return []metrics.Metric{
		metrics.NewKineticDrift(),
		metrics.NewTransfer(),
		metrics.NewCollisionRate(),
		metrics.NewSaturation(capacity),
	}
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
