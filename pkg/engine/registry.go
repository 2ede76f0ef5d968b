package engine

import (
	"fmt"
	"sort"
	"sync"
)

// WildcardModel registers an observer against every model.
const WildcardModel = "*"

// Registry is the explicit registration map from (model-or-wildcard, ring)
// to an ordered observer list. It is populated at startup by the plugin
// loading step and read-only afterwards; lookups for identical inputs return
// identically ordered results within one process lifetime absent explicit
// registration changes.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]map[Ring][]*Observer
	nextSeq uint64
}

// NewRegistry creates an empty observer registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]map[Ring][]*Observer)}
}

// Register binds an observer to modelName ("*" for every model) on the
// observer's declared ring. Registration order is recorded and preserved for
// equal-priority observers.
func (r *Registry) Register(modelName string, obs *Observer) error {
	if obs == nil {
		return fmt.Errorf("register: nil observer")
	}
	if obs.Name == "" {
		return fmt.Errorf("register: observer name is required")
	}
	if obs.Ring < 0 || obs.Ring >= NumRings {
		return fmt.Errorf("register %s: ring %d out of range 0-%d", obs.Name, obs.Ring, NumRings-1)
	}
	if obs.Execute == nil {
		return fmt.Errorf("register %s: behavior is required", obs.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextSeq++
	obs.seq = r.nextSeq

	rings, ok := r.entries[modelName]
	if !ok {
		rings = make(map[Ring][]*Observer)
		r.entries[modelName] = rings
	}
	rings[obs.Ring] = append(rings[obs.Ring], obs)
	return nil
}

// MustRegister is Register that panics on an invalid definition. Intended
// for startup wiring where a bad registration is a programming error.
func (r *Registry) MustRegister(modelName string, obs *Observer) {
	if err := r.Register(modelName, obs); err != nil {
		panic(err)
	}
}

// GetObservers returns the applicable observers for (modelName, ring):
// model-specific and wildcard registrations merged by registration sequence.
// The returned slice is a copy and safe to reorder.
func (r *Registry) GetObservers(modelName string, ring Ring) []*Observer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Observer
	if rings, ok := r.entries[modelName]; ok {
		out = append(out, rings[ring]...)
	}
	if modelName != WildcardModel {
		if rings, ok := r.entries[WildcardModel]; ok {
			out = append(out, rings[ring]...)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// Len returns the total number of registered observers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, rings := range r.entries {
		for _, observers := range rings {
			n += len(observers)
		}
	}
	return n
}
