package opentherm

import (
	"sort"
	"sync"

	"otmqtt-bridge/pkg/logger"
)

// Registry maps data ids to register specs. Lookups are total: ids missing
// from the table get a placeholder spec that is remembered, so every later
// lookup of the same id returns the same pointer.
type Registry struct {
	mu    sync.RWMutex
	specs map[uint8]*RegisterSpec
	log   logger.ILogger
}

// NewRegistry returns a registry seeded with the OpenTherm v2.2 table
func NewRegistry(log logger.ILogger) *Registry {
	if log == nil {
		log = logger.NewStandardLogger()
	}
	r := &Registry{
		specs: make(map[uint8]*RegisterSpec, len(specTable)),
		log:   log,
	}
	for i := range specTable {
		spec := specTable[i]
		r.specs[spec.ID] = &spec
	}
	return r
}

// Lookup returns the spec for id, synthesizing a placeholder on first sight
// of an unknown id
func (r *Registry) Lookup(id uint8) *RegisterSpec {
	spec, _ := r.Resolve(id)
	return spec
}

// Resolve is Lookup that also reports whether this call synthesized the
// placeholder
func (r *Registry) Resolve(id uint8) (spec *RegisterSpec, created bool) {
	r.mu.RLock()
	spec, ok := r.specs[id]
	r.mu.RUnlock()
	if ok {
		return spec, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if spec, ok := r.specs[id]; ok {
		return spec, false
	}
	spec = placeholderSpec(id)
	r.specs[id] = spec
	r.log.LogWarn("Unknown OpenTherm register %d, using placeholder", id)
	return spec, true
}

// Known reports whether id is part of the static table
func (r *Registry) Known(id uint8) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[id]
	return ok && !spec.Placeholder
}

// All returns every spec, placeholders included, ordered by id
func (r *Registry) All() []*RegisterSpec {
	r.mu.RLock()
	out := make([]*RegisterSpec, 0, len(r.specs))
	for _, spec := range r.specs {
		out = append(out, spec)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
