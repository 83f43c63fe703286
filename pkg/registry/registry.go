// Package registry keeps the set of fields bound to the form. Binding is a set
// insertion keyed by structured identity, so re-binding a field that is already
// registered is a no-op. Wire keys are unique across identities.
package registry

import (
	"sort"
	"sync"

	"github.com/goliatone/go-census/pkg/model"
)

// Registry stores field declarations in binding order.
type Registry struct {
	mu     sync.RWMutex
	order  []model.Identity
	fields map[model.Identity]model.Field
	keys   map[string]model.Identity
}

// New constructs a registry seeded with fields.
func New(fields ...model.Field) *Registry {
	r := &Registry{
		fields: make(map[model.Identity]model.Field),
		keys:   make(map[string]model.Identity),
	}
	for _, field := range fields {
		r.Bind(field)
	}
	return r
}

// Bind registers field. It reports false when the identity is already bound,
// or when its wire key belongs to another identity. The existing declaration
// is kept in both cases.
func (r *Registry) Bind(field model.Field) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.fields[field.ID]; exists {
		return false
	}
	if _, taken := r.keys[field.ID.Key()]; taken {
		return false
	}
	r.fields[field.ID] = field
	r.keys[field.ID.Key()] = field.ID
	r.order = append(r.order, field.ID)
	return true
}

// Unbind removes the identity. It reports whether anything was removed.
func (r *Registry) Unbind(id model.Identity) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.fields[id]; !exists {
		return false
	}
	delete(r.fields, id)
	if r.keys[id.Key()] == id {
		delete(r.keys, id.Key())
	}
	for i, candidate := range r.order {
		if candidate == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Bound reports whether id is registered.
func (r *Registry) Bound(id model.Identity) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.fields[id]
	return ok
}

// Lookup returns the declaration bound to id.
func (r *Registry) Lookup(id model.Identity) (model.Field, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	field, ok := r.fields[id]
	return field, ok
}

// Resolve maps a wire key back to a bound identity.
func (r *Registry) Resolve(key string) (model.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.keys[key]
	return id, ok
}

// Len reports the number of bound fields.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Fields returns the bound fields ordered by step, then binding order.
func (r *Registry) Fields() []model.Field {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Field, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.fields[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Step < out[j].Step })
	return out
}

// ForStep returns the bound fields that belong to step.
func (r *Registry) ForStep(step int) []model.Field {
	var out []model.Field
	for _, field := range r.Fields() {
		if field.Step == step {
			out = append(out, field)
		}
	}
	return out
}

// Group returns the bound fields of one dynamic group.
func (r *Registry) Group(group model.Group) []model.Field {
	var out []model.Field
	for _, field := range r.Fields() {
		if field.ID.Group == group {
			out = append(out, field)
		}
	}
	return out
}
