package hotkey

import (
	"log/slog"
	"maps"
	"slices"
)

// Binding is the association between a logical id and a combination.
type Binding struct {
	ID         int
	Combo      Combination
	Registered bool
}

// Registry owns the logical bindings for one backend. It is not safe for
// concurrent use; the owner serializes calls.
type Registry struct {
	backend  Backend
	bindings map[int]*Binding
}

// NewRegistry returns an empty registry over backend.
func NewRegistry(backend Backend) *Registry {
	return &Registry{
		backend:  backend,
		bindings: make(map[int]*Binding),
	}
}

// RegisterBinding installs c for id, replacing any existing binding. The old
// binding is unregistered first; if the new registration fails the id is left
// with no binding at all.
func (r *Registry) RegisterBinding(id int, c Combination) bool {
	if _, ok := r.bindings[id]; ok {
		r.UnregisterBinding(id)
	}
	if err := r.backend.Register(id, c); err != nil {
		slog.Warn("hotkey registration failed",
			"id", id,
			"combination", c.String(),
			"backend", r.backend.Name(),
			"err", err,
		)
		return false
	}
	r.bindings[id] = &Binding{ID: id, Combo: c, Registered: true}
	slog.Info("hotkey registered", "id", id, "combination", c.String())
	return true
}

// UnregisterBinding releases the binding for id. Returns false when id has
// no binding.
func (r *Registry) UnregisterBinding(id int) bool {
	b, ok := r.bindings[id]
	if !ok {
		return false
	}
	delete(r.bindings, id)
	if err := r.backend.Unregister(id, b.Combo); err != nil {
		slog.Warn("hotkey unregister failed", "id", id, "combination", b.Combo.String(), "err", err)
	} else {
		slog.Debug("hotkey unregistered", "id", id, "combination", b.Combo.String())
	}
	return true
}

// UnregisterAll releases every binding.
func (r *Registry) UnregisterAll() {
	for _, id := range slices.Sorted(maps.Keys(r.bindings)) {
		r.UnregisterBinding(id)
	}
}

// Binding returns a copy of the binding for id.
func (r *Registry) Binding(id int) (Binding, bool) {
	b, ok := r.bindings[id]
	if !ok {
		return Binding{}, false
	}
	return *b, true
}

// Len returns the number of live bindings.
func (r *Registry) Len() int { return len(r.bindings) }

// Fired returns the logical-id event stream of the backend.
func (r *Registry) Fired() <-chan int { return r.backend.Fired() }

// Close unregisters everything and closes the backend.
func (r *Registry) Close() error {
	r.UnregisterAll()
	return r.backend.Close()
}
