package ecs

// Registry tracks all component stores and supports bulk cleanup on entity destroy.
// A lane world registers one store per entity kind: enemies, defenders,
// turbines and projectiles. Destroy goes through RemoveAll, so a handle never
// leaves data behind in a store of another kind.
type Registry struct {
	stores []Removable
}

func NewRegistry() *Registry {
	return &Registry{
		stores: make([]Removable, 0, 4),
	}
}

// Len reports how many stores are registered.
func (r *Registry) Len() int { return len(r.stores) }

// Register adds a component store to the registry.
func (r *Registry) Register(store Removable) {
	r.stores = append(r.stores, store)
}

// RemoveAll clears the given entity from every registered component store.
func (r *Registry) RemoveAll(id EntityID) {
	for _, s := range r.stores {
		s.Remove(id)
	}
}

