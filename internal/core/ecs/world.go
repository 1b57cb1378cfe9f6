package ecs

// World is the top-level ECS container. It owns the entity pool and the
// component registry.
//
// Destroy takes effect immediately: the handle stops being Alive and its
// components leave every store, so later lookups in the same tick miss it.
// Index reuse is held back until Recycle runs at tick end.
type World struct {
	pool     *EntityPool
	registry *Registry
}

func NewWorld() *World {
	return &World{
		pool:     NewEntityPool(),
		registry: NewRegistry(),
	}
}

func (w *World) Registry() *Registry { return w.registry }

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// Destroy removes id from every store. Returns false when id was already gone.
func (w *World) Destroy(id EntityID) bool {
	if !w.pool.Alive(id) {
		return false
	}
	w.registry.RemoveAll(id)
	return w.pool.Destroy(id)
}

// Recycle makes indices destroyed since the previous call reusable.
// Called by the cleanup phase at the end of each tick.
func (w *World) Recycle() {
	w.pool.Recycle()
}
