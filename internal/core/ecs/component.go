package ecs

// Removable is implemented by all component stores so the Registry can
// bulk-remove an entity's data from every store on destroy.
type Removable interface {
	Remove(id EntityID)
}

// PtrComponentStore is a generic typed store for ECS components.
// Iteration follows insertion order so a tick replays identically.
type PtrComponentStore[T any] struct {
	data  map[EntityID]*T
	order []EntityID
	holes int
	walks int
}

func NewPtrComponentStore[T any]() *PtrComponentStore[T] {
	return &PtrComponentStore[T]{
		data:  make(map[EntityID]*T, 256),
		order: make([]EntityID, 0, 256),
	}
}

func (s *PtrComponentStore[T]) Set(id EntityID, c *T) {
	if _, ok := s.data[id]; !ok {
		s.order = append(s.order, id)
	}
	s.data[id] = c
}

func (s *PtrComponentStore[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

func (s *PtrComponentStore[T]) Remove(id EntityID) {
	if _, ok := s.data[id]; !ok {
		return
	}
	delete(s.data, id)
	s.holes++
}

func (s *PtrComponentStore[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *PtrComponentStore[T]) Len() int {
	return len(s.data)
}

// Each visits components in insertion order. Entries removed during the walk
// are skipped; entries added during the walk are not visited.
func (s *PtrComponentStore[T]) Each(fn func(EntityID, *T)) {
	s.compact()
	s.walks++
	defer func() { s.walks-- }()
	n := len(s.order)
	for i := 0; i < n; i++ {
		id := s.order[i]
		c, ok := s.data[id]
		if !ok {
			continue
		}
		fn(id, c)
	}
}

// compact drops removed ids from the order slice. Nested walks leave it alone.
func (s *PtrComponentStore[T]) compact() {
	if s.holes == 0 || s.walks > 0 {
		return
	}
	kept := s.order[:0]
	for _, id := range s.order {
		if _, ok := s.data[id]; ok {
			kept = append(kept, id)
		}
	}
	for i := len(kept); i < len(s.order); i++ {
		s.order[i] = 0
	}
	s.order = kept
	s.holes = 0
}
