package ecs

import "sort"

// Removable is implemented by all component stores so the Registry can
// bulk-remove an entity's data from every store on destroy.
type Removable interface {
	Remove(id EntityID)
}

// PtrComponentStore is a generic typed map store. Iteration through Each
// visits entries in ascending ID order so every context updates entities in
// the same sequence.
type PtrComponentStore[T any] struct {
	data  map[EntityID]*T
	order []EntityID
	dirty bool
}

func NewPtrComponentStore[T any]() *PtrComponentStore[T] {
	return &PtrComponentStore[T]{
		data:  make(map[EntityID]*T, 256),
		order: make([]EntityID, 0, 256),
	}
}

func (s *PtrComponentStore[T]) Set(id EntityID, c *T) {
	if _, ok := s.data[id]; !ok {
		if n := len(s.order); n > 0 && s.order[n-1] > id {
			s.dirty = true
		}
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
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *PtrComponentStore[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *PtrComponentStore[T]) Len() int {
	return len(s.data)
}

// Each visits every entry in ID order. fn may add entries (they are visited
// on the next call) but must not remove them; removal goes through
// World.MarkForDestruction.
func (s *PtrComponentStore[T]) Each(fn func(EntityID, *T)) {
	if s.dirty {
		sort.Slice(s.order, func(i, j int) bool { return s.order[i] < s.order[j] })
		s.dirty = false
	}
	n := len(s.order)
	for i := 0; i < n; i++ {
		id := s.order[i]
		if c, ok := s.data[id]; ok {
			fn(id, c)
		}
	}
}
