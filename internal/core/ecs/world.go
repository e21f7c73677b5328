package ecs

// World owns the ID allocator, the component registry, and a deferred
// destruction queue flushed by CleanupSystem each tick.
type World struct {
	ids          IDAllocator
	registry     *Registry
	destroyQueue []EntityID
	queued       map[EntityID]struct{}
}

func NewWorld() *World {
	return &World{
		registry:     NewRegistry(),
		destroyQueue: make([]EntityID, 0, 64),
		queued:       make(map[EntityID]struct{}, 64),
	}
}

func (w *World) Registry() *Registry { return w.registry }

// CreateEntity allocates a new ID. Only the authoritative node calls this.
func (w *World) CreateEntity() EntityID {
	return w.ids.Next()
}

// AdoptEntity records an ID allocated elsewhere (a spawn broadcast or a
// restored snapshot).
func (w *World) AdoptEntity(id EntityID) {
	w.ids.Observe(id)
}

// MarkForDestruction queues an entity for end-of-tick cleanup. Queuing the
// same entity twice is harmless.
func (w *World) MarkForDestruction(id EntityID) {
	if _, ok := w.queued[id]; ok {
		return
	}
	w.queued[id] = struct{}{}
	w.destroyQueue = append(w.destroyQueue, id)
}

// Pending reports how many entities wait for the next flush.
func (w *World) Pending() int { return len(w.destroyQueue) }

// FlushDestroyQueue removes all queued entities from every store.
// Called by CleanupSystem at the end of each tick.
func (w *World) FlushDestroyQueue() {
	for _, id := range w.destroyQueue {
		w.registry.RemoveAll(id)
		delete(w.queued, id)
	}
	w.destroyQueue = w.destroyQueue[:0]
}

// Registry tracks every component store plus removal hooks, so one flush
// clears an entity everywhere.
type Registry struct {
	stores []Removable
	hooks  []func(EntityID)
}

func NewRegistry() *Registry {
	return &Registry{stores: make([]Removable, 0, 8)}
}

func (r *Registry) Register(store Removable) {
	r.stores = append(r.stores, store)
}

// OnRemove registers fn to run after an entity is cleared from all stores.
func (r *Registry) OnRemove(fn func(EntityID)) {
	r.hooks = append(r.hooks, fn)
}

func (r *Registry) RemoveAll(id EntityID) {
	for _, s := range r.stores {
		s.Remove(id)
	}
	for _, fn := range r.hooks {
		fn(id)
	}
}
