package ecs

import "sync/atomic"

// EntityID identifies an entity across every simulation context. IDs are
// allocated only by the authoritative node and carried verbatim in spawn
// broadcasts, so replicas never allocate their own.
type EntityID int32

func (id EntityID) IsZero() bool { return id == 0 }

// IDAllocator hands out monotonically increasing entity IDs starting at 1.
type IDAllocator struct {
	next atomic.Int32
}

// Next returns a fresh ID.
func (a *IDAllocator) Next() EntityID {
	return EntityID(a.next.Add(1))
}

// Observe advances the allocator past id so IDs restored from storage or
// received from another node are never reissued.
func (a *IDAllocator) Observe(id EntityID) {
	for {
		cur := a.next.Load()
		if int32(id) <= cur {
			return
		}
		if a.next.CompareAndSwap(cur, int32(id)) {
			return
		}
	}
}
