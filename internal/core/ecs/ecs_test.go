package ecs

import "testing"

type comp struct{ v int }

func TestStore_EachVisitsInIDOrder(t *testing.T) {
	s := NewPtrComponentStore[comp]()
	for _, id := range []EntityID{5, 2, 9, 1} {
		s.Set(id, &comp{v: int(id)})
	}

	var got []EntityID
	s.Each(func(id EntityID, _ *comp) { got = append(got, id) })

	want := []EntityID{1, 2, 5, 9}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestStore_SetTwiceKeepsOneEntry(t *testing.T) {
	s := NewPtrComponentStore[comp]()
	s.Set(3, &comp{v: 1})
	s.Set(3, &comp{v: 2})

	if s.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", s.Len())
	}
	count := 0
	s.Each(func(EntityID, *comp) { count++ })
	if count != 1 {
		t.Errorf("expected Each to visit 1 entry, got %d", count)
	}
	c, _ := s.Get(3)
	if c.v != 2 {
		t.Errorf("expected latest value 2, got %d", c.v)
	}
}

func TestWorld_FlushRemovesFromAllStores(t *testing.T) {
	w := NewWorld()
	a := NewPtrComponentStore[comp]()
	b := NewPtrComponentStore[comp]()
	w.Registry().Register(a)
	w.Registry().Register(b)

	var removed []EntityID
	w.Registry().OnRemove(func(id EntityID) { removed = append(removed, id) })

	id := w.CreateEntity()
	a.Set(id, &comp{})
	b.Set(id, &comp{})

	w.MarkForDestruction(id)
	w.MarkForDestruction(id)
	if w.Pending() != 1 {
		t.Fatalf("expected 1 pending entity, got %d", w.Pending())
	}

	w.FlushDestroyQueue()
	if a.Has(id) || b.Has(id) {
		t.Error("expected entity removed from every store")
	}
	if len(removed) != 1 || removed[0] != id {
		t.Errorf("expected one removal hook call for %d, got %v", id, removed)
	}
}

func TestWorld_AdoptedIDsAreNotReissued(t *testing.T) {
	w := NewWorld()
	w.AdoptEntity(40)
	if id := w.CreateEntity(); id != 41 {
		t.Errorf("expected 41 after adopting 40, got %d", id)
	}
	w.AdoptEntity(10)
	if id := w.CreateEntity(); id != 42 {
		t.Errorf("expected 42, got %d", id)
	}
}
