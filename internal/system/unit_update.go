package system

import (
	"time"

	coresys "github.com/l1jgo/unitsim/internal/core/system"
	"github.com/l1jgo/unitsim/internal/unit"
	"github.com/l1jgo/unitsim/internal/world"
)

// UnitUpdateSystem runs the per-unit pipeline in ID order. Phase 2 (Update).
type UnitUpdateSystem struct {
	world *world.State
}

func NewUnitUpdateSystem(ws *world.State) *UnitUpdateSystem {
	return &UnitUpdateSystem{world: ws}
}

func (s *UnitUpdateSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *UnitUpdateSystem) Update(dt time.Duration) {
	delta := unit.DeltaOf(dt)
	s.world.Control().Delta = delta
	sim := s.world.Sim()
	for _, u := range s.world.Units() {
		sim.Update(u, delta)
	}
}

// PhysicsSystem integrates motion, refreshes the spatial index and ticks
// status effects. Phase 3 (PostUpdate).
type PhysicsSystem struct {
	world *world.State
}

func NewPhysicsSystem(ws *world.State) *PhysicsSystem {
	return &PhysicsSystem{world: ws}
}

func (s *PhysicsSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *PhysicsSystem) Update(dt time.Duration) {
	delta := unit.DeltaOf(dt)
	sim := s.world.Sim()
	for _, u := range s.world.Units() {
		sim.Integrate(u, delta)
		s.world.Reindex(u)
		sim.UpdateStatuses(u, delta)
	}
}
