package system

import (
	"time"

	"github.com/l1jgo/unitsim/internal/core/event"
	coresys "github.com/l1jgo/unitsim/internal/core/system"
	"github.com/l1jgo/unitsim/internal/netsync"
	"github.com/l1jgo/unitsim/internal/unit"
	"github.com/l1jgo/unitsim/internal/world"
	"go.uber.org/zap"
)

// launchJitter is the random offset, in world units, around the block
// centre where a finished unit appears.
const launchJitter = 4

// ProductionSystem runs the factory build timers. Every node advances the
// timers; only the authority turns a finished build into a unit. Phase 2
// (Update), registered before the unit pipeline.
type ProductionSystem struct {
	world *world.State
	node  *netsync.Node
	speed float64
	log   *zap.Logger
}

func NewProductionSystem(ws *world.State, node *netsync.Node, speed float64, log *zap.Logger) *ProductionSystem {
	return &ProductionSystem{world: ws, node: node, speed: speed, log: log}
}

func (s *ProductionSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *ProductionSystem) Update(dt time.Duration) {
	delta := unit.DeltaOf(dt)
	for _, f := range s.world.Factories() {
		if !f.Advance(delta, s.speed) || !s.node.Authoritative() {
			continue
		}
		s.produce(f)
	}
}

func (s *ProductionSystem) produce(f *world.Factory) {
	s.node.FactorySpawn(f.ID, f.Spawned+1)

	sim := s.world.Sim()
	x := f.Pos.X + jitter(sim)
	y := f.Pos.Y + jitter(sim)
	u := s.world.NewUnit(f.Type, f.Team, x, y)
	u.Rotation = 90
	u.Vel.Y = f.Block.LaunchVelocity
	u.FactoryID = f.ID

	s.node.SpawnUnit(u)
	if sim.Bus != nil {
		event.Emit(sim.Bus, event.UnitCreated{
			UnitID:  u.ID,
			Team:    int(u.Team),
			Type:    f.Type.Name,
			Factory: f.ID,
		})
	}
	s.log.Debug("unit produced",
		zap.Int32("factory", f.ID),
		zap.Int32("unit", u.ID),
		zap.String("type", f.Type.Name),
		zap.Int("spawned", f.Spawned),
	)
}

func jitter(sim *unit.Sim) float64 {
	if sim.Rand == nil {
		return 0
	}
	return (sim.Rand.Float64()*2 - 1) * launchJitter
}
