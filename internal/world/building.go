package world

import (
	"github.com/l1jgo/unitsim/internal/data"
	"github.com/l1jgo/unitsim/internal/unit"
)

// Core is a team's base. It stores items that units draw ammunition from
// and raises the team's unit cap.
type Core struct {
	ID       int32
	Team     unit.Team
	Pos      unit.Vec2
	CapBonus int
	Items    map[string]int
}

// UnitOn is a no-op: units may stand on a core.
func (c *Core) UnitOn(*unit.Unit) {}

// Take removes up to n of item and returns how many were removed.
func (c *Core) Take(item string, n int) int {
	have := c.Items[item]
	if n > have {
		n = have
	}
	c.Items[item] = have - n
	return n
}

// Factory is a production block. Every node tracks the build timer and the
// spawned count; only the authority turns a finished build into a unit.
type Factory struct {
	ID        int32
	Block     *data.FactoryBlock
	Type      *unit.Type
	Team      unit.Team
	Pos       unit.Vec2
	BuildTime float64
	Spawned   int
}

func (f *Factory) UnitOn(*unit.Unit) {}

// CanProduce reports whether the factory is below its spawn limit.
func (f *Factory) CanProduce() bool { return f.Spawned < f.Block.MaxSpawn }

// Advance runs the build timer and reports whether a unit is ready.
func (f *Factory) Advance(delta, speed float64) bool {
	if !f.CanProduce() {
		return false
	}
	f.BuildTime += delta * speed
	return f.BuildTime >= f.Block.ProduceTime
}

func (f *Factory) Progress() float64 {
	if f.Block.ProduceTime <= 0 {
		return 0
	}
	return f.BuildTime / f.Block.ProduceTime
}

// ApplySpawned resets the timer after a completed build. spawned is the
// authoritative count carried by the broadcast.
func (f *Factory) ApplySpawned(spawned int) {
	f.BuildTime = 0
	f.Spawned = spawned
}

// UnitRemoved releases one production slot.
func (f *Factory) UnitRemoved() {
	if f.Spawned > 0 {
		f.Spawned--
	}
}
