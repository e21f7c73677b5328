package unit

import (
	"math/rand"
	"time"

	"github.com/l1jgo/unitsim/internal/core/event"
	"github.com/l1jgo/unitsim/internal/data"
	"go.uber.org/zap"
)

// TicksPerSecond defines the time unit: one unit of delta is 1/60 second.
const TicksPerSecond = 60

// DeltaOf converts a wall-clock tick duration to time units.
func DeltaOf(dt time.Duration) float64 {
	return dt.Seconds() * TicksPerSecond
}

// Rules is the slice of the ruleset the unit engine reads.
type Rules struct {
	UnitAmmo         bool
	UnitCap          int
	UnitCapVariable  bool
	WaveTeam         Team
	DropZoneRadius   float64
	DamageExplosions bool
}

// Tile is what the terrain reports about one grid cell.
type Tile struct {
	Floor *data.Floor
	Build Building
	Solid bool
}

// Building is a structure occupying a tile that reacts to units on it.
type Building interface {
	UnitOn(u *Unit)
}

// Terrain resolves world coordinates to tiles. TileAt returns nil outside
// the map.
type Terrain interface {
	TileAt(x, y float64) *Tile
}

// Spawner lists the active wave spawn points.
type Spawner interface {
	SpawnPoints() []Vec2
}

// Damager applies area damage around a point.
type Damager interface {
	DynamicExplosion(x, y, flammability, explosiveness, power, radius float64, damage bool)
	Damage(team Team, x, y, radius, amount float64, complete, air, ground bool)
}

// Effects receives observational output. Nothing it does feeds back into
// simulation state.
type Effects interface {
	Effect(name string, x, y, rotation float64)
	Shake(intensity, duration, x, y float64)
	Sound(name string, x, y float64)
	Scorch(x, y float64, size int)
	Decal(region string, x, y, rotation float64)
}

// Authority decides which node may originate state changes. On the
// authoritative node requests are broadcast and applied locally; on a
// replica they are forwarded and nothing changes until the broadcast echoes.
type Authority interface {
	Authoritative() bool
	RequestKill(id int32)
	RequestCapDeath(id int32)
	RequestDespawn(id int32)
}

// Entities is notified when a unit leaves the simulation for good.
type Entities interface {
	Discard(u *Unit)
}

// Sim bundles the collaborators of one simulation context. Terrain, Spawner,
// Bus, Entities and Rand may be nil; the steps that need them are skipped.
type Sim struct {
	Rules    Rules
	Pop      Population
	Terrain  Terrain
	Spawner  Spawner
	Area     Damager
	Effects  Effects
	Bus      *event.Bus
	Net      Authority
	Entities Entities
	Rand     *rand.Rand
	Headless bool
	Log      *zap.Logger
}

func (s *Sim) tileOn(u *Unit) *Tile {
	if s.Terrain == nil {
		return nil
	}
	return s.Terrain.TileAt(u.X, u.Y)
}

// chance rolls a per-tick probability. Without a random source nothing
// decorative happens.
func (s *Sim) chance(p float64) bool {
	return s.Rand != nil && s.Rand.Float64() < p
}

// rng returns a uniform value in [-r, r].
func (s *Sim) rng(r float64) float64 {
	if s.Rand == nil {
		return 0
	}
	return (s.Rand.Float64()*2 - 1) * r
}

func (s *Sim) randomDir(l float64) Vec2 {
	if s.Rand == nil {
		return Vec2{}
	}
	return Trns(s.Rand.Float64()*360, l)
}

func (s *Sim) authoritative() bool {
	return s.Net.Authoritative()
}
