package world

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/l1jgo/unitsim/internal/control"
	"github.com/l1jgo/unitsim/internal/core/ecs"
	"github.com/l1jgo/unitsim/internal/core/event"
	"github.com/l1jgo/unitsim/internal/data"
	"github.com/l1jgo/unitsim/internal/unit"
	"go.uber.org/zap"
)

// Options configures a new State.
type Options struct {
	Layout   *data.MapLayout
	Env      *data.EnvTable
	Items    *data.ItemTable
	Rules    unit.Rules
	Bus      *event.Bus
	Headless bool
	Seed     int64
	Log      *zap.Logger
}

// State is the in-memory world of one simulation context: the unit store,
// team populations, terrain and buildings.
// Accessed only from the game loop goroutine, no locks needed.
type State struct {
	ecs     *ecs.World
	units   *ecs.PtrComponentStore[unit.Unit]
	teams   *Teams
	terrain *Grid
	aoi     *AOIGrid
	effects *EffectLog
	env     *data.EnvTable
	items   *data.ItemTable

	types     map[string]*unit.Type
	cores     []*Core
	factories []*Factory
	spawns    []unit.Vec2

	ctl *control.Env
	sim *unit.Sim
	log *zap.Logger
}

func NewState(opts Options) (*State, error) {
	grid, err := NewGrid(opts.Layout, opts.Env)
	if err != nil {
		return nil, err
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	ws := &State{
		ecs:     ecs.NewWorld(),
		units:   ecs.NewPtrComponentStore[unit.Unit](),
		teams:   NewTeams(opts.Rules),
		terrain: grid,
		aoi:     NewAOIGrid(),
		effects: NewEffectLog(log),
		env:     opts.Env,
		items:   opts.Items,
		types:   make(map[string]*unit.Type),
		log:     log,
	}
	ws.ecs.Registry().Register(ws.units)
	ws.ctl = &control.Env{Targets: ws}

	for _, p := range opts.Layout.Spawns {
		ws.spawns = append(ws.spawns, grid.WorldPos(p))
	}
	for i, c := range opts.Layout.Cores {
		pos := data.TilePos{X: c.X, Y: c.Y}
		core := &Core{
			ID:       int32(i + 1),
			Team:     unit.Team(c.Team),
			Pos:      grid.WorldPos(pos),
			CapBonus: c.CapBonus,
			Items:    make(map[string]int, len(c.Items)),
		}
		for name, n := range c.Items {
			core.Items[name] = n
		}
		ws.cores = append(ws.cores, core)
		ws.teams.AddCapBonus(core.Team, core.CapBonus)
		grid.setBuild(pos, core)
	}

	ws.sim = &unit.Sim{
		Rules:    opts.Rules,
		Pop:      ws.teams,
		Terrain:  grid,
		Spawner:  ws,
		Area:     &Area{ws: ws},
		Effects:  ws.effects,
		Bus:      opts.Bus,
		Entities: ws,
		Rand:     rand.New(rand.NewSource(opts.Seed)),
		Headless: opts.Headless,
		Log:      log,
	}
	return ws, nil
}

// Sim returns the unit engine context bound to this world. Its Net field is
// set by the network node once it exists.
func (ws *State) Sim() *unit.Sim              { return ws.sim }
func (ws *State) Control() *control.Env       { return ws.ctl }
func (ws *State) Teams() *Teams               { return ws.teams }
func (ws *State) Terrain() *Grid              { return ws.terrain }
func (ws *State) Effects() *EffectLog         { return ws.effects }
func (ws *State) Env() *data.EnvTable         { return ws.env }
func (ws *State) Items() *data.ItemTable      { return ws.items }
func (ws *State) Cores() []*Core              { return ws.cores }
func (ws *State) Factories() []*Factory       { return ws.factories }
func (ws *State) SpawnPoints() []unit.Vec2    { return ws.spawns }
func (ws *State) UnitCount() int              { return ws.units.Len() }
func (ws *State) Type(name string) *unit.Type { return ws.types[name] }

// RegisterType makes a built unit type available by name.
func (ws *State) RegisterType(t *unit.Type) {
	ws.types[t.Name] = t
}

// PlaceFactories creates the layout's production blocks. Unit types must be
// registered first.
func (ws *State) PlaceFactories(layout *data.MapLayout, blocks *data.FactoryTable) error {
	for _, fs := range layout.Factories {
		block := blocks.Get(fs.Block)
		if block == nil {
			return fmt.Errorf("map: unknown factory block %q", fs.Block)
		}
		t := ws.types[block.UnitType]
		if t == nil {
			return fmt.Errorf("factory %s: unknown unit type %q", block.Name, block.UnitType)
		}
		pos := data.TilePos{X: fs.X, Y: fs.Y}
		f := &Factory{
			ID:    int32(len(ws.cores) + len(ws.factories) + 1),
			Block: block,
			Type:  t,
			Team:  unit.Team(fs.Team),
			Pos:   ws.terrain.WorldPos(pos),
		}
		ws.factories = append(ws.factories, f)
		ws.terrain.setBuild(pos, f)
	}
	return nil
}

func (ws *State) Factory(id int32) *Factory {
	for _, f := range ws.factories {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// Unit returns a unit by ID, nil if unknown.
func (ws *State) Unit(id int32) *unit.Unit {
	u, _ := ws.units.Get(ecs.EntityID(id))
	return u
}

// EachUnit visits every stored unit in ID order, including removed units
// still waiting for cleanup.
func (ws *State) EachUnit(fn func(*unit.Unit)) {
	ws.units.Each(func(_ ecs.EntityID, u *unit.Unit) { fn(u) })
}

// Units returns the active units in ID order.
func (ws *State) Units() []*unit.Unit {
	out := make([]*unit.Unit, 0, ws.units.Len())
	ws.EachUnit(func(u *unit.Unit) {
		if u.Active() {
			out = append(out, u)
		}
	})
	return out
}

// NewUnit builds a unit with a freshly allocated ID. Only the authority
// allocates IDs; the unit is not added yet.
func (ws *State) NewUnit(t *unit.Type, team unit.Team, x, y float64) *unit.Unit {
	u := t.Create(team)
	u.ID = int32(ws.ecs.CreateEntity())
	u.X, u.Y = x, y
	return u
}

// AddUnit stores u and registers it with its team. Adding a known ID twice
// is ignored.
func (ws *State) AddUnit(u *unit.Unit) {
	id := ecs.EntityID(u.ID)
	if ws.units.Has(id) {
		return
	}
	ws.ecs.AdoptEntity(id)
	ws.units.Set(id, u)
	ws.aoi.Add(u.ID, u.X, u.Y)
	ws.sim.Add(u)
}

// Discard implements unit.Entities: the unit leaves the spatial index at once
// and the store at the next cleanup.
func (ws *State) Discard(u *unit.Unit) {
	ws.aoi.Remove(u.ID)
	ws.ecs.MarkForDestruction(ecs.EntityID(u.ID))
	if u.FactoryID != 0 {
		if f := ws.Factory(u.FactoryID); f != nil {
			f.UnitRemoved()
		}
	}
}

// Reindex refreshes a unit's spatial cell after it moved.
func (ws *State) Reindex(u *unit.Unit) {
	if u.Active() {
		ws.aoi.Move(u.ID, u.X, u.Y)
	}
}

// Flush drops units removed during the tick from the store.
func (ws *State) Flush() {
	ws.ecs.FlushDestroyQueue()
}

// within calls fn for every active unit inside the circle.
func (ws *State) within(x, y, r float64, fn func(*unit.Unit)) {
	for _, id := range ws.aoi.Nearby(x, y, r) {
		u := ws.Unit(id)
		if u == nil || !u.Active() || !u.Within(x, y, r) {
			continue
		}
		fn(u)
	}
}

// ClosestEnemy returns the nearest living unit of another team inside r.
func (ws *State) ClosestEnemy(team unit.Team, x, y, r float64) *unit.Unit {
	var best *unit.Unit
	bestDst := math.MaxFloat64
	ws.within(x, y, r, func(u *unit.Unit) {
		if u.Team == team || u.Team == unit.TeamDerelict || u.Dead {
			return
		}
		// ties go to the lower ID so every node picks the same target
		if d := u.Dst(x, y); d < bestDst || (d == bestDst && best != nil && u.ID < best.ID) {
			best, bestDst = u, d
		}
	})
	return best
}

// EnemyCore returns the position of the nearest core of another team.
func (ws *State) EnemyCore(team unit.Team, x, y float64) (unit.Vec2, bool) {
	var best *Core
	bestDst := math.MaxFloat64
	for _, c := range ws.cores {
		if c.Team == team || c.Team == unit.TeamDerelict {
			continue
		}
		if d := c.Pos.Dst(unit.Vec2{X: x, Y: y}); d < bestDst {
			best, bestDst = c, d
		}
	}
	if best == nil {
		return unit.Vec2{}, false
	}
	return best.Pos, true
}

// EachAllyWithin visits living units of team inside the circle.
func (ws *State) EachAllyWithin(team unit.Team, x, y, r float64, fn func(*unit.Unit)) {
	ws.within(x, y, r, func(u *unit.Unit) {
		if u.Team == team && !u.Dead {
			fn(u)
		}
	})
}

// ClosestCore returns team's nearest core within r, nil if none.
func (ws *State) ClosestCore(team unit.Team, x, y, r float64) *Core {
	var best *Core
	bestDst := r
	for _, c := range ws.cores {
		if c.Team != team {
			continue
		}
		if d := c.Pos.Dst(unit.Vec2{X: x, Y: y}); d <= bestDst {
			best, bestDst = c, d
		}
	}
	return best
}

// CoreOf returns the first core of team.
func (ws *State) CoreOf(team unit.Team) *Core {
	for _, c := range ws.cores {
		if c.Team == team {
			return c
		}
	}
	return nil
}
