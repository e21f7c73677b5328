package world

import (
	"math"
	"testing"

	"github.com/l1jgo/unitsim/internal/control"
	"github.com/l1jgo/unitsim/internal/core/event"
	"github.com/l1jgo/unitsim/internal/data"
	"github.com/l1jgo/unitsim/internal/unit"
	"go.uber.org/zap"
)

// loopback decides everything locally, like an authority with no peers.
type loopback struct{ ws *State }

func (l loopback) Authoritative() bool      { return true }
func (l loopback) RequestKill(id int32)     { l.ws.ApplyDeath(id) }
func (l loopback) RequestCapDeath(id int32) { l.ws.ApplyCapDeath(id) }
func (l loopback) RequestDespawn(id int32)  { l.ws.ApplyDespawn(id) }

func testLayout() *data.MapLayout {
	return &data.MapLayout{
		Width:        40,
		Height:       40,
		TileSize:     8,
		DefaultFloor: "stone",
		Regions:      []data.FloorRegion{{Floor: "slag", X: 30, Y: 30, W: 2, H: 2}},
		Walls:        []data.TilePos{{X: 5, Y: 5}},
		Spawns:       []data.TilePos{{X: 35, Y: 5}},
		Cores: []data.CoreSpawn{
			{Team: 1, X: 2, Y: 2, CapBonus: 4, Items: map[string]int{"copper": 2}},
			{Team: 2, X: 37, Y: 37},
		},
		Factories: []data.FactorySpawn{{Block: "ground-factory", Team: 1, X: 10, Y: 2}},
	}
}

func testEnv() *data.EnvTable {
	return data.NewEnvTable(
		[]data.Floor{{Name: "stone"}, {Name: "slag", DamageTaken: 0.5}},
		[]data.StatusEffect{{Name: "burning", Damage: 0.1}},
	)
}

func newTestState(t *testing.T) *State {
	t.Helper()
	ws, err := NewState(Options{
		Layout:   testLayout(),
		Env:      testEnv(),
		Items:    data.NewItemTable([]data.Item{{Name: "copper"}, {Name: "blast", Explosiveness: 1.2}}),
		Rules:    unit.Rules{UnitCap: 8, WaveTeam: 2, DropZoneRadius: 20, DamageExplosions: true},
		Bus:      event.NewBus(),
		Headless: true,
		Seed:     1,
		Log:      zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	ws.Sim().Net = loopback{ws}

	ground, _ := control.Factory("ground", ws.Control())
	ws.RegisterType(&unit.Type{
		Name: "dagger", Health: 100, HitSize: 8, Drag: 0.3, Speed: 0.5, Accel: 0.5,
		RotateSpeed: 5, Range: 60, FallSpeed: 0.02, AmmoCapacity: 10,
		ControllerFactory: ground,
	})
	flying, _ := control.Factory("flying", ws.Control())
	ws.RegisterType(&unit.Type{
		Name: "flare", Health: 70, HitSize: 9, Drag: 0.01, Flying: true, FallSpeed: 0.5,
		CrashDamageMultiplier: 1, Range: 80, ControllerFactory: flying,
	})
	return ws
}

func TestGrid(t *testing.T) {
	g, err := NewGrid(testLayout(), testEnv())
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	if tile := g.TileAt(-1, 4); tile != nil {
		t.Error("expected nil off the map")
	}
	if tile := g.TileAt(5*8+1, 5*8+1); tile == nil || !tile.Solid {
		t.Error("expected wall tile solid")
	}
	if tile := g.TileAt(30*8, 31*8+7); tile.Floor.Name != "slag" {
		t.Errorf("expected slag region, got %s", tile.Floor.Name)
	}
	if p := g.WorldPos(data.TilePos{X: 1, Y: 2}); p.X != 12 || p.Y != 20 {
		t.Errorf("expected tile centre (12,20), got %v", p)
	}

	bad := testLayout()
	bad.DefaultFloor = "lava"
	if _, err := NewGrid(bad, testEnv()); err == nil {
		t.Error("expected error for unknown floor")
	}
}

func TestTeams(t *testing.T) {
	typ := &unit.Type{Name: "dagger"}
	teams := NewTeams(unit.Rules{UnitCap: 5, UnitCapVariable: true})
	teams.AddCapBonus(1, 3)
	teams.AdjustCount(1, typ, 2)
	teams.AdjustCount(1, typ, -5)
	if n := teams.CountOf(1, typ); n != 0 {
		t.Errorf("expected count floored at 0, got %d", n)
	}
	if c := teams.Cap(1); c != 8 {
		t.Errorf("expected cap 8, got %d", c)
	}
	if c := teams.Cap(2); c != 5 {
		t.Errorf("expected cap 5 without cores, got %d", c)
	}
}

func TestAOIGrid(t *testing.T) {
	g := NewAOIGrid()
	g.Add(1, 10, 10)
	g.Add(2, 300, 300)
	if ids := g.Nearby(0, 0, 30); len(ids) != 1 || ids[0] != 1 {
		t.Errorf("expected [1], got %v", ids)
	}
	g.Move(2, 20, 20)
	if ids := g.Nearby(0, 0, 30); len(ids) != 2 {
		t.Errorf("expected 2 after move, got %v", ids)
	}
	g.Remove(1)
	g.Remove(1)
	if g.Len() != 1 {
		t.Errorf("expected 1 indexed unit, got %d", g.Len())
	}
}

func TestFalloff(t *testing.T) {
	tests := []struct {
		d, r, want float64
	}{
		{0, 10, 1},
		{10, 10, 0.4},
		{5, 10, 0.7},
		{3, 0, 1},
	}
	for _, tt := range tests {
		if got := Falloff(tt.d, tt.r); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Falloff(%v, %v): expected %v, got %v", tt.d, tt.r, tt.want, got)
		}
	}
}

func TestAddDiscardFlush(t *testing.T) {
	ws := newTestState(t)
	u := ws.NewUnit(ws.Type("dagger"), 1, 100, 100)
	ws.AddUnit(u)
	ws.AddUnit(u)
	if ws.UnitCount() != 1 || ws.Teams().Total(1) != 1 {
		t.Fatalf("expected one unit counted once, got %d/%d", ws.UnitCount(), ws.Teams().Total(1))
	}

	ws.Sim().Kill(u)
	if !u.Removed() {
		t.Fatal("expected unit removed")
	}
	if ws.Unit(u.ID) == nil {
		t.Error("expected unit kept until cleanup")
	}
	if len(ws.Units()) != 0 {
		t.Error("expected removed unit excluded from active units")
	}
	ws.Flush()
	if ws.Unit(u.ID) != nil || ws.UnitCount() != 0 {
		t.Error("expected unit gone after flush")
	}
	if ws.Teams().Total(1) != 0 {
		t.Errorf("expected team count 0, got %d", ws.Teams().Total(1))
	}
}

func TestClosestEnemyAndCore(t *testing.T) {
	ws := newTestState(t)
	me := ws.NewUnit(ws.Type("dagger"), 1, 100, 100)
	near := ws.NewUnit(ws.Type("dagger"), 2, 130, 100)
	tie := ws.NewUnit(ws.Type("dagger"), 2, 70, 100)
	ally := ws.NewUnit(ws.Type("dagger"), 1, 101, 100)
	for _, u := range []*unit.Unit{me, near, tie, ally} {
		ws.AddUnit(u)
	}

	if got := ws.ClosestEnemy(1, me.X, me.Y, 60); got != near {
		t.Errorf("expected unit %d to win the tie, got %+v", near.ID, got)
	}
	if got := ws.ClosestEnemy(1, me.X, me.Y, 10); got != nil {
		t.Errorf("expected nothing within 10, got %+v", got)
	}
	core, ok := ws.EnemyCore(1, 0, 0)
	if !ok || core != ws.Cores()[1].Pos {
		t.Errorf("expected team 2 core, got %v %v", core, ok)
	}

	var seen []int32
	ws.EachAllyWithin(1, 100, 100, 5, func(u *unit.Unit) { seen = append(seen, u.ID) })
	if len(seen) != 2 {
		t.Errorf("expected 2 allies, got %v", seen)
	}
}

func TestItemAmmoDrawsFromCore(t *testing.T) {
	ws := newTestState(t)
	core := ws.CoreOf(1)
	ammo := ws.NewItemAmmo(ws.Items().Get("copper"), 4, 50)
	u := ws.NewUnit(ws.Type("dagger"), 1, core.Pos.X+10, core.Pos.Y)
	ws.AddUnit(u)
	u.Ammo = 0

	for i := 0; i < 3; i++ {
		ammo.Resupply(ws.Sim(), u)
	}
	if u.Ammo != 8 {
		t.Errorf("expected 8 ammo from 2 copper, got %v", u.Ammo)
	}
	if core.Items["copper"] != 0 {
		t.Errorf("expected core drained, got %d", core.Items["copper"])
	}

	far := ws.NewUnit(ws.Type("dagger"), 1, 250, 250)
	ws.AddUnit(far)
	far.Ammo = 0
	core.Items["copper"] = 5
	ammo.Resupply(ws.Sim(), far)
	if far.Ammo != 0 {
		t.Errorf("expected no supply out of range, got %v", far.Ammo)
	}
}

func TestAreaDamage(t *testing.T) {
	ws := newTestState(t)
	area := ws.Sim().Area
	centre := ws.NewUnit(ws.Type("dagger"), 2, 100, 100)
	edge := ws.NewUnit(ws.Type("dagger"), 2, 110, 100)
	friend := ws.NewUnit(ws.Type("dagger"), 1, 100, 100)
	air := ws.NewUnit(ws.Type("flare"), 2, 100, 100)
	for _, u := range []*unit.Unit{centre, edge, friend, air} {
		ws.AddUnit(u)
	}

	area.Damage(1, 100, 100, 10, 50, false, false, true)
	if centre.Health != 50 {
		t.Errorf("expected full damage at centre, got health %v", centre.Health)
	}
	if math.Abs(edge.Health-80) > 1e-9 {
		t.Errorf("expected 40%% damage at edge, got health %v", edge.Health)
	}
	if friend.Health != 100 || air.Health != 70 {
		t.Errorf("expected friend and air untouched, got %v and %v", friend.Health, air.Health)
	}

	area.Damage(1, 100, 100, 10, 60, true, false, true)
	if !centre.Dead || !centre.Removed() {
		t.Error("expected chained kill to remove the unit")
	}
}

func TestCargoExplosionBurns(t *testing.T) {
	ws := newTestState(t)
	u := ws.NewUnit(ws.Type("dagger"), 2, 100, 100)
	other := ws.NewUnit(ws.Type("dagger"), 1, 104, 100)
	ws.AddUnit(u)
	ws.AddUnit(other)

	ws.Sim().Area.DynamicExplosion(100, 100, 1, 2, 0, 8, true)
	if !other.HasStatus(ws.Env().Status("burning")) {
		t.Error("expected burning applied in radius")
	}
	if other.Health >= 100 {
		t.Errorf("expected blast damage, got health %v", other.Health)
	}
	if ws.Effects().Count("dynamic-explosion") != 1 {
		t.Error("expected explosion effect counted")
	}
}

func TestFactoryLifecycle(t *testing.T) {
	ws := newTestState(t)
	blocks := factoryTable(t)
	if err := ws.PlaceFactories(testLayout(), blocks); err != nil {
		t.Fatalf("PlaceFactories: %v", err)
	}
	f := ws.Factories()[0]
	if f.ID != 3 || f.Type != ws.Type("dagger") {
		t.Fatalf("expected factory 3 building daggers, got %d %v", f.ID, f.Type)
	}

	if f.Advance(50, 1) {
		t.Error("expected build incomplete")
	}
	if !f.Advance(25, 2) {
		t.Error("expected build complete with speed multiplier")
	}
	ws.ApplyFactorySpawn(f.ID, 2)
	if f.BuildTime != 0 || f.Spawned != 2 {
		t.Errorf("expected timer reset and spawned 2, got %v %d", f.BuildTime, f.Spawned)
	}
	if f.Advance(1000, 1) {
		t.Error("expected no production at the spawn limit")
	}

	u := ws.NewUnit(f.Type, f.Team, f.Pos.X, f.Pos.Y)
	u.FactoryID = f.ID
	ws.AddUnit(u)
	ws.Sim().Kill(u)
	if f.Spawned != 1 {
		t.Errorf("expected slot released, got %d", f.Spawned)
	}
	f.UnitRemoved()
	f.UnitRemoved()
	if f.Spawned != 0 {
		t.Errorf("expected spawned floored at 0, got %d", f.Spawned)
	}
}

func factoryTable(t *testing.T) *data.FactoryTable {
	t.Helper()
	blocks, err := data.ParseFactoryTable([]byte(`
factories:
  - name: ground-factory
    unit_type: dagger
    produce_time: 100
    max_spawn: 2
    launch_velocity: 2
`))
	if err != nil {
		t.Fatalf("ParseFactoryTable: %v", err)
	}
	return blocks
}

func TestApplySpawnAndRestore(t *testing.T) {
	ws := newTestState(t)
	info := SpawnInfo{ID: 40, Type: "dagger", Team: 1, X: 50, Y: 60, VelY: 2, Player: "bob"}
	u, err := ws.ApplySpawn(info)
	if err != nil {
		t.Fatalf("ApplySpawn: %v", err)
	}
	again, _ := ws.ApplySpawn(info)
	if again != u || ws.UnitCount() != 1 {
		t.Error("expected repeated spawn ignored")
	}
	if !u.IsPlayer() || u.IsLocal() {
		t.Error("expected remote player controller")
	}
	if next := ws.NewUnit(ws.Type("dagger"), 1, 0, 0); next.ID != 41 {
		t.Errorf("expected allocator past adopted ID, got %d", next.ID)
	}
	if _, err := ws.ApplySpawn(SpawnInfo{ID: 50, Type: "nope"}); err == nil {
		t.Error("expected unknown type error")
	}

	if err := ws.PlaceFactories(testLayout(), factoryTable(t)); err != nil {
		t.Fatal(err)
	}
	snap := u.Snapshot()
	snap.ID = 77
	snap.FactoryID = 3
	r, err := ws.RestoreUnit(snap)
	if err != nil {
		t.Fatalf("RestoreUnit: %v", err)
	}
	if r.IsPlayer() {
		t.Error("expected restored unit to get a fresh AI controller")
	}
	if ws.Factory(3).Spawned != 1 {
		t.Errorf("expected factory slot restored, got %d", ws.Factory(3).Spawned)
	}
}

func TestNewPlayerUnit(t *testing.T) {
	ws := newTestState(t)
	u, p, err := ws.NewPlayerUnit("dagger", 1, "alice", true)
	if err != nil {
		t.Fatalf("NewPlayerUnit: %v", err)
	}
	if !u.SpawnedByCore || u.Player() != p || u.Pos() != ws.CoreOf(1).Pos {
		t.Error("expected core unit bound to the player at the core")
	}
	if _, _, err := ws.NewPlayerUnit("dagger", 9, "x", false); err == nil {
		t.Error("expected error for a team without a core")
	}
}
