package system

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/l1jgo/unitsim/internal/control"
	"github.com/l1jgo/unitsim/internal/core/event"
	coresys "github.com/l1jgo/unitsim/internal/core/system"
	"github.com/l1jgo/unitsim/internal/data"
	"github.com/l1jgo/unitsim/internal/net/packet"
	"github.com/l1jgo/unitsim/internal/netsync"
	"github.com/l1jgo/unitsim/internal/persist"
	"github.com/l1jgo/unitsim/internal/unit"
	"github.com/l1jgo/unitsim/internal/world"
	"go.uber.org/zap"
)

const tick = time.Second / 60

const factoriesYAML = `
factories:
  - name: ground-factory
    unit_type: dagger
    produce_time: 10
    max_spawn: 1
    launch_velocity: 0.5
`

type node struct {
	ws     *world.State
	net    *netsync.Node
	runner *coresys.Runner
}

func newNode(t *testing.T, role packet.Role) *node {
	t.Helper()
	layout := &data.MapLayout{
		Width: 50, Height: 50, TileSize: 8, DefaultFloor: "stone",
		Cores:     []data.CoreSpawn{{Team: 1, X: 2, Y: 2}},
		Factories: []data.FactorySpawn{{Block: "ground-factory", Team: 1, X: 10, Y: 10}},
	}
	ws, err := world.NewState(world.Options{
		Layout:   layout,
		Env:      data.NewEnvTable([]data.Floor{{Name: "stone"}}, nil),
		Items:    data.NewItemTable(nil),
		Rules:    unit.Rules{UnitCap: 10, WaveTeam: 2},
		Bus:      event.NewBus(),
		Headless: true,
		Seed:     7,
		Log:      zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	ctl, _ := control.Factory("ground", ws.Control())
	ws.RegisterType(&unit.Type{Name: "dagger", Health: 100, HitSize: 8, Drag: 0.3, Range: 60, ControllerFactory: ctl})

	blocks, err := data.ParseFactoryTable([]byte(factoriesYAML))
	if err != nil {
		t.Fatalf("ParseFactoryTable: %v", err)
	}
	if err := ws.PlaceFactories(layout, blocks); err != nil {
		t.Fatalf("PlaceFactories: %v", err)
	}

	n := &node{ws: ws, net: netsync.NewNode(role, "node", ws, zap.NewNop())}
	ws.Sim().Net = n.net

	n.runner = coresys.NewRunner()
	n.runner.Register(NewCleanupSystem(ws))
	n.runner.Register(NewOutputSystem(n.net))
	n.runner.Register(NewPhysicsSystem(ws))
	n.runner.Register(NewProductionSystem(ws, n.net, 1, zap.NewNop()))
	n.runner.Register(NewUnitUpdateSystem(ws))
	n.runner.Register(NewEventDispatchSystem(ws.Sim().Bus))
	n.runner.Register(NewInputSystem(nil, n.net, 0, zap.NewNop()))
	return n
}

func newPair(t *testing.T) (auth, rep *node) {
	t.Helper()
	auth = newNode(t, packet.RoleAuthority)
	rep = newNode(t, packet.RoleReplica)
	a, b := netsync.Pipe(256)
	auth.net.AddPeer(a)
	rep.net.AddPeer(b)
	return auth, rep
}

func run(ticks int, nodes ...*node) {
	for i := 0; i < ticks; i++ {
		for _, n := range nodes {
			n.runner.Tick(tick)
		}
	}
}

func TestProductionReplicates(t *testing.T) {
	auth, rep := newPair(t)
	run(40, auth, rep)

	units := auth.ws.Units()
	if len(units) != 1 {
		t.Fatalf("expected 1 produced unit with max_spawn 1, got %d", len(units))
	}
	u := units[0]
	f := auth.ws.Factories()[0]
	if u.FactoryID != f.ID {
		t.Errorf("expected factory id %d, got %d", f.ID, u.FactoryID)
	}
	if f.Spawned != 1 || f.BuildTime != 0 {
		t.Errorf("expected spawned 1 and reset timer, got %d %.2f", f.Spawned, f.BuildTime)
	}

	r := rep.ws.Unit(u.ID)
	if r == nil || !r.Active() {
		t.Fatal("expected produced unit on replica")
	}
	if r.FactoryID != f.ID {
		t.Errorf("expected replica factory id %d, got %d", f.ID, r.FactoryID)
	}
	if rf := rep.ws.Factories()[0]; rf.Spawned != 1 {
		t.Errorf("expected replica spawned 1, got %d", rf.Spawned)
	}
}

func TestProductionResumesAfterDeath(t *testing.T) {
	auth, rep := newPair(t)
	run(20, auth, rep)

	u := auth.ws.Units()[0]
	auth.ws.Sim().Kill(u)
	run(3, auth, rep)

	if r := rep.ws.Unit(u.ID); r != nil && r.Active() {
		t.Error("expected unit removed on replica")
	}
	for name, n := range map[string]*node{"authority": auth, "replica": rep} {
		if f := n.ws.Factories()[0]; f.Spawned != 0 {
			t.Errorf("%s: expected slot released, got spawned %d", name, f.Spawned)
		}
	}

	run(15, auth, rep)
	if n := len(auth.ws.Units()); n != 1 {
		t.Errorf("expected a replacement unit, got %d", n)
	}
}

func TestReplicaDoesNotProduce(t *testing.T) {
	rep := newNode(t, packet.RoleReplica)
	run(30, rep)
	if n := rep.ws.UnitCount(); n != 0 {
		t.Errorf("expected no units on a lone replica, got %d", n)
	}
	if f := rep.ws.Factories()[0]; f.Progress() < 1 {
		t.Errorf("expected replica timer to keep running, got %.2f", f.Progress())
	}
}

func TestCleanupFlushesRemoved(t *testing.T) {
	auth := newNode(t, packet.RoleAuthority)
	u := auth.ws.NewUnit(auth.ws.Type("dagger"), 1, 100, 100)
	auth.net.SpawnUnit(u)
	auth.ws.Sim().Kill(u)
	if auth.ws.UnitCount() != 1 {
		t.Fatalf("expected unit stored until cleanup, got %d", auth.ws.UnitCount())
	}
	run(1, auth)
	if auth.ws.UnitCount() != 0 {
		t.Errorf("expected unit flushed, got %d", auth.ws.UnitCount())
	}
}

type fakeSnapshots struct {
	saves [][]unit.Snapshot
}

func (f *fakeSnapshots) SaveAll(_ context.Context, snaps []unit.Snapshot) error {
	f.saves = append(f.saves, snaps)
	return nil
}

type fakeDestructions struct {
	fail    bool
	entries []persist.DestructionEntry
}

func (f *fakeDestructions) Append(_ context.Context, entries []persist.DestructionEntry) error {
	if f.fail {
		return errors.New("db down")
	}
	f.entries = append(f.entries, entries...)
	return nil
}

func TestPersistence(t *testing.T) {
	auth := newNode(t, packet.RoleAuthority)
	snaps := &fakeSnapshots{}
	log := &fakeDestructions{}
	auth.runner.Register(NewPersistenceSystem(auth.ws, snaps, log, zap.NewNop(), 5))

	keep := auth.ws.NewUnit(auth.ws.Type("dagger"), 1, 300, 300)
	auth.net.SpawnUnit(keep)
	doomed := auth.ws.NewUnit(auth.ws.Type("dagger"), 1, 320, 300)
	auth.net.SpawnUnit(doomed)
	auth.ws.Sim().Kill(doomed)

	run(2, auth)
	if len(log.entries) != 1 || log.entries[0].UnitID != doomed.ID {
		t.Fatalf("expected one destruction entry for %d, got %+v", doomed.ID, log.entries)
	}
	if log.entries[0].Type != "dagger" {
		t.Errorf("expected type dagger, got %s", log.entries[0].Type)
	}

	run(3, auth)
	if len(snaps.saves) != 1 {
		t.Fatalf("expected 1 snapshot after 5 ticks, got %d", len(snaps.saves))
	}
	saved := snaps.saves[0]
	if len(saved) != 1 || saved[0].ID != keep.ID {
		t.Errorf("expected only the surviving unit saved, got %+v", saved)
	}
}

func TestPersistenceRetriesLog(t *testing.T) {
	auth := newNode(t, packet.RoleAuthority)
	log := &fakeDestructions{fail: true}
	auth.runner.Register(NewPersistenceSystem(auth.ws, nil, log, zap.NewNop(), 0))

	u := auth.ws.NewUnit(auth.ws.Type("dagger"), 1, 300, 300)
	auth.net.SpawnUnit(u)
	auth.ws.Sim().Kill(u)
	run(2, auth)

	log.fail = false
	run(1, auth)
	if len(log.entries) != 1 {
		t.Errorf("expected entry written after retry, got %d", len(log.entries))
	}
}

func TestPersistenceBoundsBacklog(t *testing.T) {
	auth := newNode(t, packet.RoleAuthority)
	log := &fakeDestructions{fail: true}
	ps := NewPersistenceSystem(auth.ws, nil, log, zap.NewNop(), 0)
	ps.maxPending = 2
	auth.runner.Register(ps)

	var ids []int32
	for i := 0; i < 3; i++ {
		u := auth.ws.NewUnit(auth.ws.Type("dagger"), 1, 300, 300+float64(i)*20)
		auth.net.SpawnUnit(u)
		auth.ws.Sim().Kill(u)
		ids = append(ids, u.ID)
		run(1, auth)
	}
	run(1, auth)
	if len(ps.pending) != 2 {
		t.Fatalf("expected backlog capped at 2, got %d", len(ps.pending))
	}

	log.fail = false
	run(1, auth)
	if len(log.entries) != 2 {
		t.Fatalf("expected 2 entries written, got %d", len(log.entries))
	}
	if log.entries[0].UnitID != ids[1] || log.entries[1].UnitID != ids[2] {
		t.Errorf("expected oldest entry dropped, got %d and %d", log.entries[0].UnitID, log.entries[1].UnitID)
	}
	if ps.dropped != 0 {
		t.Errorf("expected drop count reset after flush, got %d", ps.dropped)
	}
}

type fakeLua struct {
	chunks []string
}

func (f *fakeLua) LoadString(src string) error {
	f.chunks = append(f.chunks, src)
	return nil
}

func TestConsoleCommands(t *testing.T) {
	auth := newNode(t, packet.RoleAuthority)
	var out bytes.Buffer
	lua := &fakeLua{}
	con := NewConsoleSystem(auth.ws, auth.net, lua, nil, &out, zap.NewNop())
	auth.runner.Register(con)

	if con.Exec("hello there") {
		t.Error("expected plain text not treated as a command")
	}
	con.Exec(".join alice dagger 1")
	players := auth.net.Players()
	if len(players) != 1 || players[0] != "alice" {
		t.Fatalf("expected alice joined, got %v", players)
	}
	u := auth.ws.Units()[0]
	if !u.IsPlayer() || !u.IsLocal() {
		t.Fatal("expected a local player unit")
	}

	con.Exec(".stats")
	if !strings.Contains(out.String(), "0 ai, 1 player") {
		t.Errorf("expected unit breakdown in stats, got %q", out.String())
	}
	con.Exec(".lua x = 1 + 2")
	if len(lua.chunks) != 1 || lua.chunks[0] != "x = 1 + 2" {
		t.Errorf("expected lua chunk passed through, got %q", lua.chunks)
	}
	con.Exec(".recent 5")
	if !strings.Contains(out.String(), "unavailable") {
		t.Errorf("expected recent to report no database, got %q", out.String())
	}

	con.Exec(".boost alice on")
	run(1, auth)
	if !u.Boosting {
		t.Error("expected boost input applied")
	}

	if !con.Submit(".leave alice") {
		t.Fatal("expected line queued")
	}
	run(2, auth)
	if len(auth.net.Players()) != 0 {
		t.Errorf("expected alice gone, got %v", auth.net.Players())
	}
	if !u.Removed() {
		t.Error("expected core unit despawned after leave")
	}
}

type fakeHistory struct {
	entries []persist.DestructionEntry
}

func (f *fakeHistory) Recent(_ context.Context, limit int) ([]persist.DestructionEntry, error) {
	if limit < len(f.entries) {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

func TestConsoleRecent(t *testing.T) {
	auth := newNode(t, packet.RoleAuthority)
	var out bytes.Buffer
	history := &fakeHistory{entries: []persist.DestructionEntry{
		{UnitID: 7, Type: "flare", Tick: 40},
		{UnitID: 3, Type: "dagger", Tick: 12},
	}}
	con := NewConsoleSystem(auth.ws, auth.net, nil, history, &out, zap.NewNop())

	con.Exec(".recent 1")
	got := out.String()
	if !strings.Contains(got, "unit 7 flare") || strings.Contains(got, "unit 3") {
		t.Errorf("expected only the newest entry, got %q", got)
	}
}
