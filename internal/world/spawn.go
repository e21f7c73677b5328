package world

import (
	"fmt"

	"github.com/l1jgo/unitsim/internal/control"
	"github.com/l1jgo/unitsim/internal/unit"
	"go.uber.org/zap"
)

// SpawnInfo carries everything a node needs to materialize a unit created
// elsewhere.
type SpawnInfo struct {
	ID            int32
	Type          string
	Team          unit.Team
	X, Y          float64
	Rotation      float64
	VelX, VelY    float64
	FactoryID     int32
	SpawnedByCore bool
	Player        string
	Local         bool // not sent; set by the receiving node
}

// Info describes u for a spawn broadcast.
func Info(u *unit.Unit) SpawnInfo {
	info := SpawnInfo{
		ID:            u.ID,
		Type:          u.Type().Name,
		Team:          u.Team,
		X:             u.X,
		Y:             u.Y,
		Rotation:      u.Rotation,
		VelX:          u.Vel.X,
		VelY:          u.Vel.Y,
		FactoryID:     u.FactoryID,
		SpawnedByCore: u.SpawnedByCore,
	}
	if p := u.Player(); p != nil {
		info.Player = p.PlayerName()
	}
	return info
}

// NewPlayerUnit builds a unit at team's core for a player. The unit is not
// added; the caller announces it first. Core units are exempt from the cap
// and are despawned once their player leaves.
func (ws *State) NewPlayerUnit(typeName string, team unit.Team, player string, local bool) (*unit.Unit, *control.Player, error) {
	t := ws.types[typeName]
	if t == nil {
		return nil, nil, fmt.Errorf("spawn player unit: unknown type %q", typeName)
	}
	core := ws.CoreOf(team)
	if core == nil {
		return nil, nil, fmt.Errorf("spawn player unit: team %d has no core", team)
	}
	u := ws.NewUnit(t, team, core.Pos.X, core.Pos.Y)
	u.SpawnedByCore = true
	p := control.NewPlayer(ws.ctl, player, local)
	u.Bind(p)
	ws.log.Info("player unit created",
		zap.String("player", player), zap.Int32("unit", u.ID), zap.String("type", typeName))
	return u, p, nil
}

// ApplySpawn materializes a unit announced by the authority. Known IDs are
// ignored so a repeated broadcast is harmless.
func (ws *State) ApplySpawn(info SpawnInfo) (*unit.Unit, error) {
	if u := ws.Unit(info.ID); u != nil {
		return u, nil
	}
	t := ws.types[info.Type]
	if t == nil {
		return nil, fmt.Errorf("apply spawn: unknown type %q", info.Type)
	}
	u := t.Create(info.Team)
	u.ID = info.ID
	u.X, u.Y = info.X, info.Y
	u.Rotation = info.Rotation
	u.Vel = unit.Vec2{X: info.VelX, Y: info.VelY}
	u.FactoryID = info.FactoryID
	u.SpawnedByCore = info.SpawnedByCore
	if info.Player != "" {
		u.Bind(control.NewPlayer(ws.ctl, info.Player, info.Local))
	}
	ws.AddUnit(u)
	return u, nil
}

// RestoreUnit re-adds a persisted unit. Its producing factory regains the
// slot the unit occupies.
func (ws *State) RestoreUnit(s unit.Snapshot) (*unit.Unit, error) {
	t := ws.types[s.Type]
	if t == nil {
		return nil, fmt.Errorf("restore unit %d: unknown type %q", s.ID, s.Type)
	}
	u := unit.FromSnapshot(s, t, ws.items.Get)
	if u.FactoryID != 0 {
		if f := ws.Factory(u.FactoryID); f != nil {
			f.Spawned++
		} else {
			u.FactoryID = 0
		}
	}
	ws.AddUnit(u)
	return u, nil
}
