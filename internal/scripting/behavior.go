package scripting

import (
	"github.com/l1jgo/unitsim/internal/unit"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Behavior runs a unit type's Lua hooks. For a script prefix "crawler" the
// hooks are crawler_update, crawler_landed and crawler_resupply; any of them
// may be absent.
//
// Each hook receives a table of sensor readings (see unit.Sensor) plus
// "delta", and may return a table of adjustments:
//
//	heal, damage   health change
//	ammo           ammunition added
//	flag           new flag value
//	boost          boolean, requested boost
//	vel_x, vel_y   velocity added
//	effect         effect name emitted at the unit
//
// Implements unit.Behavior and unit.AmmoType.
type Behavior struct {
	eng      *Engine
	prefix   string
	update   bool
	landed   bool
	resupply bool
}

func (e *Engine) Behavior(prefix string) *Behavior {
	return &Behavior{
		eng:      e,
		prefix:   prefix,
		update:   e.HasFunction(prefix + "_update"),
		landed:   e.HasFunction(prefix + "_landed"),
		resupply: e.HasFunction(prefix + "_resupply"),
	}
}

// HasResupply reports whether the script supplies ammunition itself.
func (b *Behavior) HasResupply() bool { return b.resupply }

// Empty reports whether the script defines no hooks at all.
func (b *Behavior) Empty() bool { return !b.update && !b.landed && !b.resupply }

func (b *Behavior) Update(s *unit.Sim, u *unit.Unit, delta float64) {
	if b.update {
		b.run(s, u, "_update", delta)
	}
}

func (b *Behavior) Landed(s *unit.Sim, u *unit.Unit) {
	if b.landed {
		b.run(s, u, "_landed", 0)
	}
}

func (b *Behavior) Resupply(s *unit.Sim, u *unit.Unit) {
	if b.resupply {
		b.run(s, u, "_resupply", 0)
	}
}

func (b *Behavior) run(s *unit.Sim, u *unit.Unit, hook string, delta float64) {
	name := b.prefix + hook
	rt, err := b.eng.call(name, b.context(u, delta))
	if err != nil {
		b.eng.log.Error("unit script failed", zap.String("hook", name), zap.Int32("unit", u.ID), zap.Error(err))
		return
	}
	if rt != nil {
		apply(s, u, rt)
	}
}

func (b *Behavior) context(u *unit.Unit, delta float64) *lua.LTable {
	t := b.eng.vm.NewTable()
	for _, sensor := range unit.NumericSensors() {
		t.RawSetString(sensor.String(), lua.LNumber(u.Sense(sensor)))
	}
	t.RawSetString("id", lua.LNumber(u.ID))
	t.RawSetString("type", lua.LString(u.Type().Name))
	t.RawSetString("delta", lua.LNumber(delta))
	t.RawSetString("boosting", lua.LBool(u.Boosting))
	if !u.Stack.Empty() {
		t.RawSetString("item", lua.LString(u.Stack.Item.Name))
	}
	return t
}

func apply(s *unit.Sim, u *unit.Unit, rt *lua.LTable) {
	if v, ok := lNum(rt, "heal"); ok && v > 0 {
		s.Heal(u, v)
	}
	if v, ok := lNum(rt, "damage"); ok && v > 0 {
		s.DamagePierce(u, v)
	}
	if v, ok := lNum(rt, "ammo"); ok && v > 0 {
		u.AddAmmo(v)
	}
	if v, ok := lNum(rt, "flag"); ok {
		u.Flag = v
	}
	if v, ok := rt.RawGetString("boost").(lua.LBool); ok {
		u.Boosting = bool(v)
	}
	vx, okx := lNum(rt, "vel_x")
	vy, oky := lNum(rt, "vel_y")
	if okx || oky {
		u.Vel = u.Vel.Add(unit.Vec2{X: vx, Y: vy})
	}
	if fx := lStr(rt, "effect"); fx != "" {
		s.Effects.Effect(fx, u.X, u.Y, u.Rotation)
	}
}
