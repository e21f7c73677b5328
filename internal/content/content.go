// Package content turns the data tables into runnable unit types: it binds
// controllers, abilities, ammunition and Lua behaviour to each template.
package content

import (
	"fmt"

	"github.com/l1jgo/unitsim/internal/ability"
	"github.com/l1jgo/unitsim/internal/control"
	"github.com/l1jgo/unitsim/internal/data"
	"github.com/l1jgo/unitsim/internal/scripting"
	"github.com/l1jgo/unitsim/internal/unit"
	"github.com/l1jgo/unitsim/internal/world"
	"go.uber.org/zap"
)

// Build creates every unit type in the table and registers it with ws.
// lua may be nil when no scripts are loaded; types naming a script then fail.
func Build(units *data.UnitTable, ws *world.State, lua *scripting.Engine, log *zap.Logger) error {
	for _, tmpl := range units.All() {
		t, err := buildType(tmpl, ws, lua)
		if err != nil {
			return fmt.Errorf("unit type %s: %w", tmpl.Name, err)
		}
		ws.RegisterType(t)
	}
	log.Info("unit types built", zap.Int("count", units.Count()))
	return nil
}

func buildType(tmpl *data.UnitTemplate, ws *world.State, lua *scripting.Engine) (*unit.Type, error) {
	t := &unit.Type{
		Name:                  tmpl.Name,
		Health:                tmpl.Health,
		Armor:                 tmpl.Armor,
		HitSize:               tmpl.HitSize,
		Drag:                  tmpl.Drag,
		Speed:                 tmpl.Speed,
		Accel:                 tmpl.Accel,
		RotateSpeed:           tmpl.RotateSpeed,
		Range:                 tmpl.Range,
		FallSpeed:             tmpl.FallSpeed,
		RiseSpeed:             tmpl.RiseSpeed,
		Flying:                tmpl.Flying,
		CanBoost:              tmpl.CanBoost,
		Hovering:              tmpl.Hovering,
		AmmoCapacity:          tmpl.AmmoCapacity,
		ItemCapacity:          tmpl.ItemCapacity,
		Immunities:            make(map[string]bool, len(tmpl.Immunities)),
		CrashDamageMultiplier: tmpl.CrashDamageMultiplier,
		LandShake:             tmpl.LandShake,
		EngineOffset:          tmpl.EngineOffset,
		EngineSize:            tmpl.EngineSize,
		WreckRegions:          tmpl.WreckRegions,
		FallEffect:            tmpl.FallEffect,
		FallThrusterEffect:    tmpl.FallThrusterEffect,
		DeathSound:            tmpl.DeathSound,
	}
	for _, name := range tmpl.Immunities {
		if ws.Env().Status(name) == nil {
			return nil, fmt.Errorf("unknown immunity %q", name)
		}
		t.Immunities[name] = true
	}
	for _, w := range tmpl.Weapons {
		t.Weapons = append(t.Weapons, &unit.Weapon{Name: w.Name, Reload: w.Reload})
	}
	for _, at := range tmpl.Abilities {
		a, err := ability.FromTemplate(at, ws.Env(), ws)
		if err != nil {
			return nil, err
		}
		t.Abilities = append(t.Abilities, a)
	}

	ctl, err := control.Factory(tmpl.Controller, ws.Control())
	if err != nil {
		return nil, err
	}
	t.ControllerFactory = ctl

	var script *scripting.Behavior
	if tmpl.Script != "" {
		if lua == nil {
			return nil, fmt.Errorf("script %q set but no Lua engine loaded", tmpl.Script)
		}
		script = lua.Behavior(tmpl.Script)
		if script.Empty() {
			return nil, fmt.Errorf("script %q defines no hooks", tmpl.Script)
		}
		t.Behavior = script
	}

	switch tmpl.Ammo.Kind {
	case "item":
		item := ws.Items().Get(tmpl.Ammo.Item)
		if item == nil {
			return nil, fmt.Errorf("unknown ammo item %q", tmpl.Ammo.Item)
		}
		t.Ammo = ws.NewItemAmmo(item, tmpl.Ammo.Multiplier, tmpl.Ammo.Range)
	case "script":
		if script == nil || !script.HasResupply() {
			return nil, fmt.Errorf("script ammo needs a %s_resupply hook", tmpl.Script)
		}
		t.Ammo = script
	case "none":
	default:
		return nil, fmt.Errorf("unknown ammo kind %q", tmpl.Ammo.Kind)
	}
	return t, nil
}
