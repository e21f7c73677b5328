// Package ability implements the per-unit passive abilities a unit type can
// carry. Type templates hold one instance of each; units get clones.
package ability

import (
	"fmt"

	"github.com/l1jgo/unitsim/internal/data"
	"github.com/l1jgo/unitsim/internal/unit"
)

// Allies enumerates friendly units around a point. Implemented by world.State.
type Allies interface {
	EachAllyWithin(team unit.Team, x, y, r float64, fn func(*unit.Unit))
}

// Regen heals the carrier by Amount per time unit.
type Regen struct {
	Amount float64
}

func (a *Regen) Update(s *unit.Sim, u *unit.Unit, delta float64) {
	if u.Health < u.MaxHealth {
		s.Heal(u, a.Amount*delta)
	}
}

func (a *Regen) Clone() unit.Ability { c := *a; return &c }

// StatusField periodically applies a status effect to every ally in range,
// the carrier included.
type StatusField struct {
	Effect   *data.StatusEffect
	Duration float64
	Reload   float64
	Range    float64
	Allies   Allies

	timer float64
}

func (a *StatusField) Update(s *unit.Sim, u *unit.Unit, delta float64) {
	a.timer += delta
	if a.timer < a.Reload {
		return
	}
	a.timer = 0
	a.Allies.EachAllyWithin(u.Team, u.X, u.Y, a.Range, func(o *unit.Unit) {
		o.ApplyStatus(a.Effect, a.Duration)
	})
	s.Effects.Effect("status-field", u.X, u.Y, 0)
}

func (a *StatusField) Clone() unit.Ability {
	c := *a
	c.timer = 0
	return &c
}

// RepairField periodically heals allies in range by a flat amount.
type RepairField struct {
	Amount float64
	Reload float64
	Range  float64
	Allies Allies

	timer float64
}

func (a *RepairField) Update(s *unit.Sim, u *unit.Unit, delta float64) {
	a.timer += delta
	if a.timer < a.Reload {
		return
	}
	a.timer = 0
	a.Allies.EachAllyWithin(u.Team, u.X, u.Y, a.Range, func(o *unit.Unit) {
		if o.Health < o.MaxHealth {
			s.Heal(o, a.Amount)
		}
	})
}

func (a *RepairField) Clone() unit.Ability {
	c := *a
	c.timer = 0
	return &c
}

// FromTemplate builds an ability template from its data table entry.
func FromTemplate(t data.AbilityTemplate, env *data.EnvTable, allies Allies) (unit.Ability, error) {
	switch t.Kind {
	case "regen":
		return &Regen{Amount: t.Amount}, nil
	case "status_field":
		effect := env.Status(t.Status)
		if effect == nil {
			return nil, fmt.Errorf("status_field: unknown status %q", t.Status)
		}
		return &StatusField{Effect: effect, Duration: t.Duration, Reload: t.Reload, Range: t.Range, Allies: allies}, nil
	case "repair_field":
		return &RepairField{Amount: t.Amount, Reload: t.Reload, Range: t.Range, Allies: allies}, nil
	default:
		return nil, fmt.Errorf("unknown ability kind %q", t.Kind)
	}
}
