package unit

import (
	"fmt"
	"math"

	"github.com/l1jgo/unitsim/internal/core/event"
	"go.uber.org/zap"
)

const (
	minArmorDamage        = 0.1
	selfDestructThreshold = 7
)

// Kill asks for the unit's death. Already-dead units are ignored. The
// decision always goes through the authority so every node reaches the same
// outcome from the same trigger; on a replica nothing changes locally.
// A unit asks at most once.
func (s *Sim) Kill(u *Unit) {
	if u.Dead || u.removed || u.killRequested {
		return
	}
	u.killRequested = true
	s.Net.RequestKill(u.ID)
}

// MarkDead applies a death decision. Ground units are destroyed at once;
// flying units start falling and are destroyed when they reach the ground.
func (s *Sim) MarkDead(u *Unit) {
	if u.Dead || u.removed {
		return
	}
	u.Health = 0
	u.Dead = true

	if !u.typ.Flying {
		s.Destroy(u)
	}
}

// Destroy runs the destruction cascade: cargo explosion, effects,
// notifications, crash damage, wreckage, removal. Runs once per unit.
func (s *Sim) Destroy(u *Unit) {
	if u.destroyed {
		return
	}
	u.destroyed = true
	t := u.typ

	explosiveness := 2.0
	flammability := 0.0
	if !u.Stack.Empty() {
		explosiveness += u.Stack.Item.Explosiveness * float64(u.Stack.Amount) / 2
		flammability = u.Stack.Item.Flammability * float64(u.Stack.Amount) / 2
	}
	s.Area.DynamicExplosion(u.X, u.Y, flammability, explosiveness, 0, u.Bounds()/2, s.Rules.DamageExplosions)

	shake := u.HitSize / 3
	s.Effects.Scorch(u.X, u.Y, int(u.HitSize/5))
	s.Effects.Effect("explosion", u.X, u.Y, 0)
	s.Effects.Shake(shake, shake, u.X, u.Y)
	s.Effects.Sound(t.DeathSound, u.X, u.Y)

	if s.Bus != nil {
		event.Emit(s.Bus, event.UnitDestroyed{
			UnitID:        u.ID,
			Team:          int(u.Team),
			Type:          t.Name,
			X:             u.X,
			Y:             u.Y,
			Explosiveness: explosiveness,
			Flying:        t.Flying,
		})
		if explosiveness > selfDestructThreshold && u.IsLocal() {
			event.Emit(s.Bus, event.SelfDestruct{UnitID: u.ID, Explosiveness: explosiveness})
		}
	}

	// crash landing
	if t.Flying {
		s.Area.Damage(u.Team, u.X, u.Y,
			math.Pow(u.HitSize, 0.94)*1.25,
			math.Pow(u.HitSize, 0.75)*t.CrashDamageMultiplier*5,
			true, false, true)
	}

	if !s.Headless {
		for i := 0; i < t.WreckRegions; i++ {
			off := s.randomDir(t.HitSize / 4)
			s.Effects.Decal(fmt.Sprintf("%s-wreck%d", t.Name, i), u.X+off.X, u.Y+off.Y, u.Rotation-90)
		}
	}

	if s.Log != nil {
		s.Log.Debug("unit destroyed",
			zap.Int32("unit", u.ID),
			zap.String("type", t.Name),
			zap.Int("team", int(u.Team)),
			zap.Float64("explosiveness", explosiveness),
		)
	}

	s.Remove(u)
}

// CapKill removes a unit rejected by the population cap. No explosion: the
// unit never became active.
func (s *Sim) CapKill(u *Unit) {
	if u.removed {
		return
	}
	u.Dead = true
	u.Health = 0
	s.Effects.Effect("unit-cap-kill", u.X, u.Y, 0)
	if s.Bus != nil {
		event.Emit(s.Bus, event.UnitCapKilled{UnitID: u.ID, Team: int(u.Team), Type: u.typ.Name})
	}
	s.Remove(u)
}

// Despawn removes a unit quietly, without a destruction cascade.
func (s *Sim) Despawn(u *Unit) {
	if u.removed {
		return
	}
	s.Effects.Effect("unit-despawn", u.X, u.Y, u.Rotation)
	if s.Bus != nil {
		event.Emit(s.Bus, event.UnitDespawned{UnitID: u.ID, Team: int(u.Team), Type: u.typ.Name})
	}
	s.Remove(u)
}

// Damage applies armor-reduced damage. Armor never removes more than 90%.
func (s *Sim) Damage(u *Unit, amount float64) {
	s.DamagePierce(u, math.Max(amount-u.Armor, amount*minArmorDamage))
}

// DamagePierce applies damage ignoring armor.
func (s *Sim) DamagePierce(u *Unit, amount float64) {
	if u.removed || u.Dead {
		return
	}
	u.Health -= amount / u.healthMultiplier()
	if u.Health <= 0 {
		s.Kill(u)
	}
}

// DamageContinuous applies a per-time-unit damage rate over delta.
func (s *Sim) DamageContinuous(u *Unit, rate, delta float64) {
	s.DamagePierce(u, rate*delta)
}

func (s *Sim) Heal(u *Unit, amount float64) {
	if u.Dead || u.removed {
		return
	}
	u.Health = math.Min(u.Health+amount, u.MaxHealth)
}
