package unit

import (
	"github.com/l1jgo/unitsim/internal/core/event"
)

// Integrate advances position by velocity, applies drag, settles elevation
// and fires the landing hook when a unit touches down alive.
func (s *Sim) Integrate(u *Unit, delta float64) {
	if u.removed {
		return
	}
	t := u.typ

	if !u.Dead && u.Health > 0 {
		switch {
		case t.Flying:
			u.Elevation = 1
		case t.CanBoost:
			target := 0.0
			if u.Boosting || !s.groundPassable(u) {
				target = 1
			}
			u.Elevation = approach(u.Elevation, target, t.RiseSpeed*delta)
		default:
			u.Elevation = 0
		}
	}

	u.X += u.Vel.X * delta
	u.Y += u.Vel.Y * delta
	f := 1 - u.Drag*delta
	if f < 0 {
		f = 0
	}
	u.Vel = u.Vel.Scl(f)

	if u.wasFlying && u.IsGrounded() && !u.Dead {
		s.landed(u)
	}
	u.wasFlying = u.IsFlying()
}

func (s *Sim) groundPassable(u *Unit) bool {
	tile := s.tileOn(u)
	if tile == nil {
		return true
	}
	return !tile.Solid && (tile.Floor == nil || !tile.Floor.Solid)
}

func (s *Sim) landed(u *Unit) {
	t := u.typ
	if t.LandShake > 0 {
		s.Effects.Shake(t.LandShake, t.LandShake, u.X, u.Y)
	}
	if t.Behavior != nil {
		t.Behavior.Landed(s, u)
	}
	if s.Bus != nil {
		event.Emit(s.Bus, event.UnitLanded{UnitID: u.ID})
	}
}

// MoveAt accelerates toward the desired velocity, limited by the type's
// acceleration and the active status speed modifiers.
func (u *Unit) MoveAt(want Vec2, delta float64) {
	want = want.Scl(u.SpeedMultiplier())
	step := want.Sub(u.Vel).Limit(u.typ.Accel * want.Len() * delta)
	u.Vel = u.Vel.Add(step)
}

// LookAt turns toward angle at the type's rotate speed.
func (u *Unit) LookAt(angle, delta float64) {
	u.Rotation = moveToward(u.Rotation, angle, u.typ.RotateSpeed*delta*u.SpeedMultiplier())
}

// LookAtPoint turns toward a world position.
func (u *Unit) LookAtPoint(x, y, delta float64) {
	u.LookAt(Vec2{x - u.X, y - u.Y}.Angle(), delta)
}
