package unit

const (
	deadDrag           = 0.01
	fallSmokeChance    = 0.1
	fallThrusterChance = 0.2

	knockbackFloor = 0.1
	knockbackScale = 0.45
)

// Update runs one tick of the unit pipeline. The order of the steps is
// fixed; every node runs the same steps and only the authoritative one may
// originate kills or run AI.
func (s *Sim) Update(u *Unit, delta float64) {
	if u.removed {
		return
	}
	t := u.typ

	if t.Behavior != nil {
		t.Behavior.Update(s, u, delta)
	}

	s.updateResupply(u, delta)

	for _, a := range u.abilities {
		a.Update(s, u, delta)
	}

	tile := s.tileOn(u)
	if u.IsGrounded() {
		u.Drag = t.Drag * floorDrag(tile)
	} else {
		u.Drag = t.Drag
	}

	s.applySpawnKnockback(u, delta)

	if u.Dead || u.Health <= 0 {
		s.updateFalling(u, delta)
		if u.removed {
			return
		}
	}

	if tile != nil && u.IsGrounded() && !u.Hovering {
		if tile.Build != nil {
			tile.Build.UnitOn(u)
		}
		if tile.Floor != nil && tile.Floor.DamageTaken > 0 {
			s.DamageContinuous(u, tile.Floor.DamageTaken, delta)
		}
		if u.removed {
			return
		}
	}

	if tile != nil && !canPassOn(u, tile) {
		if t.CanBoost {
			u.Elevation = 1
		} else if s.authoritative() {
			s.Kill(u)
			if u.removed {
				return
			}
		}
	}

	if s.authoritative() && !u.Dead {
		u.controller.UpdateUnit()
	}

	if !u.controller.IsValid() {
		u.ResetController()
	}

	if u.SpawnedByCore && !u.IsPlayer() && !u.despawnRequested {
		u.despawnRequested = true
		s.Net.RequestDespawn(u.ID)
	}
}

func floorDrag(tile *Tile) float64 {
	if tile == nil || tile.Floor == nil {
		return 1
	}
	return tile.Floor.DragMultiplier
}

func canPassOn(u *Unit, tile *Tile) bool {
	if u.IsFlying() {
		return true
	}
	return !tile.Solid && (tile.Floor == nil || !tile.Floor.Solid)
}

// KnockbackRadius is the distance from a spawn point inside which hostile
// units are pushed away.
func (s *Sim) KnockbackRadius(u *Unit) float64 {
	return s.Rules.DropZoneRadius + u.HitSize/2 + 1
}

// applySpawnKnockback repels units of every team but the wave team from the
// spawn points. The push is strongest at the centre and falls to the floor
// term at the radius. A unit sitting exactly on the centre is pushed along
// its heading.
func (s *Sim) applySpawnKnockback(u *Unit, delta float64) {
	if s.Spawner == nil || u.Team == s.Rules.WaveTeam {
		return
	}
	r := s.KnockbackRadius(u)
	for _, p := range s.Spawner.SpawnPoints() {
		d := u.Dst(p.X, p.Y)
		if d > r {
			continue
		}
		dir := u.Pos().Sub(p)
		if dir.IsZero() {
			dir = Trns(u.Rotation, 1)
		}
		u.Vel = u.Vel.Add(dir.SetLength((knockbackFloor + 1 - d/r) * knockbackScale * delta))
	}
}

// updateFalling simulates a dying unit losing control and dropping out of
// the sky. Destruction happens on touchdown once the death is decided.
func (s *Sim) updateFalling(u *Unit, delta float64) {
	// out of health with no decision yet, e.g. restored from a snapshot
	if s.authoritative() && !u.Dead {
		s.Kill(u)
		if u.removed {
			return
		}
	}
	t := u.typ
	u.Drag = deadDrag

	if s.chance(fallSmokeChance * delta) {
		off := s.randomDir(u.HitSize)
		s.Effects.Effect(t.FallEffect, u.X+off.X, u.Y+off.Y, 0)
	}

	if t.Flying && s.chance(fallThrusterChance*delta) {
		offset := t.EngineOffset/2 + t.EngineOffset/2*u.Elevation
		spread := s.rng(t.EngineSize)
		back := Trns(u.Rotation+180, offset)
		s.Effects.Effect(t.FallThrusterEffect,
			u.X+back.X+s.rng(spread),
			u.Y+back.Y+s.rng(spread),
			0)
	}

	u.Elevation = clamp01(u.Elevation - t.FallSpeed*delta)

	if u.IsGrounded() && u.Dead {
		s.Destroy(u)
	}
}
