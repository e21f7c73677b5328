package unit

// Population is the per-team unit count store. AdjustCount must floor the
// count at zero.
type Population interface {
	CountOf(team Team, t *Type) int
	AdjustCount(team Team, t *Type, delta int)
	Cap(team Team) int
}

// CapFor computes a team's unit cap from the ruleset and the team's core
// bonus.
func CapFor(r Rules, teamBonus int) int {
	c := r.UnitCap
	if r.UnitCapVariable {
		c += teamBonus
	}
	if c < 0 {
		return 0
	}
	return c
}

// Add registers the unit with its team's population. On the authoritative
// node a unit that overflows the cap is released again and killed before it
// ever updates, unless it came from a core or is already dead.
func (s *Sim) Add(u *Unit) {
	if u.added {
		return
	}
	u.added = true
	s.Pop.AdjustCount(u.Team, u.typ, 1)
	u.counted = true

	if !s.authoritative() {
		return
	}
	if s.Pop.CountOf(u.Team, u.typ) > s.Pop.Cap(u.Team) && !u.SpawnedByCore && !u.Dead {
		s.Pop.AdjustCount(u.Team, u.typ, -1)
		u.counted = false
		s.Net.RequestCapDeath(u.ID)
	}
}

// Remove takes the unit out of the simulation: population decrement,
// controller detachment, discard. Runs once; later calls do nothing.
func (s *Sim) Remove(u *Unit) {
	if u.removed {
		return
	}
	u.removed = true
	if u.counted {
		s.Pop.AdjustCount(u.Team, u.typ, -1)
		u.counted = false
	}
	u.controller.Removed(u)
	if s.Entities != nil {
		s.Entities.Discard(u)
	}
}
