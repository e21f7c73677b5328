package world

import "github.com/l1jgo/unitsim/internal/unit"

const (
	// NoTeam as the damage source hits every team.
	NoTeam unit.Team = -1

	falloff              = 0.4
	explosionDamageScale = 4
	burnStatus           = "burning"
	burnDuration         = 240
)

// Area applies area damage to units. Implements unit.Damager.
type Area struct {
	ws *State
}

// DynamicExplosion turns cargo explosiveness into blast damage and
// flammability into burning. With damage off it is purely cosmetic.
func (a *Area) DynamicExplosion(x, y, flammability, explosiveness, power, radius float64, damage bool) {
	a.ws.effects.Effect("dynamic-explosion", x, y, 0)
	if !damage || radius <= 0 {
		return
	}
	if explosiveness > 0 {
		a.Damage(NoTeam, x, y, radius, explosiveness*explosionDamageScale, false, true, true)
	}
	if flammability > 0 {
		if burn := a.ws.env.Status(burnStatus); burn != nil {
			a.ws.within(x, y, radius, func(u *unit.Unit) {
				u.ApplyStatus(burn, burnDuration)
			})
		}
	}
}

// Damage hits every unit of another team inside the radius. Damage falls off
// linearly to 40% at the edge unless complete is set.
func (a *Area) Damage(team unit.Team, x, y, radius, amount float64, complete, air, ground bool) {
	var hit []*unit.Unit
	a.ws.within(x, y, radius, func(u *unit.Unit) {
		if team != NoTeam && u.Team == team {
			return
		}
		if u.IsFlying() && !air || !u.IsFlying() && !ground {
			return
		}
		hit = append(hit, u)
	})
	// applied after the scan: a kill can discard units from the index
	for _, u := range hit {
		dmg := amount
		if !complete {
			dmg *= Falloff(u.Dst(x, y), radius)
		}
		a.ws.sim.Damage(u, dmg)
	}
}

// Falloff is the damage scale at distance d from the centre of a blast of
// radius r.
func Falloff(d, r float64) float64 {
	if r <= 0 {
		return 1
	}
	t := 1 - d/r
	return t + (1-t)*falloff
}
