package world

import "github.com/l1jgo/unitsim/internal/unit"

// Teams keeps per-team, per-type unit counts and the cap bonus granted by
// each team's cores. Implements unit.Population.
type Teams struct {
	rules  unit.Rules
	counts map[unit.Team]map[string]int
	bonus  map[unit.Team]int
}

func NewTeams(rules unit.Rules) *Teams {
	return &Teams{
		rules:  rules,
		counts: make(map[unit.Team]map[string]int),
		bonus:  make(map[unit.Team]int),
	}
}

func (t *Teams) CountOf(team unit.Team, typ *unit.Type) int {
	return t.counts[team][typ.Name]
}

// AdjustCount changes a count by delta, never going below zero.
func (t *Teams) AdjustCount(team unit.Team, typ *unit.Type, delta int) {
	m := t.counts[team]
	if m == nil {
		m = make(map[string]int)
		t.counts[team] = m
	}
	n := m[typ.Name] + delta
	if n < 0 {
		n = 0
	}
	m[typ.Name] = n
}

func (t *Teams) Cap(team unit.Team) int {
	return unit.CapFor(t.rules, t.bonus[team])
}

// AddCapBonus raises a team's cap, used when a core is placed.
func (t *Teams) AddCapBonus(team unit.Team, n int) {
	t.bonus[team] += n
}

// Total sums every type's count for team.
func (t *Teams) Total(team unit.Team) int {
	n := 0
	for _, c := range t.counts[team] {
		n += c
	}
	return n
}
