package unit

import "github.com/l1jgo/unitsim/internal/data"

// resupplyInterval is how much time must accumulate between resupply calls.
const resupplyInterval = 10

// updateResupply accumulates elapsed time while ammo is short and invokes the
// type's ammo supply once the interval is exceeded. Throttling is by time,
// so the call rate does not depend on the tick rate.
func (s *Sim) updateResupply(u *Unit, delta float64) {
	t := u.typ
	if !s.Rules.UnitAmmo || u.Ammo >= t.AmmoCapacity-0.0001 {
		return
	}
	u.resupplyTime += delta
	if u.resupplyTime > resupplyInterval {
		if t.Ammo != nil {
			t.Ammo.Resupply(s, u)
		}
		u.resupplyTime = 0
	}
}

// AddAmmo tops up ammunition, capped at the type's capacity.
func (u *Unit) AddAmmo(amount float64) {
	u.Ammo += amount
	if u.Ammo > u.typ.AmmoCapacity {
		u.Ammo = u.typ.AmmoCapacity
	}
}

func (u *Unit) ItemCapacity() int { return u.typ.ItemCapacity }

// AcceptsItem reports whether at least one of item fits in the cargo hold.
func (u *Unit) AcceptsItem(item *data.Item) bool {
	if u.typ.ItemCapacity <= 0 {
		return false
	}
	if u.Stack.Empty() {
		return true
	}
	return u.Stack.Item == item && u.Stack.Amount < u.typ.ItemCapacity
}

// AddItem loads up to amount of item and returns how many were accepted.
func (u *Unit) AddItem(item *data.Item, amount int) int {
	if amount <= 0 || !u.AcceptsItem(item) {
		return 0
	}
	if u.Stack.Empty() {
		u.Stack = ItemStack{Item: item}
	}
	room := u.typ.ItemCapacity - u.Stack.Amount
	if amount > room {
		amount = room
	}
	u.Stack.Amount += amount
	return amount
}

func (u *Unit) ClearItem() { u.Stack = ItemStack{} }

func (u *Unit) IsImmune(effect *data.StatusEffect) bool {
	return effect != nil && u.typ.Immunities[effect.Name]
}

// ApplyStatus adds or refreshes a status effect. Immune units ignore it.
func (u *Unit) ApplyStatus(effect *data.StatusEffect, duration float64) bool {
	if effect == nil || u.IsImmune(effect) || u.Dead {
		return false
	}
	for i := range u.statuses {
		if u.statuses[i].Effect == effect {
			if duration > u.statuses[i].Time {
				u.statuses[i].Time = duration
			}
			return true
		}
	}
	u.statuses = append(u.statuses, StatusEntry{Effect: effect, Time: duration})
	return true
}

func (u *Unit) HasStatus(effect *data.StatusEffect) bool {
	for i := range u.statuses {
		if u.statuses[i].Effect == effect {
			return true
		}
	}
	return false
}

// SpeedMultiplier folds the speed modifiers of every active status.
func (u *Unit) SpeedMultiplier() float64 {
	m := 1.0
	for i := range u.statuses {
		m *= u.statuses[i].Effect.SpeedMultiplier
	}
	return m
}

func (u *Unit) healthMultiplier() float64 {
	m := 1.0
	for i := range u.statuses {
		m *= u.statuses[i].Effect.HealthMultiplier
	}
	return m
}

// UpdateStatuses ticks status durations, applies damage over time and drops
// expired entries.
func (s *Sim) UpdateStatuses(u *Unit, delta float64) {
	if u.removed || len(u.statuses) == 0 {
		return
	}
	kept := u.statuses[:0]
	for _, st := range u.statuses {
		st.Time -= delta
		if st.Effect.Damage > 0 {
			s.DamagePierce(u, st.Effect.Damage*delta)
		}
		if st.Time > 0 {
			kept = append(kept, st)
		}
	}
	u.statuses = kept
}
