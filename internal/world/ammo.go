package world

import (
	"github.com/l1jgo/unitsim/internal/data"
	"github.com/l1jgo/unitsim/internal/unit"
)

// ItemAmmo resupplies a unit by drawing one item from the closest allied
// core in range. Implements unit.AmmoType.
type ItemAmmo struct {
	Item       *data.Item
	Multiplier float64
	Range      float64
	ws         *State
}

func (ws *State) NewItemAmmo(item *data.Item, multiplier, rng float64) *ItemAmmo {
	return &ItemAmmo{Item: item, Multiplier: multiplier, Range: rng, ws: ws}
}

func (a *ItemAmmo) Resupply(s *unit.Sim, u *unit.Unit) {
	if a.Item == nil {
		return
	}
	core := a.ws.ClosestCore(u.Team, u.X, u.Y, a.Range)
	if core == nil || core.Take(a.Item.Name, 1) == 0 {
		return
	}
	u.AddAmmo(a.Multiplier)
	s.Effects.Effect("item-transfer", core.Pos.X, core.Pos.Y, 0)
}
