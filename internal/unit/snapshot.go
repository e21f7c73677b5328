package unit

import "github.com/l1jgo/unitsim/internal/data"

// Snapshot is the persisted form of a unit. The type-derived caches are
// stored for inspection only; Restore recomputes them from the type.
type Snapshot struct {
	ID            int32
	Team          Team
	Type          string
	X, Y          float64
	Rotation      float64
	Elevation     float64
	VelX, VelY    float64
	Health        float64
	Dead          bool
	Ammo          float64
	Flag          float64
	Item          string
	ItemAmount    int
	SpawnedByCore bool
	FactoryID     int32

	MaxHealth float64
	Armor     float64
	HitSize   float64
	Drag      float64
}

func (u *Unit) Snapshot() Snapshot {
	s := Snapshot{
		ID:            u.ID,
		Team:          u.Team,
		Type:          u.typ.Name,
		X:             u.X,
		Y:             u.Y,
		Rotation:      u.Rotation,
		Elevation:     u.Elevation,
		VelX:          u.Vel.X,
		VelY:          u.Vel.Y,
		Health:        u.Health,
		Dead:          u.Dead,
		Ammo:          u.Ammo,
		Flag:          u.Flag,
		SpawnedByCore: u.SpawnedByCore,
		FactoryID:     u.FactoryID,
		MaxHealth:     u.MaxHealth,
		Armor:         u.Armor,
		HitSize:       u.HitSize,
		Drag:          u.Drag,
	}
	if !u.Stack.Empty() {
		s.Item = u.Stack.Item.Name
		s.ItemAmount = u.Stack.Amount
	}
	return s
}

// FromSnapshot rebuilds a unit of type t from stored fields. items resolves
// item names and may be nil when no cargo is expected.
func FromSnapshot(s Snapshot, t *Type, items func(string) *data.Item) *Unit {
	u := &Unit{
		ID:            s.ID,
		Team:          s.Team,
		X:             s.X,
		Y:             s.Y,
		Rotation:      s.Rotation,
		Elevation:     s.Elevation,
		Vel:           Vec2{s.VelX, s.VelY},
		Health:        s.Health,
		Dead:          s.Dead,
		Ammo:          s.Ammo,
		Flag:          s.Flag,
		SpawnedByCore: s.SpawnedByCore,
		FactoryID:     s.FactoryID,
		MaxHealth:     s.MaxHealth,
		Armor:         s.Armor,
		HitSize:       s.HitSize,
		Drag:          s.Drag,
		typ:           t,
	}
	if s.Item != "" && s.ItemAmount > 0 && items != nil {
		if it := items(s.Item); it != nil {
			u.Stack = ItemStack{Item: it, Amount: s.ItemAmount}
		}
	}
	u.Restore()
	return u
}

// Restore re-derives everything a stored unit cannot be trusted to carry:
// type caches, mounts, abilities and the controller link. The controller is
// then replaced with a fresh default, since controller state is not stored.
func (u *Unit) Restore() {
	u.setStats()
	u.controller.SetUnit(u)
	u.ResetController()
	u.wasFlying = u.IsFlying()
}
