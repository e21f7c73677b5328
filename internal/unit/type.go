package unit

// Weapon is the immutable template of a weapon mount.
type Weapon struct {
	Name   string
	Reload float64
}

// Behavior is a type-defined scripted hook. Implementations must not retain u.
type Behavior interface {
	Update(s *Sim, u *Unit, delta float64)
	Landed(s *Sim, u *Unit)
}

// AmmoType replenishes a unit's ammunition from whatever supply it draws on.
type AmmoType interface {
	Resupply(s *Sim, u *Unit)
}

// Ability is a per-unit mutable behaviour cloned from a type template.
type Ability interface {
	Update(s *Sim, u *Unit, delta float64)
	Clone() Ability
}

// Type is the shared, immutable blueprint of a unit kind. Nothing in this
// package writes to a Type after it is built.
type Type struct {
	Name string

	Health      float64
	Armor       float64
	HitSize     float64
	Drag        float64
	Speed       float64
	Accel       float64
	RotateSpeed float64
	Range       float64
	FallSpeed   float64
	RiseSpeed   float64

	Flying   bool
	CanBoost bool
	Hovering bool

	AmmoCapacity float64
	Ammo         AmmoType
	ItemCapacity int
	Immunities   map[string]bool

	Weapons   []*Weapon
	Abilities []Ability // templates, cloned per unit

	ControllerFactory func() Controller
	Behavior          Behavior

	CrashDamageMultiplier float64
	LandShake             float64
	EngineOffset          float64
	EngineSize            float64
	WreckRegions          int

	FallEffect         string
	FallThrusterEffect string
	DeathSound         string
}

// CreateController builds the default controller for this type.
func (t *Type) CreateController() Controller {
	return t.ControllerFactory()
}

// Create builds a fresh unit of this type for team. The unit is not yet
// added to any simulation.
func (t *Type) Create(team Team) *Unit {
	u := &Unit{Team: team}
	u.SetType(t)
	u.Health = u.MaxHealth
	u.Ammo = t.AmmoCapacity
	if t.Flying {
		u.Elevation = 1
	}
	u.wasFlying = u.IsFlying()
	return u
}

func (t *Type) newMounts() []WeaponMount {
	mounts := make([]WeaponMount, len(t.Weapons))
	for i, w := range t.Weapons {
		mounts[i] = WeaponMount{Weapon: w}
	}
	return mounts
}

func (t *Type) cloneAbilities() []Ability {
	out := make([]Ability, len(t.Abilities))
	for i, a := range t.Abilities {
		out[i] = a.Clone()
	}
	return out
}

// SetType assigns a new blueprint. Reassigning the current type is a no-op.
// Mounts and abilities are rebuilt from the new type's templates; abilities
// are always cloned, never shared with the template.
func (u *Unit) SetType(t *Type) {
	if u.typ == t {
		return
	}
	u.typ = t
	u.setStats()
	u.mounts = t.newMounts()
	u.abilities = t.cloneAbilities()
}

// setStats recomputes the caches derived from the type. Mounts and abilities
// are only rebuilt when their count disagrees with the type, so restored
// per-unit ability state survives.
func (u *Unit) setStats() {
	t := u.typ
	u.MaxHealth = t.Health
	u.Drag = t.Drag
	u.Armor = t.Armor
	u.HitSize = t.HitSize
	u.Hovering = t.Hovering

	if u.controller == nil {
		u.Bind(t.CreateController())
	}
	if len(u.mounts) != len(t.Weapons) {
		u.mounts = t.newMounts()
	}
	if len(u.abilities) != len(t.Abilities) {
		u.abilities = t.cloneAbilities()
	}
}
