// Package unit implements the lifecycle of mobile combat units: controller
// binding, the per-tick update pipeline, resource accounting, population
// bookkeeping and the destruction cascade.
//
// All operations run on the owning context's game loop goroutine. Units are
// plain records; behaviour lives on *Sim, which carries the collaborators a
// unit needs (terrain, damage, effects, network authority).
package unit

import (
	"math"

	"github.com/l1jgo/unitsim/internal/data"
)

// Team identifies the owner of a unit.
type Team int

const TeamDerelict Team = 0

const (
	groundedElevation = 0.001
	flyingElevation   = 0.09
)

// ItemStack is the cargo a unit carries. A unit holds one item kind at a time.
type ItemStack struct {
	Item   *data.Item
	Amount int
}

func (s ItemStack) Empty() bool { return s.Item == nil || s.Amount <= 0 }

// WeaponMount is the per-unit state of one of the type's weapons.
type WeaponMount struct {
	Weapon *Weapon
	Reload float64
	AimX   float64
	AimY   float64
	Shoot  bool
}

// StatusEntry is an active status effect with its remaining duration.
type StatusEntry struct {
	Effect *data.StatusEffect
	Time   float64
}

// Unit is the central entity record.
type Unit struct {
	ID   int32
	Team Team

	X, Y      float64
	Rotation  float64 // degrees
	Elevation float64 // 0 grounded, 1 fully airborne
	Vel       Vec2

	Health    float64
	MaxHealth float64
	Armor     float64
	HitSize   float64
	Drag      float64
	Ammo      float64
	Stack     ItemStack
	Flag      float64 // free-form value readable by scripts

	Dead          bool
	Hovering      bool
	SpawnedByCore bool  // created by a core for a player rather than placed or built
	Boosting      bool  // controller wants a boost-capable unit airborne
	FactoryID     int32 // producing block, 0 if none

	typ        *Type
	controller Controller
	abilities  []Ability
	mounts     []WeaponMount
	statuses   []StatusEntry

	resupplyTime float64

	added            bool
	counted          bool
	destroyed        bool
	removed          bool
	despawnRequested bool
	killRequested    bool
	wasFlying        bool
}

func (u *Unit) Type() *Type             { return u.typ }
func (u *Unit) Controller() Controller  { return u.controller }
func (u *Unit) Abilities() []Ability    { return u.abilities }
func (u *Unit) Mounts() []WeaponMount   { return u.mounts }
func (u *Unit) Statuses() []StatusEntry { return u.statuses }
func (u *Unit) ResupplyTime() float64   { return u.resupplyTime }
func (u *Unit) Added() bool             { return u.added }
func (u *Unit) Destroyed() bool         { return u.destroyed }
func (u *Unit) Removed() bool           { return u.removed }
func (u *Unit) Active() bool            { return u.added && !u.removed }

func (u *Unit) IsGrounded() bool { return u.Elevation < groundedElevation }
func (u *Unit) IsFlying() bool   { return u.Elevation >= flyingElevation }

// Bounds is the unit's collision diameter used for explosion sizing.
func (u *Unit) Bounds() float64 { return u.HitSize * 2 }

func (u *Unit) Pos() Vec2 { return Vec2{u.X, u.Y} }

func (u *Unit) Dst(x, y float64) float64 {
	return math.Hypot(u.X-x, u.Y-y)
}

func (u *Unit) Within(x, y, dst float64) bool {
	dx, dy := u.X-x, u.Y-y
	return dx*dx+dy*dy <= dst*dst
}

// InRange reports whether a point lies within the type's weapon range.
func (u *Unit) InRange(x, y float64) bool {
	return u.Within(x, y, u.typ.Range)
}

func (u *Unit) IsShooting() bool {
	for i := range u.mounts {
		if u.mounts[i].Shoot {
			return true
		}
	}
	return false
}

// Aim points every weapon mount at (x, y).
func (u *Unit) Aim(x, y float64) {
	for i := range u.mounts {
		u.mounts[i].AimX = x
		u.mounts[i].AimY = y
	}
}

func (u *Unit) SetShooting(shoot bool) {
	for i := range u.mounts {
		u.mounts[i].Shoot = shoot
	}
}

// AimX returns the first mount's aim, or the unit position when unarmed.
func (u *Unit) AimX() float64 {
	if len(u.mounts) == 0 {
		return u.X
	}
	return u.mounts[0].AimX
}

func (u *Unit) AimY() float64 {
	if len(u.mounts) == 0 {
		return u.Y
	}
	return u.mounts[0].AimY
}
