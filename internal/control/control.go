// Package control holds the controllers that drive units: the built-in AI
// routines and the player controller fed by network input.
package control

import (
	"fmt"

	"github.com/l1jgo/unitsim/internal/unit"
)

// Targets answers the battlefield queries AI needs. Implemented by world.State.
type Targets interface {
	ClosestEnemy(team unit.Team, x, y, r float64) *unit.Unit
	EnemyCore(team unit.Team, x, y float64) (unit.Vec2, bool)
}

// Env is shared by every controller of one simulation context. The update
// system stores the current tick's delta before running AI.
type Env struct {
	Targets Targets
	Delta   float64
}

// base carries the non-owning back-reference every controller keeps.
type base struct {
	u *unit.Unit
}

func (b *base) Unit() *unit.Unit     { return b.u }
func (b *base) SetUnit(u *unit.Unit) { b.u = u }
func (b *base) Removed(*unit.Unit)   { b.u = nil }

// Factory returns a constructor for the named AI controller.
func Factory(name string, env *Env) (func() unit.Controller, error) {
	switch name {
	case "ground", "":
		return func() unit.Controller { return NewGroundAI(env) }, nil
	case "flying":
		return func() unit.Controller { return NewFlyingAI(env) }, nil
	default:
		return nil, fmt.Errorf("unknown controller %q", name)
	}
}
