package control

import "github.com/l1jgo/unitsim/internal/unit"

// approachFactor is the share of weapon range a ground unit closes to before
// it stops advancing.
const approachFactor = 0.8

// GroundAI walks toward the closest enemy in range and fires at it, and
// otherwise marches on the nearest enemy core.
type GroundAI struct {
	base
	env    *Env
	target *unit.Unit
}

func NewGroundAI(env *Env) *GroundAI { return &GroundAI{env: env} }

func (c *GroundAI) IsValid() bool { return true }

func (c *GroundAI) Removed(u *unit.Unit) {
	c.base.Removed(u)
	c.target = nil
}

func (c *GroundAI) Target() *unit.Unit { return c.target }

func (c *GroundAI) UpdateUnit() {
	u := c.u
	if u == nil || c.env == nil || c.env.Targets == nil {
		return
	}
	delta := c.env.Delta
	t := u.Type()

	c.target = retarget(c.env.Targets, u, c.target)
	if c.target != nil {
		tx, ty := c.target.X, c.target.Y
		u.LookAtPoint(tx, ty, delta)
		u.Aim(tx, ty)
		u.SetShooting(true)
		if !u.Within(tx, ty, t.Range*approachFactor) {
			u.MoveAt(unit.Vec2{X: tx - u.X, Y: ty - u.Y}.SetLength(t.Speed), delta)
		}
		return
	}

	u.SetShooting(false)
	core, ok := c.env.Targets.EnemyCore(u.Team, u.X, u.Y)
	if !ok || u.Within(core.X, core.Y, t.Range) {
		return
	}
	dir := core.Sub(u.Pos())
	u.LookAt(dir.Angle(), delta)
	u.MoveAt(dir.SetLength(t.Speed), delta)
}

// FlyingAI circles its target at weapon range, strafing while it fires.
type FlyingAI struct {
	base
	env    *Env
	target *unit.Unit
}

func NewFlyingAI(env *Env) *FlyingAI { return &FlyingAI{env: env} }

func (c *FlyingAI) IsValid() bool { return true }

func (c *FlyingAI) Removed(u *unit.Unit) {
	c.base.Removed(u)
	c.target = nil
}

func (c *FlyingAI) Target() *unit.Unit { return c.target }

func (c *FlyingAI) UpdateUnit() {
	u := c.u
	if u == nil || c.env == nil || c.env.Targets == nil {
		return
	}
	delta := c.env.Delta
	t := u.Type()

	c.target = retarget(c.env.Targets, u, c.target)
	var goal unit.Vec2
	if c.target != nil {
		goal = c.target.Pos()
		u.Aim(goal.X, goal.Y)
		u.SetShooting(true)
	} else {
		u.SetShooting(false)
		core, ok := c.env.Targets.EnemyCore(u.Team, u.X, u.Y)
		if !ok {
			return
		}
		goal = core
	}

	to := goal.Sub(u.Pos())
	if to.IsZero() {
		return
	}
	// inside range: swing tangentially instead of diving in
	want := to
	if to.Len() < t.Range {
		want = unit.Vec2{X: -to.Y, Y: to.X}.Add(to.Scl(0.3))
	}
	u.MoveAt(want.SetLength(t.Speed), delta)
	u.LookAt(u.Vel.Angle(), delta)
}

// retarget keeps a live target in range, otherwise asks for a new one.
func retarget(tg Targets, u *unit.Unit, cur *unit.Unit) *unit.Unit {
	r := u.Type().Range
	if cur != nil && !cur.Dead && cur.Active() && u.Within(cur.X, cur.Y, r) {
		return cur
	}
	return tg.ClosestEnemy(u.Team, u.X, u.Y, r)
}
