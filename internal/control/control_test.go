package control

import (
	"testing"

	"github.com/l1jgo/unitsim/internal/unit"
)

type stubTargets struct {
	enemy   *unit.Unit
	core    unit.Vec2
	hasCore bool
	queries int
}

func (s *stubTargets) ClosestEnemy(team unit.Team, x, y, r float64) *unit.Unit {
	s.queries++
	if s.enemy == nil || !s.enemy.Within(x, y, r) {
		return nil
	}
	return s.enemy
}

func (s *stubTargets) EnemyCore(team unit.Team, x, y float64) (unit.Vec2, bool) {
	return s.core, s.hasCore
}

func testType(env *Env, name string) *unit.Type {
	f, _ := Factory(name, env)
	return &unit.Type{
		Name:              "dagger",
		Health:            100,
		HitSize:           8,
		Speed:             1,
		Accel:             1,
		RotateSpeed:       360,
		Range:             60,
		Weapons:           []*unit.Weapon{{Name: "gun"}},
		ControllerFactory: f,
	}
}

func TestFactoryUnknown(t *testing.T) {
	if _, err := Factory("orbital", &Env{}); err == nil {
		t.Error("expected error for unknown controller")
	}
}

func TestGroundAIShootsEnemyInRange(t *testing.T) {
	tg := &stubTargets{}
	env := &Env{Targets: tg, Delta: 1}
	typ := testType(env, "ground")
	enemy := typ.Create(2)
	enemy.X = 30
	tg.enemy = enemy

	u := typ.Create(1)
	ai, ok := u.Controller().(*GroundAI)
	if !ok {
		t.Fatalf("expected GroundAI, got %T", u.Controller())
	}
	ai.UpdateUnit()
	if ai.Target() != enemy {
		t.Fatal("expected enemy targeted")
	}
	if !u.IsShooting() || u.AimX() != 30 {
		t.Errorf("expected shooting at x=30, got shooting=%v aim=%v", u.IsShooting(), u.AimX())
	}
	if !u.Vel.IsZero() {
		t.Errorf("expected no advance inside approach range, got %v", u.Vel)
	}
}

func TestGroundAIMarchesOnCore(t *testing.T) {
	tg := &stubTargets{core: unit.Vec2{X: 500}, hasCore: true}
	env := &Env{Targets: tg, Delta: 1}
	u := testType(env, "ground").Create(1)

	u.Controller().UpdateUnit()
	if u.Vel.X <= 0 || u.Vel.Y != 0 {
		t.Errorf("expected movement toward +x, got %v", u.Vel)
	}
	if u.IsShooting() {
		t.Error("expected no shooting without a target")
	}
}

func TestFlyingAICircles(t *testing.T) {
	tg := &stubTargets{}
	env := &Env{Targets: tg, Delta: 1}
	typ := testType(env, "flying")
	enemy := typ.Create(2)
	enemy.X = 20
	tg.enemy = enemy

	u := typ.Create(1)
	u.Controller().UpdateUnit()
	if u.Vel.Y == 0 {
		t.Errorf("expected tangential movement, got %v", u.Vel)
	}
	if !u.IsShooting() {
		t.Error("expected shooting at target")
	}
}

func TestRemovedClearsReferences(t *testing.T) {
	tg := &stubTargets{}
	env := &Env{Targets: tg, Delta: 1}
	typ := testType(env, "ground")
	tg.enemy = typ.Create(2)

	u := typ.Create(1)
	ai := u.Controller().(*GroundAI)
	ai.UpdateUnit()
	ai.Removed(u)
	if ai.Unit() != nil || ai.Target() != nil {
		t.Error("expected unit and target cleared")
	}
}

func TestPlayerInput(t *testing.T) {
	env := &Env{Delta: 1}
	typ := testType(env, "ground")
	u := typ.Create(1)
	p := NewPlayer(env, "alice", true)
	u.Bind(p)

	if !u.IsPlayer() || !u.IsLocal() {
		t.Fatal("expected local player unit")
	}
	p.SetInput(Input{Move: unit.Vec2{Y: 5}, AimX: 7, AimY: 8, Shooting: true, Boost: true})
	p.UpdateUnit()
	if u.Vel.Y <= 0 || !u.Boosting || !u.IsShooting() || u.AimY() != 8 {
		t.Errorf("expected input applied, got vel=%v boost=%v", u.Vel, u.Boosting)
	}

	p.Disconnect()
	if p.IsValid() {
		t.Error("expected disconnected player invalid")
	}
	u.ResetController()
	if u.IsPlayer() {
		t.Error("expected AI after reset")
	}
}
