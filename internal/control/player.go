package control

import "github.com/l1jgo/unitsim/internal/unit"

// Input is the latest command a player sent for their unit.
type Input struct {
	Move     unit.Vec2 // desired velocity direction, any length
	AimX     float64
	AimY     float64
	Shooting bool
	Boost    bool
}

// Player drives a unit from remote or local input. It stays valid while the
// player is connected; once they leave, the unit falls back to its AI.
type Player struct {
	base
	env       *Env
	name      string
	local     bool
	connected bool
	input     Input
}

func NewPlayer(env *Env, name string, local bool) *Player {
	return &Player{env: env, name: name, local: local, connected: true}
}

func (p *Player) PlayerName() string { return p.name }
func (p *Player) Local() bool        { return p.local }
func (p *Player) IsValid() bool      { return p.connected }

func (p *Player) SetInput(in Input) { p.input = in }

func (p *Player) Disconnect() { p.connected = false }

func (p *Player) UpdateUnit() {
	u := p.u
	if u == nil {
		return
	}
	delta := 1.0
	if p.env != nil {
		delta = p.env.Delta
	}
	in := p.input
	u.Boosting = in.Boost
	u.Aim(in.AimX, in.AimY)
	u.SetShooting(in.Shooting)
	if !in.Move.IsZero() {
		want := in.Move.SetLength(u.Type().Speed)
		u.MoveAt(want, delta)
		u.LookAt(want.Angle(), delta)
	}
}
