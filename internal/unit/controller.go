package unit

// Controller is the agent that drives a unit. Controllers keep a non-owning
// back-reference to the unit they drive.
type Controller interface {
	Unit() *Unit
	SetUnit(u *Unit)
	UpdateUnit()
	IsValid() bool
	Removed(u *Unit)
}

// PlayerController is a Controller operated by a human player.
type PlayerController interface {
	Controller
	PlayerName() string
	Local() bool // the player sits at this node
}

// Bind makes c the unit's controller and links c back to the unit. Binding
// the current controller again changes nothing.
func (u *Unit) Bind(c Controller) {
	u.controller = c
	if c.Unit() != u {
		c.SetUnit(u)
	}
}

// ResetController replaces the controller with a fresh default from the type.
func (u *Unit) ResetController() {
	u.Bind(u.typ.CreateController())
}

func (u *Unit) IsPlayer() bool {
	_, ok := u.controller.(PlayerController)
	return ok
}

func (u *Unit) IsAI() bool { return !u.IsPlayer() }

// Player returns the controlling player, or nil for AI-driven units.
func (u *Unit) Player() PlayerController {
	p, _ := u.controller.(PlayerController)
	return p
}

// IsLocal reports whether the unit is driven by a player on this node.
func (u *Unit) IsLocal() bool {
	p := u.Player()
	return p != nil && p.Local()
}
