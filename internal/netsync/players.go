package netsync

import (
	"fmt"
	"sort"

	"github.com/l1jgo/unitsim/internal/control"
	"github.com/l1jgo/unitsim/internal/unit"
	"go.uber.org/zap"
)

// playerSlot is a player whose unit the authority drives. peer is 0 for a
// player joined on the authority itself.
type playerSlot struct {
	peer uint64
	ctl  *control.Player
}

// JoinPlayer asks for a unit at team's core driven by name. A replica
// forwards the request and binds the unit locally once it is announced.
func (n *Node) JoinPlayer(name, typeName string, team unit.Team) error {
	if !n.Authoritative() {
		n.local[name] = true
		n.toAuthority(encodePlayerJoin(name, typeName, team))
		return nil
	}
	return n.joinPlayer(0, name, typeName, team, true)
}

func (n *Node) joinPlayer(peer uint64, name, typeName string, team unit.Team, local bool) error {
	if s := n.players[name]; s != nil {
		if u := s.ctl.Unit(); u != nil && !u.Removed() {
			return fmt.Errorf("player %q already has a unit", name)
		}
	}
	u, p, err := n.world.NewPlayerUnit(typeName, team, name, local)
	if err != nil {
		return err
	}
	n.players[name] = &playerSlot{peer: peer, ctl: p}
	n.SpawnUnit(u)
	return nil
}

// PlayerInput sets the command name's unit follows until the next one.
func (n *Node) PlayerInput(name string, in control.Input) {
	if !n.Authoritative() {
		n.toAuthority(encodePlayerInput(name, in))
		return
	}
	if s := n.players[name]; s != nil {
		s.ctl.SetInput(in)
	}
}

// LeavePlayer hands name's unit back to its AI, which despawns it.
func (n *Node) LeavePlayer(name string) {
	if !n.Authoritative() {
		delete(n.local, name)
		n.toAuthority(encodePlayerLeave(name))
		return
	}
	n.leavePlayer(name)
}

func (n *Node) leavePlayer(name string) {
	s := n.players[name]
	if s == nil {
		return
	}
	s.ctl.Disconnect()
	delete(n.players, name)
	n.log.Info("player left", zap.String("player", name))
}

// Players lists joined player names in order. Empty on replicas.
func (n *Node) Players() []string {
	out := make([]string, 0, len(n.players))
	for name := range n.players {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ownedBy reports whether name was joined through peer.
func (n *Node) ownedBy(name string, peer uint64) bool {
	s := n.players[name]
	return s != nil && s.peer == peer
}
