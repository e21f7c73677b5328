// Package netsync keeps unit lifecycle decisions consistent across nodes.
// One node is the authority: it originates deaths, cap deaths, despawns and
// spawns, applies them locally and broadcasts them. Replicas forward their
// requests and change state only when a decision arrives.
package netsync

import (
	"sort"

	"github.com/l1jgo/unitsim/internal/control"
	"github.com/l1jgo/unitsim/internal/net/packet"
	"github.com/l1jgo/unitsim/internal/unit"
	"github.com/l1jgo/unitsim/internal/world"
	"go.uber.org/zap"
)

// Applier is the world the node carries decisions out on.
type Applier interface {
	Unit(id int32) *unit.Unit
	Units() []*unit.Unit
	Factories() []*world.Factory
	AddUnit(u *unit.Unit)
	ApplyDeath(id int32)
	ApplyCapDeath(id int32)
	ApplyDespawn(id int32)
	ApplySpawn(info world.SpawnInfo) (*unit.Unit, error)
	ApplyFactorySpawn(factory int32, spawned int)
	NewPlayerUnit(typeName string, team unit.Team, player string, local bool) (*unit.Unit, *control.Player, error)
}

// Node implements unit.Authority over a set of peers.
type Node struct {
	role     packet.Role
	name     string
	world    Applier
	registry *packet.Registry
	peers    map[uint64]Peer
	players  map[string]*playerSlot // authority
	local    map[string]bool        // replica: players joined from here
	log      *zap.Logger
}

func NewNode(role packet.Role, name string, ws Applier, log *zap.Logger) *Node {
	n := &Node{
		role:     role,
		name:     name,
		world:    ws,
		registry: packet.NewRegistry(log),
		peers:    make(map[uint64]Peer),
		players:  make(map[string]*playerSlot),
		local:    make(map[string]bool),
		log:      log,
	}
	n.registerHandlers()
	return n
}

func (n *Node) Role() packet.Role { return n.role }

func (n *Node) Authoritative() bool { return n.role == packet.RoleAuthority }

// AddPeer attaches a connection. A replica greets its authority at once.
func (n *Node) AddPeer(p Peer) {
	n.peers[p.ID()] = p
	if !n.Authoritative() {
		p.Send(encodeHello(n.name))
	}
}

// RemovePeer detaches a connection. Players joined through it leave.
func (n *Node) RemovePeer(id uint64) {
	if _, ok := n.peers[id]; !ok {
		return
	}
	delete(n.peers, id)
	for _, name := range n.Players() {
		if n.ownedBy(name, id) {
			n.leavePlayer(name)
		}
	}
}

func (n *Node) PeerCount() int { return len(n.peers) }

// sortedPeers returns peers in ID order so every tick sends and drains in
// the same sequence.
func (n *Node) sortedPeers() []Peer {
	out := make([]Peer, 0, len(n.peers))
	for _, p := range n.peers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (n *Node) broadcast(data []byte) {
	for _, p := range n.sortedPeers() {
		p.Send(data)
	}
}

// toAuthority forwards a request. A replica has exactly one peer.
func (n *Node) toAuthority(data []byte) {
	for _, p := range n.sortedPeers() {
		p.Send(data)
	}
}

// RequestKill decides a death on the authority, or forwards the request.
// The broadcast goes out before the local application so cascaded deaths
// reach replicas in causal order.
func (n *Node) RequestKill(id int32) {
	if !n.Authoritative() {
		n.toAuthority(encodeID(packet.C_KILL_REQUEST, id))
		return
	}
	n.broadcast(encodeID(packet.S_UNIT_DEATH, id))
	n.world.ApplyDeath(id)
}

// RequestCapDeath is only raised on the authority.
func (n *Node) RequestCapDeath(id int32) {
	if !n.Authoritative() {
		return
	}
	n.broadcast(encodeID(packet.S_UNIT_CAP_DEATH, id))
	n.world.ApplyCapDeath(id)
}

func (n *Node) RequestDespawn(id int32) {
	if !n.Authoritative() {
		n.toAuthority(encodeID(packet.C_DESPAWN_REQUEST, id))
		return
	}
	n.broadcast(encodeID(packet.S_UNIT_DESPAWN, id))
	n.world.ApplyDespawn(id)
}

// SpawnUnit announces a unit created on the authority and then adds it.
// Announcing first keeps a cap death raised by the add behind the spawn.
func (n *Node) SpawnUnit(u *unit.Unit) {
	if !n.Authoritative() {
		return
	}
	n.broadcast(encodeSpawn(world.Info(u)))
	n.world.AddUnit(u)
}

// FactorySpawn announces a finished build and applies it locally.
func (n *Node) FactorySpawn(factory int32, spawned int) {
	if !n.Authoritative() {
		return
	}
	n.broadcast(encodeFactorySpawn(factory, spawned))
	n.world.ApplyFactorySpawn(factory, spawned)
}

// Drain dispatches up to max queued messages per peer. Closed peers are
// dropped.
func (n *Node) Drain(max int) int {
	handled := 0
	for _, p := range n.sortedPeers() {
		if p.Closed() {
			n.log.Info("peer closed", zap.Uint64("peer", p.ID()), zap.String("name", p.Name()))
			n.RemovePeer(p.ID())
			continue
		}
	drain:
		for i := 0; max <= 0 || i < max; i++ {
			select {
			case data := <-p.Inbox():
				if err := n.registry.Dispatch(p, n.role, data); err != nil {
					n.log.Warn("message rejected", zap.Uint64("peer", p.ID()), zap.Error(err))
				}
				handled++
			default:
				break drain
			}
		}
	}
	return handled
}

// Flush hands every peer's buffered messages to its transport.
func (n *Node) Flush() {
	for _, p := range n.sortedPeers() {
		p.Flush()
	}
}
