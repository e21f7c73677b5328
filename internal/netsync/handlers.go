package netsync

import (
	"github.com/l1jgo/unitsim/internal/net/packet"
	"github.com/l1jgo/unitsim/internal/world"
	"go.uber.org/zap"
)

var (
	authorityOnly = []packet.Role{packet.RoleAuthority}
	replicaOnly   = []packet.Role{packet.RoleReplica}
)

func (n *Node) registerHandlers() {
	n.registry.Register(packet.C_HELLO, authorityOnly, n.handleHello)
	n.registry.Register(packet.C_KILL_REQUEST, authorityOnly, n.handleKillRequest)
	n.registry.Register(packet.C_DESPAWN_REQUEST, authorityOnly, n.handleDespawnRequest)
	n.registry.Register(packet.C_PLAYER_JOIN, authorityOnly, n.handlePlayerJoin)
	n.registry.Register(packet.C_PLAYER_INPUT, authorityOnly, n.handlePlayerInput)
	n.registry.Register(packet.C_PLAYER_LEAVE, authorityOnly, n.handlePlayerLeave)

	n.registry.Register(packet.S_WELCOME, replicaOnly, n.handleWelcome)
	n.registry.Register(packet.S_UNIT_DEATH, replicaOnly, n.handleDeath)
	n.registry.Register(packet.S_UNIT_CAP_DEATH, replicaOnly, n.handleCapDeath)
	n.registry.Register(packet.S_UNIT_DESPAWN, replicaOnly, n.handleDespawn)
	n.registry.Register(packet.S_UNIT_SPAWN, replicaOnly, n.handleSpawn)
	n.registry.Register(packet.S_FACTORY_SPAWN, replicaOnly, n.handleFactorySpawn)
}

// handleHello brings a joining replica up to date: every active unit, the
// deaths of units still falling, and every factory's spawn count.
func (n *Node) handleHello(from any, r *packet.Reader) {
	p := from.(Peer)
	name := r.ReadS()
	p.SetName(name)
	units := n.world.Units()
	p.Send(encodeWelcome(len(units)))
	for _, u := range units {
		p.Send(encodeSpawn(world.Info(u)))
		if u.Dead {
			p.Send(encodeID(packet.S_UNIT_DEATH, u.ID))
		}
	}
	for _, f := range n.world.Factories() {
		p.Send(encodeFactorySpawn(f.ID, f.Spawned))
	}
	n.log.Info("replica joined", zap.String("name", name), zap.Int("units", len(units)))
}

func (n *Node) handleWelcome(from any, r *packet.Reader) {
	n.log.Info("joined authority", zap.Int32("units", r.ReadD()))
}

// Requests for units that are gone or already dead are stale; the decision
// has been broadcast already.
func (n *Node) handleKillRequest(from any, r *packet.Reader) {
	id, err := decodeID(r)
	if err != nil {
		n.log.Warn("bad kill request", zap.Error(err))
		return
	}
	u := n.world.Unit(id)
	if u == nil || u.Dead || u.Removed() {
		return
	}
	n.RequestKill(id)
}

func (n *Node) handleDespawnRequest(from any, r *packet.Reader) {
	id, err := decodeID(r)
	if err != nil {
		n.log.Warn("bad despawn request", zap.Error(err))
		return
	}
	u := n.world.Unit(id)
	if u == nil || u.Removed() || !u.SpawnedByCore || u.IsPlayer() {
		return
	}
	n.RequestDespawn(id)
}

func (n *Node) handleDeath(from any, r *packet.Reader) {
	if id, err := decodeID(r); err == nil {
		n.world.ApplyDeath(id)
	}
}

func (n *Node) handleCapDeath(from any, r *packet.Reader) {
	if id, err := decodeID(r); err == nil {
		n.world.ApplyCapDeath(id)
	}
}

func (n *Node) handleDespawn(from any, r *packet.Reader) {
	if id, err := decodeID(r); err == nil {
		n.world.ApplyDespawn(id)
	}
}

func (n *Node) handleSpawn(from any, r *packet.Reader) {
	info, err := decodeSpawn(r)
	if err != nil {
		n.log.Warn("bad unit spawn", zap.Error(err))
		return
	}
	info.Local = info.Player != "" && n.local[info.Player]
	if _, err := n.world.ApplySpawn(info); err != nil {
		n.log.Error("apply spawn failed", zap.Int32("unit", info.ID), zap.Error(err))
	}
}

func (n *Node) handleFactorySpawn(from any, r *packet.Reader) {
	factory, spawned, err := decodeFactorySpawn(r)
	if err != nil {
		n.log.Warn("bad factory spawn", zap.Error(err))
		return
	}
	n.world.ApplyFactorySpawn(factory, spawned)
}

func (n *Node) handlePlayerJoin(from any, r *packet.Reader) {
	p := from.(Peer)
	name, typeName, team, err := decodePlayerJoin(r)
	if err != nil {
		n.log.Warn("bad player join", zap.Error(err))
		return
	}
	if err := n.joinPlayer(p.ID(), name, typeName, team, false); err != nil {
		n.log.Warn("player join rejected", zap.String("peer", p.Name()), zap.String("player", name), zap.Error(err))
	}
}

// Input and leave messages only count from the peer the player joined
// through.
func (n *Node) handlePlayerInput(from any, r *packet.Reader) {
	p := from.(Peer)
	name, in, err := decodePlayerInput(r)
	if err != nil {
		n.log.Warn("bad player input", zap.Error(err))
		return
	}
	if n.ownedBy(name, p.ID()) {
		n.PlayerInput(name, in)
	}
}

func (n *Node) handlePlayerLeave(from any, r *packet.Reader) {
	p := from.(Peer)
	name := r.ReadS()
	if n.ownedBy(name, p.ID()) {
		n.leavePlayer(name)
	}
}
