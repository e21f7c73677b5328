package system

import (
	"time"

	coresys "github.com/l1jgo/unitsim/internal/core/system"
	"github.com/l1jgo/unitsim/internal/net"
	"github.com/l1jgo/unitsim/internal/netsync"
	"go.uber.org/zap"
)

// InputSystem attaches newly accepted connections to the node and drains
// queued messages from every peer. Phase 0 (Input).
type InputSystem struct {
	server     *net.Server // nil on replicas
	node       *netsync.Node
	maxPerTick int
	log        *zap.Logger
}

func NewInputSystem(server *net.Server, node *netsync.Node, maxPerTick int, log *zap.Logger) *InputSystem {
	return &InputSystem{server: server, node: node, maxPerTick: maxPerTick, log: log}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	if s.server != nil {
		s.acceptPeers()
	}
	s.node.Drain(s.maxPerTick)
}

func (s *InputSystem) acceptPeers() {
	for {
		select {
		case sess := <-s.server.NewSessions():
			s.node.AddPeer(netsync.NewSessionPeer(sess))
		case id := <-s.server.DeadSessions():
			s.node.RemovePeer(id)
			s.log.Debug("peer removed", zap.Uint64("session", id))
		default:
			return
		}
	}
}

// OutputSystem hands the tick's broadcasts to the transports. Phase 4
// (Output).
type OutputSystem struct {
	node *netsync.Node
}

func NewOutputSystem(node *netsync.Node) *OutputSystem {
	return &OutputSystem{node: node}
}

func (s *OutputSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *OutputSystem) Update(_ time.Duration) {
	s.node.Flush()
}
