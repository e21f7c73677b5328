package net

import (
	"net"
	"sync/atomic"

	"go.uber.org/zap"
)

// Server accepts replica connections and creates Sessions.
// New/dead sessions are communicated to the game loop via channels.
type Server struct {
	listener net.Listener
	nextID   atomic.Uint64
	active   atomic.Int32
	maxPeers int32 // 0 = unlimited
	newConns chan *Session
	deadCh   chan uint64 // session IDs of dead sessions
	cfg      SessionConfig
	log      *zap.Logger
	closeCh  chan struct{}
}

func NewServer(bindAddr string, maxPeers int, cfg SessionConfig, log *zap.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, err
	}
	s := &Server{
		listener: ln,
		maxPeers: int32(maxPeers),
		newConns: make(chan *Session, 64),
		deadCh:   make(chan uint64, 64),
		cfg:      cfg,
		log:      log,
		closeCh:  make(chan struct{}),
	}
	return s, nil
}

// AcceptLoop runs in its own goroutine. It accepts connections, creates
// sessions, and pushes them onto the newConns channel.
func (s *Server) AcceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.closeCh:
				return // server shutting down
			default:
			}
			s.log.Error("accept failed", zap.Error(err))
			continue
		}

		if s.maxPeers > 0 && s.active.Load() >= s.maxPeers {
			s.log.Warn("peer limit reached, rejecting", zap.String("addr", conn.RemoteAddr().String()))
			conn.Close()
			continue
		}

		id := s.nextID.Add(1)
		sess := NewSession(conn, id, s.cfg, s.log)
		s.active.Add(1)
		sess.OnClose(func(sess *Session) {
			s.active.Add(-1)
			s.NotifyDead(sess.ID)
		})
		sess.Start()

		s.log.Info("peer connected", zap.Uint64("session", id), zap.String("addr", sess.Addr))

		select {
		case s.newConns <- sess:
		default:
			s.log.Warn("connection queue full, rejecting peer")
			sess.Close()
		}
	}
}

// NewSessions returns the channel of newly connected sessions.
func (s *Server) NewSessions() <-chan *Session {
	return s.newConns
}

// NotifyDead reports a dead session ID to the game loop.
func (s *Server) NotifyDead(sessionID uint64) {
	select {
	case s.deadCh <- sessionID:
	default:
	}
}

// DeadSessions returns the channel of dead session IDs.
func (s *Server) DeadSessions() <-chan uint64 {
	return s.deadCh
}

// Shutdown stops accepting new connections.
func (s *Server) Shutdown() {
	close(s.closeCh)
	s.listener.Close()
}

// Peers returns the number of open sessions.
func (s *Server) Peers() int { return int(s.active.Load()) }

// Addr returns the listener's address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}
