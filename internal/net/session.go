package net

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// SessionConfig sizes a session's queues and limits.
type SessionConfig struct {
	InQueueSize  int
	OutQueueSize int
	MsgPerSec    int // 0 = unlimited
	WriteTimeout time.Duration
	ReadTimeout  time.Duration // 0 = none
}

// Session is one peer connection. Network I/O runs in dedicated goroutines;
// game state is accessed only from the game loop.
type Session struct {
	ID   uint64
	conn net.Conn
	cfg  SessionConfig

	InQueue  chan []byte // game loop reads messages from here
	OutQueue chan []byte // writer goroutine reads from here

	Addr string
	Name string // peer name, set from the replica's hello

	outBuf [][]byte // buffered messages, flushed by the output system (game loop only)

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	onClose   func(*Session)

	// Per-second message rate limiter (readLoop goroutine only, no lock needed)
	msgCount   int
	msgResetAt int64

	log *zap.Logger
}

func NewSession(conn net.Conn, id uint64, cfg SessionConfig, log *zap.Logger) *Session {
	return &Session{
		ID:       id,
		conn:     conn,
		cfg:      cfg,
		InQueue:  make(chan []byte, cfg.InQueueSize),
		OutQueue: make(chan []byte, cfg.OutQueueSize),
		Addr:     conn.RemoteAddr().String(),
		closeCh:  make(chan struct{}),
		log:      log.With(zap.Uint64("session", id)),
	}
}

// OnClose registers fn to run once when the session closes.
// Must be called before Start.
func (s *Session) OnClose(fn func(*Session)) { s.onClose = fn }

// Start launches the reader and writer goroutines.
func (s *Session) Start() {
	go s.readLoop()
	go s.writeLoop()
}

// Send buffers a message for sending. The message is not written to TCP
// until FlushOutput is called by the output system.
// Called only from the game loop goroutine, no lock needed on outBuf.
func (s *Session) Send(data []byte) {
	if s.closed.Load() {
		return
	}
	s.outBuf = append(s.outBuf, data)
}

// FlushOutput drains the output buffer to OutQueue for the writeLoop goroutine.
// Non-blocking: if OutQueue is full, the session is disconnected (backpressure).
func (s *Session) FlushOutput() {
	for _, data := range s.outBuf {
		select {
		case s.OutQueue <- data:
		default:
			s.log.Warn("output queue full, dropping slow peer")
			s.Close()
			s.outBuf = s.outBuf[:0]
			return
		}
	}
	s.outBuf = s.outBuf[:0]
}

// Close gracefully shuts down the session.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.closeCh)
		s.conn.Close()
		if s.onClose != nil {
			s.onClose(s)
		}
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// readLoop runs in its own goroutine. It reads frames from the connection
// and pushes them onto InQueue for the game loop to consume.
func (s *Session) readLoop() {
	defer s.Close()

	for {
		if s.cfg.ReadTimeout > 0 {
			s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		}
		payload, err := ReadFrame(s.conn)
		if err != nil {
			if !s.closed.Load() {
				s.log.Debug("read error", zap.Error(err))
			}
			return
		}

		if s.cfg.MsgPerSec > 0 {
			now := time.Now().Unix()
			if now != s.msgResetAt {
				s.msgCount = 0
				s.msgResetAt = now
			}
			s.msgCount++
			if s.msgCount > s.cfg.MsgPerSec {
				s.log.Warn("message rate exceeded, disconnecting", zap.Int("mps", s.msgCount))
				return
			}
		}

		// Block until InQueue has space or session closes. Dropping a
		// decision would desync the replica for good.
		select {
		case s.InQueue <- payload:
		case <-s.closeCh:
			return
		}
	}
}

// writeLoop runs in its own goroutine. It reads messages from OutQueue and
// writes them as framed data to the connection.
func (s *Session) writeLoop() {
	defer s.Close()

	for {
		select {
		case data := <-s.OutQueue:
			if s.cfg.WriteTimeout > 0 {
				s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			}
			if err := WriteFrame(s.conn, data); err != nil {
				if !s.closed.Load() {
					s.log.Debug("write error", zap.Error(err))
				}
				return
			}
		case <-s.closeCh:
			return
		}
	}
}

// Dial connects to an authority and starts the session.
func Dial(addr string, cfg SessionConfig, log *zap.Logger) (*Session, error) {
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return nil, err
	}
	s := NewSession(conn, 0, cfg, log)
	s.Start()
	return s, nil
}
