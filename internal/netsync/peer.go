package netsync

import (
	gonet "github.com/l1jgo/unitsim/internal/net"
)

// Peer is one connection a node exchanges messages with. Send buffers;
// Flush hands buffered messages to the transport.
type Peer interface {
	ID() uint64
	Name() string
	SetName(name string)
	Send(data []byte)
	Flush()
	Inbox() <-chan []byte
	Closed() bool
}

// SessionPeer adapts a TCP session.
type SessionPeer struct {
	sess *gonet.Session
}

func NewSessionPeer(sess *gonet.Session) SessionPeer { return SessionPeer{sess: sess} }

func (p SessionPeer) ID() uint64           { return p.sess.ID }
func (p SessionPeer) Name() string         { return p.sess.Name }
func (p SessionPeer) SetName(name string)  { p.sess.Name = name }
func (p SessionPeer) Send(data []byte)     { p.sess.Send(data) }
func (p SessionPeer) Flush()               { p.sess.FlushOutput() }
func (p SessionPeer) Inbox() <-chan []byte { return p.sess.InQueue }
func (p SessionPeer) Closed() bool         { return p.sess.IsClosed() }

// pipeEnd is one side of an in-process link.
type pipeEnd struct {
	id     uint64
	name   string
	in     chan []byte
	remote *pipeEnd
	outBuf [][]byte
	closed bool
}

// Pipe links two in-process peers. Used for single-process runs and tests;
// messages cross only when the sender flushes, like the TCP path.
func Pipe(size int) (Peer, Peer) {
	a := &pipeEnd{id: 1, name: "authority", in: make(chan []byte, size)}
	b := &pipeEnd{id: 2, name: "replica", in: make(chan []byte, size)}
	a.remote, b.remote = b, a
	return a, b
}

func (p *pipeEnd) ID() uint64           { return p.id }
func (p *pipeEnd) Name() string         { return p.name }
func (p *pipeEnd) SetName(name string)  { p.name = name }
func (p *pipeEnd) Inbox() <-chan []byte { return p.in }
func (p *pipeEnd) Closed() bool         { return p.closed }

func (p *pipeEnd) Send(data []byte) {
	if !p.closed {
		p.outBuf = append(p.outBuf, data)
	}
}

func (p *pipeEnd) Flush() {
	for _, data := range p.outBuf {
		select {
		case p.remote.in <- data:
		default:
			p.closed = true
			p.remote.closed = true
		}
	}
	p.outBuf = p.outBuf[:0]
}
