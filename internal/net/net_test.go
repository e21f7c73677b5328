package net

import (
	"bytes"
	gonet "net"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, []byte{64, 1, 2, 3}); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if buf.Len() != 6 {
		t.Errorf("expected 6 bytes on the wire, got %d", buf.Len())
	}
	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if !bytes.Equal(got, []byte{64, 1, 2, 3}) {
		t.Errorf("expected payload back, got %v", got)
	}
}

func TestFrameRejectsBadLength(t *testing.T) {
	if _, err := ReadFrame(bytes.NewReader([]byte{2, 0})); err == nil {
		t.Error("expected error for empty frame")
	}
	if err := WriteFrame(&bytes.Buffer{}, nil); err == nil {
		t.Error("expected error for empty payload")
	}
}

func TestSessionPipe(t *testing.T) {
	a, b := gonet.Pipe()
	cfg := SessionConfig{InQueueSize: 4, OutQueueSize: 4}
	left := NewSession(a, 1, cfg, zap.NewNop())
	right := NewSession(b, 2, cfg, zap.NewNop())
	closed := make(chan uint64, 2)
	right.OnClose(func(s *Session) { closed <- s.ID })
	left.Start()
	right.Start()

	left.Send([]byte{1, 9})
	left.FlushOutput()

	select {
	case msg := <-right.InQueue:
		if !bytes.Equal(msg, []byte{1, 9}) {
			t.Errorf("expected [1 9], got %v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}

	left.Close()
	select {
	case id := <-closed:
		if id != 2 {
			t.Errorf("expected session 2 closed, got %d", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected peer close to propagate")
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServerPeerLimit(t *testing.T) {
	cfg := SessionConfig{InQueueSize: 8, OutQueueSize: 8, WriteTimeout: time.Second}
	srv, err := NewServer("127.0.0.1:0", 1, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	go srv.AcceptLoop()
	defer srv.Shutdown()

	first, err := Dial(srv.Addr().String(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	waitFor(t, "first peer", func() bool { return srv.Peers() == 1 })

	second, err := Dial(srv.Addr().String(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	waitFor(t, "second peer rejected", second.IsClosed)
	if srv.Peers() != 1 {
		t.Errorf("expected 1 peer, got %d", srv.Peers())
	}

	select {
	case sess := <-srv.NewSessions():
		sess.Close()
	case <-time.After(time.Second):
		t.Fatal("expected the first session queued for the game loop")
	}
	first.Close()
	waitFor(t, "peer released", func() bool { return srv.Peers() == 0 })
}
