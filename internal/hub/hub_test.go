package hub

import (
	"testing"

	"github.com/gorilla/websocket"
)

func drain(sess *Session) [][]byte {
	var got [][]byte
	for {
		select {
		case data, ok := <-sess.Outbound():
			if !ok {
				return got
			}
			got = append(got, data)
		default:
			return got
		}
	}
}

func TestHub_BroadcastExcludesSender(t *testing.T) {
	h := New()
	a := h.Register("b1", "alice")
	b := h.Register("b1", "bob")

	n := h.Broadcast("b1", []byte("x"), a.ID)
	if n != 1 {
		t.Fatalf("expected 1 recipient, got %d", n)
	}
	if got := drain(a); len(got) != 0 {
		t.Fatalf("sender must not receive its own broadcast, got %d", len(got))
	}
	if got := drain(b); len(got) != 1 || string(got[0]) != "x" {
		t.Fatalf("unexpected delivery to b: %q", got)
	}
}

func TestHub_BroadcastScopedToBoard(t *testing.T) {
	h := New()
	a := h.Register("b1", "alice")
	other := h.Register("b2", "carol")

	if n := h.Broadcast("b1", []byte("x"), ""); n != 1 {
		t.Fatalf("expected 1 recipient, got %d", n)
	}
	if got := drain(other); len(got) != 0 {
		t.Fatalf("other board must not receive broadcast")
	}
	if got := drain(a); len(got) != 1 {
		t.Fatalf("expected delivery on b1")
	}
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	h := New()
	a := h.Register("b1", "alice")

	h.Unregister(a.ID)
	h.Unregister(a.ID)
	h.Unregister("never-existed")

	if n := h.Broadcast("b1", []byte("x"), ""); n != 0 {
		t.Fatalf("expected 0 recipients, got %d", n)
	}
	if _, ok := <-a.Outbound(); ok {
		t.Fatalf("queue should be closed after unregister")
	}
}

func TestHub_BackpressureDropsSession(t *testing.T) {
	h := New()
	a := h.Register("b1", "alice")
	b := h.Register("b1", "bob")

	// Fill a's queue while b keeps up; a is dropped at overflow and
	// delivery to b is never disturbed.
	deliveredToB := 0
	for i := 0; i < defaultQueueSize+1; i++ {
		h.Broadcast("b1", []byte("x"), "")
		deliveredToB += len(drain(b))
	}
	if deliveredToB != defaultQueueSize+1 {
		t.Fatalf("expected %d deliveries to b, got %d", defaultQueueSize+1, deliveredToB)
	}
	if n := h.Broadcast("b1", []byte("y"), ""); n != 1 {
		t.Fatalf("stalled session must be gone, expected 1 recipient, got %d", n)
	}
	drain(a)
	if _, ok := <-a.Outbound(); ok {
		t.Fatalf("stalled session queue should be closed")
	}
	if code := a.CloseCode(); code != websocket.CloseTryAgainLater {
		t.Fatalf("stalled session must close with Try Again Later, got %d", code)
	}
	if code := b.CloseCode(); code != websocket.CloseNormalClosure {
		t.Fatalf("live session close code should default to normal, got %d", code)
	}
}

func TestHub_Sessions(t *testing.T) {
	h := New()
	a := h.Register("b1", "alice")
	h.Register("b1", "bob")

	if ids := h.Sessions("b1"); len(ids) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(ids))
	}
	h.Unregister(a.ID)
	if ids := h.Sessions("b1"); len(ids) != 1 {
		t.Fatalf("expected 1 session, got %d", len(ids))
	}
	if ids := h.Sessions("empty"); len(ids) != 0 {
		t.Fatalf("expected no sessions, got %d", len(ids))
	}
}

func TestHub_EvictBoard(t *testing.T) {
	h := New()
	a := h.Register("b1", "alice")
	b := h.Register("b1", "bob")
	other := h.Register("b2", "carol")

	if n := h.EvictBoard("b1"); n != 2 {
		t.Fatalf("expected 2 evicted, got %d", n)
	}
	if _, ok := <-a.Outbound(); ok {
		t.Fatalf("a should be closed")
	}
	if _, ok := <-b.Outbound(); ok {
		t.Fatalf("b should be closed")
	}
	if code := a.CloseCode(); code != websocket.CloseNormalClosure {
		t.Fatalf("eviction is deliberate, expected normal closure, got %d", code)
	}
	if n := h.Broadcast("b2", []byte("x"), ""); n != 1 {
		t.Fatalf("other board must be unaffected, got %d", n)
	}
	_ = other
}
