package hub

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// defaultQueueSize bounds the per-session outbound queue. A session
// that stays this far behind is dropped rather than allowed to block
// broadcasts to its board.
const defaultQueueSize = 64

// Session is one live subscription of a connection to a board. The
// registry owns it; the transport layer drains Outbound until it
// closes.
type Session struct {
	ID      string
	BoardID string
	UserID  string

	mu        sync.Mutex
	out       chan []byte
	closed    bool
	closeCode int
}

// Outbound is the session's delivery queue. It closes when the session
// is unregistered or evicted; the drain loop should then close the
// transport.
func (s *Session) Outbound() <-chan []byte {
	return s.out
}

// trySend enqueues without blocking. Reports false when the session is
// closed or its queue is full.
func (s *Session) trySend(data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.out <- data:
		return true
	default:
		return false
	}
}

func (s *Session) close(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.closeCode = code
	close(s.out)
}

// CloseCode reports the close code the transport should put on the
// wire once the queue drains. A deliberate close (unregister, board
// eviction) is a normal closure; a backpressure drop is Try Again
// Later so the client redials and resyncs.
func (s *Session) CloseCode() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closeCode == 0 {
		return websocket.CloseNormalClosure
	}
	return s.closeCode
}

// Hub tracks which sessions are subscribed to which board and fans
// broadcasts out to them.
type Hub struct {
	mu        sync.RWMutex
	boards    map[string]map[string]*Session
	byID      map[string]*Session
	queueSize int
}

func New() *Hub {
	return &Hub{
		boards:    make(map[string]map[string]*Session),
		byID:      make(map[string]*Session),
		queueSize: defaultQueueSize,
	}
}

func (h *Hub) Register(boardID, userID string) *Session {
	sess := &Session{
		ID:      uuid.NewString(),
		BoardID: boardID,
		UserID:  userID,
		out:     make(chan []byte, h.queueSize),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.boards[boardID] == nil {
		h.boards[boardID] = make(map[string]*Session)
	}
	h.boards[boardID][sess.ID] = sess
	h.byID[sess.ID] = sess
	return sess
}

// Unregister removes the session and closes its queue normally.
// Idempotent; unknown ids are ignored.
func (h *Hub) Unregister(sessionID string) {
	h.drop(sessionID, websocket.CloseNormalClosure)
}

func (h *Hub) drop(sessionID string, code int) {
	h.mu.Lock()
	sess, ok := h.byID[sessionID]
	if ok {
		delete(h.byID, sessionID)
		set := h.boards[sess.BoardID]
		delete(set, sessionID)
		if len(set) == 0 {
			delete(h.boards, sess.BoardID)
		}
	}
	h.mu.Unlock()

	if ok {
		sess.close(code)
	}
}

// Broadcast delivers data to every live session on the board except
// excludeSessionID, returning the recipient count. A session that
// cannot accept the message is dropped without affecting the others.
func (h *Hub) Broadcast(boardID string, data []byte, excludeSessionID string) int {
	h.mu.RLock()
	set := h.boards[boardID]
	sessions := make([]*Session, 0, len(set))
	for _, sess := range set {
		if sess.ID == excludeSessionID {
			continue
		}
		sessions = append(sessions, sess)
	}
	h.mu.RUnlock()

	delivered := 0
	var stalled []*Session
	for _, sess := range sessions {
		if sess.trySend(data) {
			delivered++
		} else {
			stalled = append(stalled, sess)
		}
	}
	for _, sess := range stalled {
		// The session is behind, not gone. Try Again Later tells its
		// transport to redial and pick up a fresh snapshot.
		h.drop(sess.ID, websocket.CloseTryAgainLater)
	}
	return delivered
}

func (h *Hub) Sessions(boardID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.boards[boardID]))
	for id := range h.boards[boardID] {
		ids = append(ids, id)
	}
	return ids
}

// EvictBoard closes every session on the board, used when the board is
// deleted out from under its subscribers.
func (h *Hub) EvictBoard(boardID string) int {
	h.mu.RLock()
	ids := make([]string, 0, len(h.boards[boardID]))
	for id := range h.boards[boardID] {
		ids = append(ids, id)
	}
	h.mu.RUnlock()

	for _, id := range ids {
		h.Unregister(id)
	}
	return len(ids)
}
